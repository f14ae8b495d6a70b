package main

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/attendance"
	"classtrack/internal/catalog"
	"classtrack/internal/metrics"
	"classtrack/internal/roster"
	"classtrack/internal/table"
)

type server struct {
	students   *roster.Store
	records    *attendance.Store
	aggregator *attendance.Aggregator
	reset      *attendance.ResetService
	modules    *catalog.Catalog
}

func (s *server) register(v1 *gin.RouterGroup) {
	v1.POST("/students", s.addStudent)
	v1.GET("/students", s.listStudents)
	v1.GET("/students/:id", s.getStudent)

	v1.POST("/attendance", s.recordAttendance)
	v1.POST("/attendance/reset", s.resetAttendance)

	v1.GET("/modules/:module/attendance", s.listAttendance)
	v1.GET("/modules/:module/attendance.csv", s.exportAttendance)
	v1.GET("/modules/:module/summary", s.moduleSummary)

	v1.GET("/departments", s.listDepartments)
	v1.GET("/departments/:department/modules", s.listDepartmentModules)
}

func (s *server) health(c *gin.Context) {
	_, err := s.students.ListStudents()
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "storage": err == nil})
}

func (s *server) addStudent(c *gin.Context) {
	var req struct {
		ID         string `json:"id" binding:"required"`
		Name       string `json:"name"`
		Stage      string `json:"stage"`
		Department string `json:"department"`
		DOB        string `json:"dob" binding:"required"`
		Modules    string `json:"modules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modules := roster.ParseModules(req.Modules)
	if err := s.students.AddStudent(req.ID, req.Name, req.Stage, req.Department, req.DOB, modules); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	metrics.StudentsRegistered.Inc()
	c.JSON(http.StatusCreated, gin.H{"id": req.ID, "modules": modules})
}

func (s *server) listStudents(c *gin.Context) {
	students, err := s.students.ListStudents()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (s *server) getStudent(c *gin.Context) {
	student, err := s.students.GetStudent(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (s *server) recordAttendance(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
		Module    string `json:"module" binding:"required"`
		// No binding on lecture: zero and negatives must reach the store so
		// the caller sees the invalid-lecture error, not a generic 400.
		Lecture int    `json:"lecture"`
		Date    string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	rec, err := s.records.Record(req.StudentID, req.Module, req.Lecture, date)
	if err != nil {
		metrics.AttendanceRejected.WithLabelValues(rejectReason(err)).Inc()
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	metrics.AttendanceRecorded.Inc()
	c.JSON(http.StatusCreated, rec)
}

func (s *server) listAttendance(c *gin.Context) {
	records, err := s.records.ListForModule(c.Param("module"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *server) exportAttendance(c *gin.Context) {
	module := c.Param("module")
	records, err := s.records.ListForModule(module)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+module+`-attendance.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"StudentID", "Module", "LectureNumber", "Date", "Status"})
	for _, rec := range records {
		_ = w.Write([]string{
			rec.StudentID, rec.Module, strconv.Itoa(rec.Lecture),
			rec.Date.Format("2006-01-02"), rec.Status,
		})
	}
	w.Flush()
}

func (s *server) moduleSummary(c *gin.Context) {
	module := c.Param("module")
	counts, err := s.aggregator.PresentCountsByLecture(module)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	students, err := s.students.ListStudents()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"module":         module,
		"total_students": len(students),
		"lectures":       counts,
	})
}

func (s *server) resetAttendance(c *gin.Context) {
	if err := s.reset.ResetAll(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *server) listDepartments(c *gin.Context) {
	departments, err := s.modules.Departments()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

func (s *server) listDepartmentModules(c *gin.Context) {
	entries, err := s.modules.ModulesByDepartment(c.Param("department"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": entries})
}

// statusFor maps store errors onto HTTP statuses. Validation failures are the
// client's to fix; unavailable storage is not.
func statusFor(err error) int {
	switch {
	case errors.Is(err, table.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, roster.ErrDuplicateStudent), errors.Is(err, attendance.ErrDuplicateAttendance):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrUnknownStudent):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// parseDate accepts an optional YYYY-MM-DD string; empty means "today" and is
// resolved by the store.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, attendance.ErrUnknownStudent):
		return "unknown_student"
	case errors.Is(err, attendance.ErrModuleNotEnrolled):
		return "not_enrolled"
	case errors.Is(err, attendance.ErrInvalidLecture):
		return "invalid_lecture"
	case errors.Is(err, attendance.ErrDuplicateAttendance):
		return "duplicate"
	default:
		return "storage"
	}
}
