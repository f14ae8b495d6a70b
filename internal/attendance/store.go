package attendance

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"classtrack/internal/roster"
	"classtrack/internal/table"
)

// StatusPresent is the only status the recording path ever writes. Absence is
// not tracked; a missing row means the student was not recorded.
const StatusPresent = "Present"

// Record represents one "student was present at lecture N of module M" fact.
type Record struct {
	StudentID string    `json:"student_id"`
	Module    string    `json:"module"`
	Lecture   int       `json:"lecture"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
}

var (
	// ErrUnknownStudent is returned when the student id is not on file.
	ErrUnknownStudent = errors.New("unknown student")
	// ErrModuleNotEnrolled is returned when the module is not in the
	// student's enrolled set. Comparison is exact and case-sensitive.
	ErrModuleNotEnrolled = errors.New("student not enrolled in module")
	// ErrInvalidLecture is returned when the lecture number is not positive.
	ErrInvalidLecture = errors.New("lecture number must be positive")
	// ErrDuplicateAttendance is returned when the (student, module, lecture)
	// triple is already recorded.
	ErrDuplicateAttendance = errors.New("attendance already recorded")
)

const dateLayout = "2006-01-02"

var header = []string{"StudentID", "Module", "LectureNumber", "Date", "Status"}

// Store owns the attendance table and validates every append against the
// student roster. It is the sole mutation path for attendance data.
type Store struct {
	tbl      *table.Table
	students *roster.Store
	now      func() time.Time
}

// NewStore opens the attendance table at path, creating it with its header
// row when absent. Records are validated against students.
func NewStore(path string, students *roster.Store) (*Store, error) {
	tbl := table.New(path, header)
	if err := tbl.Init(); err != nil {
		return nil, err
	}
	return &Store{tbl: tbl, students: students, now: time.Now}, nil
}

// WithClock overrides the clock used to stamp records with no explicit date.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Record validates and appends one presence event. Checks run in order and
// stop at the first failure, so the caller always sees the most fundamental
// applicable error: unknown student, then enrollment, then lecture shape,
// then duplication. A zero date means "today". On any failure the table is
// untouched.
func (s *Store) Record(studentID, module string, lecture int, date time.Time) (*Record, error) {
	student, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUnknownStudent
	}
	if !enrolled(student, module) {
		return nil, ErrModuleNotEnrolled
	}
	if lecture <= 0 {
		return nil, ErrInvalidLecture
	}

	rows, err := s.tbl.Load()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		// Parse rather than string-compare the lecture cell: "01" and "1"
		// are the same lecture, and a malformed cell fails the call the
		// same way it fails listing.
		n, err := strconv.Atoi(row[2])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: bad lecture number %q", table.ErrUnavailable, row[2])
		}
		if row[0] == studentID && row[1] == module && n == lecture {
			return nil, ErrDuplicateAttendance
		}
	}

	if date.IsZero() {
		date = s.now()
	}
	rec := Record{
		StudentID: studentID,
		Module:    module,
		Lecture:   lecture,
		Date:      date,
		Status:    StatusPresent,
	}
	rows = append(rows, []string{
		rec.StudentID, rec.Module, strconv.Itoa(rec.Lecture),
		rec.Date.Format(dateLayout), rec.Status,
	})
	if err := s.tbl.Save(rows); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListForModule returns every record for module ordered by lecture number
// ascending, insertion order breaking ties.
func (s *Store) ListForModule(module string) ([]Record, error) {
	rows, err := s.tbl.Load()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if row[1] != module {
			continue
		}
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Lecture < records[j].Lecture
	})
	return records, nil
}

func enrolled(student *roster.Student, module string) bool {
	for _, m := range student.Modules {
		if m == module {
			return true
		}
	}
	return false
}

func fromRow(row []string) (Record, error) {
	lecture, err := strconv.Atoi(row[2])
	if err != nil || lecture <= 0 {
		return Record{}, fmt.Errorf("%w: bad lecture number %q", table.ErrUnavailable, row[2])
	}
	date, err := time.Parse(dateLayout, row[3])
	if err != nil {
		return Record{}, fmt.Errorf("%w: bad date %q", table.ErrUnavailable, row[3])
	}
	return Record{
		StudentID: row[0],
		Module:    row[1],
		Lecture:   lecture,
		Date:      date,
		Status:    row[4],
	}, nil
}
