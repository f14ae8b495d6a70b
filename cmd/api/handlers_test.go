package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/attendance"
	"classtrack/internal/catalog"
	"classtrack/internal/roster"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	students, err := roster.NewStore(filepath.Join(dir, "students.csv"))
	require.NoError(t, err)
	records, err := attendance.NewStore(filepath.Join(dir, "attendance.csv"), students)
	require.NoError(t, err)

	srv := &server{
		students:   students,
		records:    records,
		aggregator: attendance.NewAggregator(records),
		reset:      attendance.NewResetService(records),
		modules:    catalog.New(filepath.Join(dir, "modules.csv")),
	}

	r := gin.New()
	srv.register(r.Group("/v1"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndRecordFlow(t *testing.T) {
	r := testRouter(t)

	w := do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B1","name":"Basim","stage":"2","department":"CS","dob":"2003-05-14","modules":"Python, Network"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate registration conflicts.
	w = do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B1","name":"Basim","dob":"2003-05-14"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Bad DOB is the client's problem.
	w = do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B2","name":"Sara","dob":"14-05-2003"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"B1","module":"Python","lecture":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"B1","module":"Database","lecture":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"X","module":"Python","lecture":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"B1","module":"Python","lecture":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"B1","module":"Python","lecture":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestModuleSummary(t *testing.T) {
	r := testRouter(t)

	w := do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B1","name":"Basim","dob":"2003-05-14","modules":"Python"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B2","name":"Sara","dob":"2004-07-01","modules":"Python"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	for _, body := range []string{
		`{"student_id":"B1","module":"Python","lecture":2}`,
		`{"student_id":"B1","module":"Python","lecture":1}`,
		`{"student_id":"B2","module":"Python","lecture":1}`,
	} {
		w = do(t, r, http.MethodPost, "/v1/attendance", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = do(t, r, http.MethodGet, "/v1/modules/Python/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Module        string                    `json:"module"`
		TotalStudents int                       `json:"total_students"`
		Lectures      []attendance.LectureCount `json:"lectures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Python", resp.Module)
	assert.Equal(t, 2, resp.TotalStudents)
	assert.Equal(t, []attendance.LectureCount{{Lecture: 1, Present: 2}, {Lecture: 2, Present: 1}}, resp.Lectures)
}

func TestResetEndpoint(t *testing.T) {
	r := testRouter(t)

	w := do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B1","name":"Basim","dob":"2003-05-14","modules":"Python"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"B1","module":"Python","lecture":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/v1/attendance/reset", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/modules/Python/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Lectures []attendance.LectureCount `json:"lectures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Lectures)

	// Students survive the reset.
	w = do(t, r, http.MethodGet, "/v1/students", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"B1"`)
}

func TestExportCSV(t *testing.T) {
	r := testRouter(t)

	w := do(t, r, http.MethodPost, "/v1/students",
		`{"id":"B1","name":"Basim","dob":"2003-05-14","modules":"Python"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/v1/attendance",
		`{"student_id":"B1","module":"Python","lecture":1,"date":"2026-01-20"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/v1/modules/Python/attendance.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t,
		"StudentID,Module,LectureNumber,Date,Status\nB1,Python,1,2026-01-20,Present\n",
		w.Body.String())
}

func TestDepartmentsWithoutCatalogFile(t *testing.T) {
	r := testRouter(t)

	w := do(t, r, http.MethodGet, "/v1/departments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"departments":[]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/departments/CS/modules", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"modules":[]}`, w.Body.String())
}
