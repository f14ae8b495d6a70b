package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"classtrack/internal/table"
)

// Student represents an enrolled student. Students are immutable once
// registered; there is no update or delete path.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Stage      string    `json:"stage"`
	Department string    `json:"department"`
	DOB        time.Time `json:"dob"`
	Modules    []string  `json:"modules"`
}

var (
	// ErrMissingID is returned when registration is attempted without an id.
	ErrMissingID = errors.New("student id required")
	// ErrDuplicateStudent is returned when the id is already on file.
	ErrDuplicateStudent = errors.New("student id already registered")
	// ErrInvalidDate is returned when the date of birth does not parse.
	ErrInvalidDate = errors.New("invalid date of birth")
	// ErrInvalidModuleName is returned when a module name contains the
	// reserved cell delimiter and could not round-trip through the file.
	ErrInvalidModuleName = errors.New("module name contains reserved character " + moduleDelim)
)

const (
	dateLayout = "2006-01-02"

	// moduleDelim joins module names inside the Modules cell. It must stay
	// distinct from the comma used by the entry form.
	moduleDelim = ";"
)

var header = []string{"ID", "Name", "Stage", "Department", "DOB", "Modules"}

// Store owns the students table. It is the only writer of that file.
type Store struct {
	tbl *table.Table
}

// NewStore opens the students table at path, creating it with its header row
// when absent.
func NewStore(path string) (*Store, error) {
	tbl := table.New(path, header)
	if err := tbl.Init(); err != nil {
		return nil, err
	}
	return &Store{tbl: tbl}, nil
}

// ParseModules splits a comma-separated module list as entered in the form,
// trimming surrounding whitespace per entry and dropping empties. This is the
// only place module names are trimmed; enrollment checks compare exact strings.
func ParseModules(raw string) []string {
	var modules []string
	for _, part := range strings.Split(raw, ",") {
		if m := strings.TrimSpace(part); m != "" {
			modules = append(modules, m)
		}
	}
	return modules
}

// AddStudent registers a new student. Re-adding an existing id is rejected,
// never merged. On success the row is appended and the table persisted; on any
// failure the table is left exactly as it was.
func (s *Store) AddStudent(id, name, stage, department, dob string, modules []string) error {
	if id == "" {
		return ErrMissingID
	}
	for _, m := range modules {
		if strings.Contains(m, moduleDelim) {
			return ErrInvalidModuleName
		}
	}
	rows, err := s.tbl.Load()
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row[0] == id {
			return ErrDuplicateStudent
		}
	}
	born, err := time.Parse(dateLayout, dob)
	if err != nil {
		return ErrInvalidDate
	}

	rows = append(rows, []string{
		id, name, stage, department,
		born.Format(dateLayout),
		strings.Join(modules, moduleDelim),
	})
	return s.tbl.Save(rows)
}

// GetStudent looks up a student by id. Missing students return (nil, nil).
func (s *Store) GetStudent(id string) (*Student, error) {
	rows, err := s.tbl.Load()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row[0] == id {
			st, err := fromRow(row)
			if err != nil {
				return nil, err
			}
			return &st, nil
		}
	}
	return nil, nil
}

// ListStudents returns every student in insertion order.
func (s *Store) ListStudents() ([]Student, error) {
	rows, err := s.tbl.Load()
	if err != nil {
		return nil, err
	}
	students := make([]Student, 0, len(rows))
	for _, row := range rows {
		st, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

func fromRow(row []string) (Student, error) {
	born, err := time.Parse(dateLayout, row[4])
	if err != nil {
		return Student{}, fmt.Errorf("%w: student %s: bad DOB %q", table.ErrUnavailable, row[0], row[4])
	}
	var modules []string
	if row[5] != "" {
		modules = strings.Split(row[5], moduleDelim)
	}
	return Student{
		ID:         row[0],
		Name:       row[1],
		Stage:      row[2],
		Department: row[3],
		DOB:        born,
		Modules:    modules,
	}, nil
}
