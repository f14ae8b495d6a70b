package catalog

import (
	"classtrack/internal/table"
)

// Entry is one row of the module catalog.
type Entry struct {
	Code       string `json:"code"`
	Module     string `json:"module"`
	Department string `json:"department"`
}

var header = []string{"Code", "Module", "Department"}

// Catalog is a read-only view over the modules file. The file is optional
// setup data maintained by hand; a missing file is an empty catalog, not an
// error.
type Catalog struct {
	tbl *table.Table
}

// New describes the catalog at path. The file is never created or written.
func New(path string) *Catalog {
	return &Catalog{tbl: table.New(path, header)}
}

// Departments returns distinct department names in file order.
func (c *Catalog) Departments() ([]string, error) {
	entries, err := c.load()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	departments := []string{}
	for _, e := range entries {
		if _, ok := seen[e.Department]; ok {
			continue
		}
		seen[e.Department] = struct{}{}
		departments = append(departments, e.Department)
	}
	return departments, nil
}

// ModulesByDepartment returns the catalog entries for one department, in file
// order. Department matching is exact.
func (c *Catalog) ModulesByDepartment(department string) ([]Entry, error) {
	entries, err := c.load()
	if err != nil {
		return nil, err
	}
	matched := []Entry{}
	for _, e := range entries {
		if e.Department == department {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (c *Catalog) load() ([]Entry, error) {
	ok, err := c.tbl.Exists()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	rows, err := c.tbl.Load()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Code: row[0], Module: row[1], Department: row[2]})
	}
	return entries, nil
}
