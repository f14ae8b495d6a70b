package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrUnavailable is reported when the backing file cannot be read or written,
// or when its existing content does not match the expected shape. Callers
// match it with errors.Is.
var ErrUnavailable = errors.New("storage unavailable")

// Table is a whole-file CSV table with a fixed header row. Every read loads
// the full table, every write replaces the file atomically. Access from
// multiple goroutines or processes is not coordinated here; callers serialize.
type Table struct {
	path   string
	header []string
}

// New describes a table at path with the given column header.
func New(path string, header []string) *Table {
	return &Table{path: path, header: header}
}

// Path returns the location of the backing file.
func (t *Table) Path() string { return t.path }

// Header returns the column names.
func (t *Table) Header() []string { return t.header }

// Init creates the backing file with its header row if it does not exist yet.
func (t *Table) Init() error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", ErrUnavailable, t.path, err)
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %v", ErrUnavailable, dir, err)
		}
	}
	return t.Save(nil)
}

// Exists reports whether the backing file is present.
func (t *Table) Exists() (bool, error) {
	_, err := os.Stat(t.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, t.path, err)
}

// Load reads every data row, verifying the header and per-row field counts.
func (t *Table) Load() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(t.header)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, t.path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header row", ErrUnavailable, t.path)
	}
	if !equal(all[0], t.header) {
		return nil, fmt.Errorf("%w: %s: unexpected header %v", ErrUnavailable, t.path, all[0])
	}
	return all[1:], nil
}

// Save replaces the table content with header plus rows. The new content is
// written to a temp file in the same directory and renamed over the target, so
// a failed write never leaves the table half-written.
func (t *Table) Save(rows [][]string) error {
	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %v", ErrUnavailable, dir, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	writeErr := w.Write(t.header)
	if writeErr == nil {
		writeErr = w.WriteAll(rows)
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if writeErr != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, t.path, writeErr)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrUnavailable, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrUnavailable, t.path, err)
	}
	return nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
