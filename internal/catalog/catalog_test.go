package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Code,Module,Department
CS101,Programming Basics,Computer Science
CS102,Databases,Computer Science
NET201,Routing,Networking
`

func testCatalog(t *testing.T, content string) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.csv")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return New(path)
}

func TestMissingFileIsEmptyCatalog(t *testing.T) {
	c := testCatalog(t, "")

	// Empty, not nil, so the JSON shape stays a list.
	departments, err := c.Departments()
	require.NoError(t, err)
	assert.NotNil(t, departments)
	assert.Empty(t, departments)

	entries, err := c.ModulesByDepartment("Computer Science")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestDepartmentsDistinctInFileOrder(t *testing.T) {
	c := testCatalog(t, sample)

	departments, err := c.Departments()
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science", "Networking"}, departments)
}

func TestModulesByDepartment(t *testing.T) {
	c := testCatalog(t, sample)

	entries, err := c.ModulesByDepartment("Computer Science")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Code: "CS101", Module: "Programming Basics", Department: "Computer Science"}, entries[0])
	assert.Equal(t, "CS102", entries[1].Code)

	none, err := c.ModulesByDepartment("computer science")
	require.NoError(t, err)
	assert.Empty(t, none)
}
