package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Roster",
		Columns: []string{"ID", "Name", "Role"},
		Rows: [][]string{
			{"s1", "Jane Smith", "student"},
			{"t1", "John Doe", "teacher"},
		},
	}
}

func TestCSVRendererRender(t *testing.T) {
	data, err := NewCSVRenderer().Render(sampleTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Name,Role", lines[0])
	assert.Equal(t, "s1,Jane Smith,student", lines[1])
}

func TestCSVRendererPadsShortRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only-id"})

	data, err := NewCSVRenderer().Render(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), "only-id,,")
}

func TestCSVRendererRequiresColumns(t *testing.T) {
	_, err := NewCSVRenderer().Render(Table{})
	assert.Error(t, err)
}

func TestPDFRendererRender(t *testing.T) {
	data, err := NewPDFRenderer().Render(sampleTable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPDFRendererRequiresColumns(t *testing.T) {
	_, err := NewPDFRenderer().Render(Table{Title: "Empty"})
	assert.Error(t, err)
}
