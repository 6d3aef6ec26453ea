package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRendererRendersRows(t *testing.T) {
	renderer := NewCSVRenderer()
	data, err := renderer.Render(Table{
		Headers: []string{"Student", "Assignment", "Grade"},
		Rows: [][]string{
			{"Ana", "Essay 1", "92.5"},
			{"Ben", "Essay 1", "78"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Student,Assignment,Grade", lines[0])
	require.Equal(t, "Ana,Essay 1,92.5", lines[1])
}

func TestCSVRendererRequiresHeaders(t *testing.T) {
	renderer := NewCSVRenderer()
	_, err := renderer.Render(Table{})
	require.Error(t, err)
}

func TestCSVRendererPadsShortRows(t *testing.T) {
	renderer := NewCSVRenderer()
	data, err := renderer.Render(Table{
		Headers: []string{"Student", "Grade"},
		Rows:    [][]string{{"Ana"}},
	})
	require.NoError(t, err)
	require.Contains(t, string(data), "Ana,")
}

func TestPDFRendererProducesDocument(t *testing.T) {
	renderer := NewPDFRenderer()
	data, err := renderer.Render(Table{
		Title:   "Grade Report",
		Headers: []string{"Student", "Grade"},
		Rows:    [][]string{{"Ana", "92.5"}},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPDFRendererRequiresHeaders(t *testing.T) {
	renderer := NewPDFRenderer()
	_, err := renderer.Render(Table{Title: "Empty"})
	require.Error(t, err)
}
