package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastDefaultsToNoSelection(t *testing.T) {
	s := Open(t.TempDir())

	last := s.Last()
	assert.Equal(t, -1, last.Row)
	assert.Empty(t, last.Type)
	assert.Empty(t, s.LastNote())
}

func TestSetLastPersists(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)

	sel := Selection{Row: 7, Type: "category", ProjectURL: "/data/work", Name: "work"}
	require.NoError(t, s.SetLast(sel))
	require.NoError(t, s.SetLastNote("/data/work/plan.md"))

	reopened := Open(dir)
	assert.Equal(t, sel, reopened.Last())
	assert.Equal(t, "/data/work/plan.md", reopened.LastNote())
}

func TestSetLastClearsProject(t *testing.T) {
	s := Open(t.TempDir())

	require.NoError(t, s.SetLast(Selection{Row: 3, Type: "category", ProjectURL: "/data/work", Name: "work"}))
	require.NoError(t, s.SetLast(Selection{Row: 2, Type: "trash", Name: "Trash"}))

	last := s.Last()
	assert.Equal(t, "trash", last.Type)
	assert.Empty(t, last.ProjectURL)
}
