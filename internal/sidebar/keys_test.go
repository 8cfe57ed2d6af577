package sidebar

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyNewFolder = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("N"), Alt: true}
	keyRename    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R"), Alt: true}
	keyReveal    = tea.KeyMsg{Type: tea.KeyCtrlR, Alt: true}
	keyDelete    = tea.KeyMsg{Type: tea.KeyBackspace, Alt: true}
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keyDown      = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
)

func TestHandleKeyOnFolder(t *testing.T) {
	f := newFixture(t)
	work := mkFolder(t, f, f.repo.DefaultProject(), "work")
	f.sidebar.Load()
	require.True(t, f.sidebar.Select(rowOf(f.sidebar, TypeCategory, work.URL)))

	km := DefaultKeyMap()
	assert.Equal(t, ShortcutNewFolder, f.sidebar.HandleKey(km, keyNewFolder))
	assert.Equal(t, ShortcutRename, f.sidebar.HandleKey(km, keyRename))
	assert.Equal(t, ShortcutReveal, f.sidebar.HandleKey(km, keyReveal))
	assert.Equal(t, ShortcutDelete, f.sidebar.HandleKey(km, keyDelete))
}

func TestHandleKeySwallowsDisallowedChords(t *testing.T) {
	f := newFixture(t)
	f.sidebar.Load()
	km := DefaultKeyMap()

	// Default storage: no rename, no delete.
	require.True(t, f.sidebar.Select(rowOf(f.sidebar, TypeCategory, f.repo.DefaultProject().URL)))
	assert.Equal(t, ShortcutNone, f.sidebar.HandleKey(km, keyRename))
	assert.Equal(t, ShortcutNone, f.sidebar.HandleKey(km, keyDelete))
	assert.Equal(t, ShortcutNewFolder, f.sidebar.HandleKey(km, keyNewFolder))

	// Archive: no new folder.
	require.True(t, f.sidebar.SelectArchive())
	assert.Equal(t, ShortcutNone, f.sidebar.HandleKey(km, keyNewFolder))

	// All notes: nothing to reveal.
	require.True(t, f.sidebar.Select(rowOf(f.sidebar, TypeAll, "")))
	assert.Equal(t, ShortcutNone, f.sidebar.HandleKey(km, keyReveal))

	require.True(t, f.sidebar.Select(rowOf(f.sidebar, TypeTrash, "")))
	assert.Equal(t, ShortcutReveal, f.sidebar.HandleKey(km, keyReveal))
}

func TestHandleKeyNavigationAndSearch(t *testing.T) {
	f := newFixture(t)
	f.sidebar.Load()
	km := DefaultKeyMap()

	assert.Equal(t, ShortcutNavigated, f.sidebar.HandleKey(km, keyDown))
	assert.Equal(t, 2, f.sidebar.Cursor())
	assert.Equal(t, ShortcutNavigated, f.sidebar.HandleKey(km, keyUp))
	assert.Equal(t, 1, f.sidebar.Cursor())

	assert.Equal(t, ShortcutFocusSearch, f.sidebar.HandleKey(km, keyTab))
	assert.Equal(t, 1, f.host.count("focusSearch"))

	assert.Equal(t, ShortcutNone, f.sidebar.HandleKey(km, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}))
}
