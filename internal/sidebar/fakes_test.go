package sidebar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redjax/notedeck/internal/prefs"
	"github.com/redjax/notedeck/internal/services"
)

type fakeHost struct {
	calls      []string
	updates    int
	onUpdate   func()
	searchText string
}

func (h *fakeHost) UpdateTable(completion func()) {
	h.calls = append(h.calls, "updateTable")
	h.updates++
	if h.onUpdate != nil {
		h.onUpdate()
	}
	if completion != nil {
		completion()
	}
}
func (h *fakeHost) FocusTable()             { h.calls = append(h.calls, "focusTable") }
func (h *fakeHost) CleanSearchAndEditArea() { h.calls = append(h.calls, "cleanSearchAndEditArea") }
func (h *fakeHost) ClearSearch()            { h.calls = append(h.calls, "clearSearch"); h.searchText = "" }
func (h *fakeHost) FocusSearch()            { h.calls = append(h.calls, "focusSearch") }
func (h *fakeHost) RestartWatcher()         { h.calls = append(h.calls, "restartWatcher") }
func (h *fakeHost) LoadMoveMenu()           { h.calls = append(h.calls, "loadMoveMenu") }

func (h *fakeHost) count(call string) int {
	n := 0
	for _, c := range h.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeNotes struct {
	notes    []*services.Note
	selected int
	removed  []*services.Note
}

func (n *fakeNotes) Len() int { return len(n.notes) }
func (n *fakeNotes) NoteAt(row int) *services.Note {
	if row < 0 || row >= len(n.notes) {
		return nil
	}
	return n.notes[row]
}
func (n *fakeNotes) GetIndex(note *services.Note) (int, bool) {
	for i, existing := range n.notes {
		if existing.Path == note.Path {
			return i, true
		}
	}
	return -1, false
}
func (n *fakeNotes) RemoveByNotes(notes []*services.Note) {
	n.removed = append(n.removed, notes...)
	kept := n.notes[:0]
	for _, existing := range n.notes {
		drop := false
		for _, r := range notes {
			if r.Path == existing.Path {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, existing)
		}
	}
	n.notes = kept
}
func (n *fakeNotes) SelectRow(row int) { n.selected = row }

type fakeEditor struct {
	clears  int
	preview string
	events  *[]string
}

func (e *fakeEditor) PreviewPath() string { return e.preview }

func (e *fakeEditor) Clear() {
	e.clears++
	e.preview = ""
	if e.events != nil {
		*e.events = append(*e.events, "editorClear")
	}
}

type fakeBookmarks struct {
	urls    []string
	saved   []string
	removed []string
}

func (b *fakeBookmarks) Load() error { return nil }
func (b *fakeBookmarks) Store(url string) {
	b.urls = append(b.urls, url)
}
func (b *fakeBookmarks) Save() error {
	b.saved = append([]string(nil), b.urls...)
	return nil
}
func (b *fakeBookmarks) RemoveBy(url string) error {
	b.removed = append(b.removed, url)
	kept := b.urls[:0]
	for _, u := range b.urls {
		if u != url {
			kept = append(kept, u)
		}
	}
	b.urls = kept
	return nil
}
func (b *fakeBookmarks) URLs() []string { return b.urls }

type fakePrefs struct {
	last     prefs.Selection
	lastNote string
	writes   int
}

func (p *fakePrefs) Last() prefs.Selection { return p.last }
func (p *fakePrefs) SetLast(sel prefs.Selection) error {
	p.last = sel
	p.writes++
	return nil
}
func (p *fakePrefs) LastNote() string { return p.lastNote }

type fixture struct {
	base      string
	repo      *services.Repository
	host      *fakeHost
	notes     *fakeNotes
	editor    *fakeEditor
	bookmarks *fakeBookmarks
	prefs     *fakePrefs
	sidebar   *Sidebar
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	base := t.TempDir()
	repo, err := services.NewRepository(services.RepositoryOptions{
		DefaultDir: filepath.Join(base, "storage"),
		TrashDir:   filepath.Join(base, "trash"),
	})
	require.NoError(t, err)

	f := &fixture{
		base:      base,
		repo:      repo,
		host:      &fakeHost{},
		notes:     &fakeNotes{selected: -1},
		editor:    &fakeEditor{},
		bookmarks: &fakeBookmarks{},
		prefs:     &fakePrefs{last: prefs.Selection{Row: -1}},
	}
	f.sidebar = New(Deps{
		Repo:      repo,
		Bookmarks: f.bookmarks,
		Prefs:     f.prefs,
		Host:      f.host,
		NoteList:  f.notes,
		Editor:    f.editor,
		Options:   DefaultOptions(),
	})
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// rowOf returns the first row with the given type and project path.
func rowOf(s *Sidebar, typ ItemType, url string) int {
	for i, item := range s.Items() {
		if item.Type != typ {
			continue
		}
		if url == "" || (item.Project != nil && item.Project.URL == url) {
			return i
		}
	}
	return -1
}
