// Package sidebar implements the storage sidebar: the flat row list built
// from the registered folders, selection handling, drag and drop, the
// contextual action rules and the folder lifecycle operations.
package sidebar

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/redjax/notedeck/internal/prefs"
	"github.com/redjax/notedeck/internal/services"
)

// Repository is the project store the sidebar mutates.
type Repository interface {
	Tree
	Add(p *services.Project) []*services.Project
	RemoveBy(p *services.Project)
	GetProjectBy(url string) *services.Project
	GetRootProject() *services.Project
	LoadLabel(p *services.Project)
	MoveToTrash(url string) (string, error)
	ReadDirectory(url string) ([]services.DirEntry, error)
	RemoveNotes(ctx context.Context, notes []*services.Note) services.RemoveResult
	MoveNotes(notes []*services.Note, p *services.Project) error
	Rename(p *services.Project, name string) error
	Copy(p *services.Project, src string) (string, error)
	CopyEntry(dir string, entry services.DirEntry) (string, error)
	IsBundle(name string) bool
}

// Host is the surrounding workspace: note table, search field and watcher.
type Host interface {
	// UpdateTable reloads the note list for the current selection, then runs completion.
	UpdateTable(completion func())
	FocusTable()
	CleanSearchAndEditArea()
	ClearSearch()
	FocusSearch()
	RestartWatcher()
	LoadMoveMenu()
}

// NoteList is the index-addressable list of visible notes.
type NoteList interface {
	Len() int
	NoteAt(row int) *services.Note
	GetIndex(note *services.Note) (int, bool)
	RemoveByNotes(notes []*services.Note)
	SelectRow(row int)
}

// Editor shows the content of the selected note.
type Editor interface {
	Clear()
	// PreviewPath is the path of the note on display, or "".
	PreviewPath() string
}

// Bookmarks persists access grants for attached storages.
type Bookmarks interface {
	Load() error
	Store(url string)
	Save() error
	RemoveBy(url string) error
	URLs() []string
}

// Prefs persists the last selection.
type Prefs interface {
	Last() prefs.Selection
	SetLast(sel prefs.Selection) error
	LastNote() string
}

// Deps are the collaborators of a Sidebar.
type Deps struct {
	Context   context.Context
	Repo      Repository
	Bookmarks Bookmarks
	Prefs     Prefs
	Host      Host
	NoteList  NoteList
	Editor    Editor
	Logger    logrus.FieldLogger
	Options   Options
}

// Sidebar owns the rows, the selection and the selection bookkeeping.
// It is not safe for concurrent use; drive it from the UI event loop.
type Sidebar struct {
	ctx       context.Context
	repo      Repository
	bookmarks Bookmarks
	prefs     Prefs
	host      Host
	notes     NoteList
	editor    Editor
	log       logrus.FieldLogger
	opts      Options

	items    []Item
	selected []int
	detector SelectionDetector
	last     triple

	firstLaunch bool
	skipNext    bool
	renaming    *services.Project
}

// New creates a sidebar. Call Load to build the rows and restore the last selection.
func New(deps Deps) *Sidebar {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		deps.Logger = discard
	}
	if deps.Options.CopyWorkers < 1 {
		deps.Options.CopyWorkers = 1
	}

	return &Sidebar{
		ctx:         deps.Context,
		repo:        deps.Repo,
		bookmarks:   deps.Bookmarks,
		prefs:       deps.Prefs,
		host:        deps.Host,
		notes:       deps.NoteList,
		editor:      deps.Editor,
		log:         deps.Logger,
		opts:        deps.Options,
		firstLaunch: true,
	}
}

// Load builds the rows and selects the persisted selection, or the first
// selectable row.
func (s *Sidebar) Load() {
	s.host.RestartWatcher()
	s.host.LoadMoveMenu()
	s.items = Build(s.repo, s.opts)

	last := s.prefs.Last()
	row := s.findRow(triple{Type: last.Type, Project: last.ProjectURL, Name: last.Name})
	if row < 0 && s.isSelectable(last.Row) {
		row = last.Row
	}
	if row < 0 {
		row = s.nearestSelectable(0)
	}
	if row >= 0 {
		s.Select(row)
	}
}

// Reload rebuilds every row and reselects the previously selected one.
func (s *Sidebar) Reload() {
	s.host.RestartWatcher()
	s.host.LoadMoveMenu()

	prevRow := s.Cursor()
	var prev triple
	if item := s.ItemAt(prevRow); item != nil {
		prev = item.triple()
	} else {
		prevRow = -1
	}

	s.items = Build(s.repo, s.opts)
	s.selected = nil

	row := -1
	if prevRow >= 0 {
		row = s.findRow(prev)
		if row < 0 {
			row = s.nearestSelectable(min(prevRow, len(s.items)-1))
		}
	}
	if row >= 0 {
		s.Select(row)
	}
}

func (s *Sidebar) findRow(t triple) int {
	if t.Type == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].IsSelectable() && s.items[i].triple() == t {
			return i
		}
	}
	return -1
}

// nearestSelectable searches downwards from row, then upwards.
func (s *Sidebar) nearestSelectable(row int) int {
	if row < 0 {
		row = 0
	}
	for i := row; i < len(s.items); i++ {
		if s.items[i].IsSelectable() {
			return i
		}
	}
	for i := row - 1; i >= 0; i-- {
		if s.items[i].IsSelectable() {
			return i
		}
	}
	return -1
}

func (s *Sidebar) isSelectable(row int) bool {
	return row >= 0 && row < len(s.items) && s.items[row].IsSelectable()
}

// Items returns the current rows.
func (s *Sidebar) Items() []Item {
	return s.items
}

// ItemAt returns the row, or nil when row is out of range.
func (s *Sidebar) ItemAt(row int) *Item {
	if row < 0 || row >= len(s.items) {
		return nil
	}
	return &s.items[row]
}

// SelectedRows returns the selected rows; the first is the cursor.
func (s *Sidebar) SelectedRows() []int {
	return s.selected
}

// Cursor returns the primary selected row, or -1.
func (s *Sidebar) Cursor() int {
	if len(s.selected) == 0 {
		return -1
	}
	return s.selected[0]
}

// SelectedItem returns the primary selected row if it is still selectable.
func (s *Sidebar) SelectedItem() *Item {
	if len(s.selected) == 0 || !s.isSelectable(s.selected[0]) {
		return nil
	}
	return &s.items[s.selected[0]]
}

// Select makes row the only selected row. Non-selectable rows are ignored.
func (s *Sidebar) Select(row int) bool {
	if !s.isSelectable(row) {
		return false
	}
	s.selected = []int{row}
	s.selectionDidChange(row)
	return true
}

// ExtendSelection adds row to the selection.
func (s *Sidebar) ExtendSelection(row int) bool {
	if !s.isSelectable(row) {
		return false
	}
	for _, r := range s.selected {
		if r == row {
			return false
		}
	}
	if len(s.selected) == 0 {
		return s.Select(row)
	}
	s.selected = append(s.selected, row)
	s.selectionDidChange(row)
	return true
}

// SelectNext moves the cursor down, stepping over one Label row.
func (s *Sidebar) SelectNext() bool {
	return s.step(1)
}

// SelectPrev moves the cursor up, stepping over one Label row.
func (s *Sidebar) SelectPrev() bool {
	return s.step(-1)
}

func (s *Sidebar) step(dir int) bool {
	next := s.Cursor() + dir
	if next >= 0 && next < len(s.items) && s.items[next].Type == TypeLabel {
		next += dir
	}
	return s.Select(next)
}

// SelectArchive selects the Archive pseudo-folder, if shown.
func (s *Sidebar) SelectArchive() bool {
	for i := range s.items {
		if s.items[i].Type == TypeArchive {
			return s.Select(i)
		}
	}
	return false
}

// RevealProject selects the row of p without reloading the note list.
func (s *Sidebar) RevealProject(p *services.Project) bool {
	for i := range s.items {
		if s.items[i].Type == TypeCategory && s.items[i].Project.Equal(p) {
			if i == s.Cursor() {
				return false
			}
			s.skipNext = true
			ok := s.Select(i)
			s.skipNext = false
			return ok
		}
	}
	return false
}

// SelectedProjects returns the folders bound to the selected rows.
func (s *Sidebar) SelectedProjects() []*services.Project {
	var projects []*services.Project
	for _, row := range s.selected {
		if !s.isSelectable(row) {
			continue
		}
		if p := s.items[row].Project; p != nil {
			projects = append(projects, p)
		}
	}
	return projects
}

// SidebarProjects returns the selected folders, else the first root, else nil.
func (s *Sidebar) SidebarProjects() []*services.Project {
	if projects := s.SelectedProjects(); len(projects) > 0 {
		return projects
	}
	if root := s.repo.GetRootProject(); root != nil {
		return []*services.Project{root}
	}
	return nil
}

// selectionDidChange reloads the note list when the selection really changed:
// the row identity differs from the last one and either the folder set
// changed or the row has no folder.
func (s *Sidebar) selectionDidChange(row int) {
	item := &s.items[row]
	t := item.triple()

	changed := s.detector.Changed(s.SelectedProjects())
	if t == s.last || !(changed || item.Project == nil || item.Type.IsPseudo()) {
		return
	}

	s.last = t
	if err := s.prefs.SetLast(prefs.Selection{Row: row, Type: t.Type, ProjectURL: t.Project, Name: t.Name}); err != nil {
		s.log.WithError(err).Warn("failed to persist sidebar selection")
	}

	s.editor.Clear()
	if !s.firstLaunch {
		s.host.ClearSearch()
	}

	if s.skipNext {
		s.skipNext = false
		return
	}

	s.log.WithFields(logrus.Fields{"type": t.Type, "project": t.Project}).Debug("sidebar selection changed")

	first := s.firstLaunch
	s.host.UpdateTable(func() {
		if !first {
			return
		}
		s.firstLaunch = false
		s.restoreLastNote()
	})
}

func (s *Sidebar) restoreLastNote() {
	if path := s.prefs.LastNote(); path != "" {
		if row, ok := s.notes.GetIndex(&services.Note{Path: path}); ok {
			s.notes.SelectRow(row)
			return
		}
	}
	if s.notes.Len() > 0 {
		s.host.FocusTable()
	}
}
