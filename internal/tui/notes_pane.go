package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/redjax/notedeck/internal/services"
)

// NotesPane is the note list of the current sidebar selection plus a
// read-only preview of the selected note.
type NotesPane struct {
	all     []*services.Note
	visible []*services.Note
	query   string
	cursor  int
	marked  map[string]bool

	preview     viewport.Model
	previewPath string

	width  int
	height int
}

// NewNotesPane creates an empty pane
func NewNotesPane() *NotesPane {
	return &NotesPane{
		marked:  make(map[string]bool),
		preview: viewport.New(40, 10),
	}
}

// SetNotes replaces the list. The active filter is kept.
func (p *NotesPane) SetNotes(notes []*services.Note) {
	p.all = notes

	live := make(map[string]bool, len(notes))
	for _, n := range notes {
		live[n.Path] = true
	}
	for path := range p.marked {
		if !live[path] {
			delete(p.marked, path)
		}
	}

	p.applyFilter()
}

// Filter narrows the list to notes whose title, file name or tags fuzzy-match query.
func (p *NotesPane) Filter(query string) {
	p.query = strings.TrimSpace(query)
	p.applyFilter()
}

// Query returns the active filter.
func (p *NotesPane) Query() string {
	return p.query
}

func (p *NotesPane) applyFilter() {
	if p.query == "" {
		p.visible = p.all
	} else {
		p.visible = nil
		for _, n := range p.all {
			if matchNote(p.query, n) {
				p.visible = append(p.visible, n)
			}
		}
	}
	p.clampCursor()
}

func matchNote(query string, n *services.Note) bool {
	if fuzzy.MatchFold(query, n.Title) || fuzzy.MatchFold(query, n.Name) {
		return true
	}
	for _, tag := range n.Tags {
		if fuzzy.MatchFold(strings.TrimPrefix(query, "#"), tag) {
			return true
		}
	}
	return false
}

func (p *NotesPane) clampCursor() {
	if p.cursor >= len(p.visible) {
		p.cursor = len(p.visible) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// Len returns the number of visible notes.
func (p *NotesPane) Len() int {
	return len(p.visible)
}

// NoteAt returns the visible note at row, or nil.
func (p *NotesPane) NoteAt(row int) *services.Note {
	if row < 0 || row >= len(p.visible) {
		return nil
	}
	return p.visible[row]
}

// GetIndex finds the visible row of note by path.
func (p *NotesPane) GetIndex(note *services.Note) (int, bool) {
	if note == nil {
		return -1, false
	}
	for i, n := range p.visible {
		if n.Path == note.Path {
			return i, true
		}
	}
	return -1, false
}

// RemoveByNotes drops notes from the list without reloading it.
func (p *NotesPane) RemoveByNotes(notes []*services.Note) {
	gone := make(map[string]bool, len(notes))
	for _, n := range notes {
		gone[n.Path] = true
		delete(p.marked, n.Path)
	}

	kept := make([]*services.Note, 0, len(p.all))
	for _, n := range p.all {
		if !gone[n.Path] {
			kept = append(kept, n)
		}
	}
	p.all = kept

	if gone[p.previewPath] {
		p.Clear()
	}
	p.applyFilter()
}

// SelectRow moves the cursor to row.
func (p *NotesPane) SelectRow(row int) {
	if row < 0 || row >= len(p.visible) {
		return
	}
	p.cursor = row
}

// Cursor returns the selected row.
func (p *NotesPane) Cursor() int {
	return p.cursor
}

// Selected returns the note under the cursor, or nil.
func (p *NotesPane) Selected() *services.Note {
	return p.NoteAt(p.cursor)
}

// MoveCursor moves the cursor by delta, staying in range.
func (p *NotesPane) MoveCursor(delta int) {
	p.cursor += delta
	p.clampCursor()
}

// ToggleMark marks or unmarks the note under the cursor.
func (p *NotesPane) ToggleMark() {
	n := p.Selected()
	if n == nil {
		return
	}
	if p.marked[n.Path] {
		delete(p.marked, n.Path)
	} else {
		p.marked[n.Path] = true
	}
}

// MarkedRows returns the rows of the marked notes, or the cursor row when
// nothing is marked.
func (p *NotesPane) MarkedRows() []int {
	var rows []int
	for i, n := range p.visible {
		if p.marked[n.Path] {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 && p.Selected() != nil {
		rows = []int{p.cursor}
	}
	return rows
}

// ClearMarks unmarks every note.
func (p *NotesPane) ClearMarks() {
	p.marked = make(map[string]bool)
}

// Clear empties the preview.
func (p *NotesPane) Clear() {
	p.previewPath = ""
	p.preview.SetContent("")
	p.preview.GotoTop()
}

// ShowPreview loads the selected note into the preview.
func (p *NotesPane) ShowPreview() error {
	n := p.Selected()
	if n == nil {
		p.Clear()
		return nil
	}
	if n.Path == p.previewPath {
		return nil
	}

	content, err := os.ReadFile(n.Path)
	if err != nil {
		return err
	}
	p.previewPath = n.Path
	p.preview.SetContent(string(content))
	p.preview.GotoTop()
	return nil
}

// UpdatePreview scrolls the preview.
func (p *NotesPane) UpdatePreview(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.preview, cmd = p.preview.Update(msg)
	return cmd
}

// PreviewPath returns the path shown in the preview.
func (p *NotesPane) PreviewPath() string {
	return p.previewPath
}

// SetSize lays the list and the preview out in width x height.
func (p *NotesPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.preview.Width = max(width, 10)
	p.preview.Height = max(height/2-1, 3)
}

func (p *NotesPane) listHeight() int {
	return max(p.height-p.preview.Height-2, 3)
}

// View renders the list and the preview.
func (p *NotesPane) View(focused bool) string {
	var s strings.Builder

	if len(p.visible) == 0 {
		if p.query != "" {
			fmt.Fprintf(&s, "  No notes match %q\n", p.query)
		} else {
			s.WriteString("  No notes in this folder.\n")
		}
	}

	height := p.listHeight()
	start := 0
	if p.cursor >= height {
		start = p.cursor - height + 1
	}
	end := min(start+height, len(p.visible))

	for i := start; i < end; i++ {
		n := p.visible[i]

		mark := "  "
		if p.marked[n.Path] {
			mark = markStyle.Render("● ")
		}

		line := n.Title
		if n.Project == nil {
			line = n.Name
		}
		if len(n.Tags) > 0 {
			line += " " + noteTagStyle.Render("#"+strings.Join(n.Tags, " #"))
		}

		if i == p.cursor && focused {
			s.WriteString(mark + selectedStyle.Render("▶ "+line) + "\n")
		} else {
			s.WriteString(mark + "  " + line + "\n")
		}
	}

	s.WriteString(statusStyle.Render(strings.Repeat("─", max(p.width, 10))) + "\n")
	s.WriteString(p.preview.View())

	return s.String()
}
