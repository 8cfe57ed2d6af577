package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"

	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/sidebar"
	"github.com/redjax/notedeck/internal/utils"
)

var copyToClipboard = utils.CopyToClipboard

type inputPurpose int

const (
	inputNewFolder inputPurpose = iota
	inputRename
	inputNewNote
)

type pickerPurpose int

const (
	pickAttach pickerPurpose = iota
	pickImport
)

type confirmDialog struct {
	prompt string
	onYes  func() error
}

type inputDialog struct {
	purpose inputPurpose
	title   string
	project *services.Project
	field   textinput.Model
}

type actionMenu struct {
	actions []sidebar.Action
	labels  []string
	cursor  int
}

type optionsDialog struct {
	project  *services.Project
	settings services.ProjectSettings
	cursor   int
}

const optionFields = 4

type moveDialog struct {
	rows   []int
	cursor int
}

type pickerDialog struct {
	purpose pickerPurpose
	row     int
	model   filepicker.Model
}

var sortOrders = []string{services.SortByModified, services.SortByTitle, services.SortByName}

// Confirm

func (m *AppModel) openConfirm(prompt string, onYes func() error) {
	m.confirm = confirmDialog{prompt: prompt, onYes: onYes}
	m.mode = modeConfirm
}

func (m *AppModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = modeNormal
		if err := m.confirm.onYes(); err != nil {
			m.showError(err)
		}
		m.confirm = confirmDialog{}
	case "n", "N", "esc", "q":
		m.mode = modeNormal
		m.confirm = confirmDialog{}
	}
	return nil
}

// Input

func (m *AppModel) openInput(purpose inputPurpose, title, value string, project *services.Project) {
	field := textinput.New()
	field.CharLimit = 255
	field.Width = 40
	field.SetValue(value)
	field.CursorEnd()
	field.Focus()

	switch purpose {
	case inputNewNote:
		field.Placeholder = "note name"
	default:
		field.Placeholder = "folder name"
	}

	m.input = inputDialog{purpose: purpose, title: title, project: project, field: field}
	m.mode = modeInput
}

func (m *AppModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if m.input.purpose == inputRename {
			m.sidebar.CancelRename()
		}
		m.mode = modeNormal
		return nil

	case "enter":
		m.mode = modeNormal
		value := m.input.field.Value()

		var err error
		switch m.input.purpose {
		case inputNewFolder:
			if err = m.sidebar.AddChild(m.input.project, value); err == nil && strings.TrimSpace(value) != "" {
				m.setStatus("Created folder "+strings.TrimSpace(value), nil)
			}
		case inputRename:
			err = m.sidebar.CommitRename(value)
		case inputNewNote:
			err = m.createNote(value)
		}
		if err != nil {
			m.showError(err)
		}
		return nil
	}

	var cmd tea.Cmd
	m.input.field, cmd = m.input.field.Update(msg)
	return cmd
}

func (m *AppModel) createNote(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	projects := m.sidebar.SidebarProjects()
	if len(projects) == 0 {
		return errors.New("no folder to create the note in")
	}

	note, err := m.repo.CreateNote(projects[0], name)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	m.ClearSearch()
	m.UpdateTable(func() {
		if row, ok := m.notes.GetIndex(note); ok {
			m.notes.SelectRow(row)
			m.showPreview()
		}
	})
	m.FocusTable()
	m.setStatus("Created "+note.Name, nil)
	return nil
}

// Action menu

func (m *AppModel) openMenu() {
	states := sidebar.Authorize(m.sidebar.SelectedItem())
	actions := sidebar.Visible(states)
	if len(actions) == 0 {
		return
	}

	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = states[a].Label
	}
	m.menu = actionMenu{actions: actions, labels: labels}
	m.mode = modeMenu
}

func (m *AppModel) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.menu.cursor > 0 {
			m.menu.cursor--
		}
	case "down", "j":
		if m.menu.cursor < len(m.menu.actions)-1 {
			m.menu.cursor++
		}
	case "enter":
		m.mode = modeNormal
		return m.runAction(m.menu.actions[m.menu.cursor])
	case "esc", "q", ".":
		m.mode = modeNormal
	}
	return nil
}

// View options

func (m *AppModel) openOptions(p *services.Project) {
	if p == nil {
		return
	}
	m.options = optionsDialog{project: p, settings: p.Settings}
	m.mode = modeOptions
}

func (m *AppModel) updateOptions(msg tea.KeyMsg) tea.Cmd {
	o := &m.options
	switch msg.String() {
	case "up", "k":
		if o.cursor > 0 {
			o.cursor--
		}
	case "down", "j":
		if o.cursor < optionFields-1 {
			o.cursor++
		}
	case " ", "enter", "right", "l":
		switch o.cursor {
		case 0:
			o.settings.SortBy = nextSortOrder(o.settings.SortBy)
		case 1:
			o.settings.SortDesc = !o.settings.SortDesc
		case 2:
			o.settings.ShowInAll = !o.settings.ShowInAll
		case 3:
			o.settings.Hidden = !o.settings.Hidden
		}
	case "s":
		m.mode = modeNormal
		if err := m.repo.SaveSettings(o.project, o.settings); err != nil {
			m.showError(err)
			return nil
		}
		m.sidebar.Reload()
		m.UpdateTable(nil)
		m.setStatus("Saved view options for "+o.project.DisplayName(), nil)
	case "esc", "q":
		m.mode = modeNormal
	}
	return nil
}

func nextSortOrder(current string) string {
	for i, s := range sortOrders {
		if s == current {
			return sortOrders[(i+1)%len(sortOrders)]
		}
	}
	return sortOrders[0]
}

// Move

func (m *AppModel) openMove() {
	rows := m.notes.MarkedRows()
	if len(rows) == 0 {
		return
	}
	if len(m.moveTargets) == 0 {
		m.LoadMoveMenu()
	}
	m.move = moveDialog{rows: rows}
	m.mode = modeMove
}

func (m *AppModel) updateMove(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.move.cursor > 0 {
			m.move.cursor--
		}
	case "down", "j":
		if m.move.cursor < len(m.moveTargets)-1 {
			m.move.cursor++
		}
	case "enter":
		m.mode = modeNormal
		if m.move.cursor >= len(m.moveTargets) {
			return nil
		}
		target := m.moveTargets[m.move.cursor]

		row := m.rowForProject(target)
		cmd, err := m.sidebar.AcceptDrop(row, sidebar.Payload{Rows: m.move.rows})
		if err != nil {
			if errors.Is(err, sidebar.ErrInvalidTarget) {
				m.setStatus("Cannot move notes to "+target.DisplayName(), nil)
				return nil
			}
			m.showError(err)
			return nil
		}
		m.notes.ClearMarks()
		m.setStatus(fmt.Sprintf("Moved %d note(s) to %s", len(m.move.rows), target.DisplayName()), nil)
		return cmd
	case "esc", "q":
		m.mode = modeNormal
	}
	return nil
}

// rowForProject finds the sidebar row that drops into p.
func (m *AppModel) rowForProject(p *services.Project) int {
	for i, item := range m.sidebar.Items() {
		if item.Type != sidebar.TypeCategory && item.Type != sidebar.TypeArchive {
			continue
		}
		if item.Project.Equal(p) {
			return i
		}
	}
	return -1
}

// File picker

func (m *AppModel) openPicker(purpose pickerPurpose) tea.Cmd {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = purpose == pickImport
	fp.ShowHidden = false
	fp.Height = max(m.height-10, 5)
	if home, err := homedir.Dir(); err == nil {
		fp.CurrentDirectory = home
	}

	m.picker = pickerDialog{purpose: purpose, row: m.sidebar.Cursor(), model: fp}
	m.mode = modePicker
	return m.picker.model.Init()
}

func (m *AppModel) updatePicker(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "q" {
		m.mode = modeNormal
		return nil
	}

	var cmd tea.Cmd
	m.picker.model, cmd = m.picker.model.Update(msg)

	didSelect, path := m.picker.model.DidSelectFile(msg)
	if !didSelect {
		return cmd
	}
	m.mode = modeNormal

	switch m.picker.purpose {
	case pickAttach:
		if err := m.sidebar.AddRoot(path); err != nil {
			if errors.Is(err, sidebar.ErrAlreadyRegistered) {
				m.setStatus(path+" is already attached", nil)
				return nil
			}
			m.showError(err)
			return nil
		}
		m.setStatus("Attached "+path, nil)
		return nil

	case pickImport:
		dropCmd, err := m.sidebar.AcceptDrop(m.picker.row, sidebar.Payload{Paths: []string{path}})
		if err != nil {
			m.showError(err)
			return nil
		}
		m.setStatus("Importing "+path+"...", nil)
		return dropCmd
	}
	return nil
}

// dialogView renders the active dialog in place of the notes pane.
func (m *AppModel) dialogView() string {
	var s strings.Builder

	switch m.mode {
	case modeConfirm:
		s.WriteString(confirmTextStyle.Render(m.confirm.prompt) + "\n\n")
		s.WriteString(helpStyle.Render("y: yes • n: no"))

	case modeMessage:
		s.WriteString(errorStyle.Render(m.message) + "\n\n")
		s.WriteString(helpStyle.Render("enter: ok"))

	case modeInput:
		s.WriteString(titleStyle.Render(m.input.title) + "\n\n")
		s.WriteString(m.input.field.View() + "\n\n")
		s.WriteString(helpStyle.Render("enter: confirm • esc: cancel"))

	case modeMenu:
		s.WriteString(titleStyle.Render("Actions") + "\n\n")
		for i, label := range m.menu.labels {
			if i == m.menu.cursor {
				s.WriteString(selectedStyle.Render("▶ "+label) + "\n")
			} else {
				s.WriteString("  " + label + "\n")
			}
		}
		s.WriteString("\n" + helpStyle.Render("↑/k: up • ↓/j: down • enter: run • esc: close"))

	case modeOptions:
		o := m.options
		s.WriteString(titleStyle.Render("View options: "+o.project.DisplayName()) + "\n\n")
		fields := []string{
			"Sort by: " + o.settings.SortBy,
			"Descending: " + checkbox(o.settings.SortDesc),
			"Show in All notes: " + checkbox(o.settings.ShowInAll),
			"Hidden: " + checkbox(o.settings.Hidden),
		}
		for i, f := range fields {
			if i == o.cursor {
				s.WriteString(selectedStyle.Render("▶ "+f) + "\n")
			} else {
				s.WriteString("  " + f + "\n")
			}
		}
		s.WriteString("\n" + helpStyle.Render("↑/k ↓/j: field • space: change • s: save • esc: cancel"))

	case modeMove:
		fmt.Fprintf(&s, "%s\n\n", titleStyle.Render(fmt.Sprintf("Move %d note(s) to", len(m.move.rows))))
		for i, p := range m.moveTargets {
			line := strings.Repeat("  ", p.Depth()) + "📁 " + p.DisplayName()
			if i == m.move.cursor {
				s.WriteString(selectedStyle.Render("▶ "+line) + "\n")
			} else {
				s.WriteString("  " + line + "\n")
			}
		}
		s.WriteString("\n" + helpStyle.Render("↑/k: up • ↓/j: down • enter: move • esc: cancel"))

	case modePicker:
		title := "Attach storage"
		if m.picker.purpose == pickImport {
			title = "Import into folder"
		}
		s.WriteString(titleStyle.Render(title) + "\n")
		s.WriteString(statusStyle.Render(m.picker.model.CurrentDirectory) + "\n\n")
		s.WriteString(m.picker.model.View() + "\n")
		s.WriteString(helpStyle.Render("enter: select • l/→: open • h/←: back • q: cancel"))
	}

	return confirmDialogStyle.Render(s.String())
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
