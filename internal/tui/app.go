package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/redjax/notedeck/internal/config"
	"github.com/redjax/notedeck/internal/logging"
	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/sidebar"
	"github.com/redjax/notedeck/internal/watcher"
)

// FSChangedMsg reports that a watched folder changed on disk.
type FSChangedMsg struct{}

type backupDoneMsg struct {
	path  string
	files int
	err   error
}

type focusArea int

const (
	focusSidebar focusArea = iota
	focusNotes
	focusSearch
)

type mode int

const (
	modeNormal mode = iota
	modeConfirm
	modeMessage
	modeInput
	modeMenu
	modeOptions
	modeMove
	modePicker
)

// Prefs persists the last selection and the last previewed note.
type Prefs interface {
	sidebar.Prefs
	SetLastNote(path string) error
}

// Options are the collaborators of the app.
type Options struct {
	Context   context.Context
	Config    *config.Config
	Logger    logrus.FieldLogger
	Repo      *services.Repository
	Bookmarks sidebar.Bookmarks
	Prefs     Prefs
	Watcher   *watcher.Watcher
	Opener    *services.Opener

	// StartInNotes focuses the note list instead of the sidebar.
	StartInNotes bool
	// Search opens All notes with the search field focused and filled with Query.
	Search bool
	Query  string
}

// AppModel is the two-pane workspace: the storage sidebar and the notes pane.
// It is the sidebar's host and must be used through a pointer.
type AppModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg     *config.Config
	log     logrus.FieldLogger
	repo    *services.Repository
	prefs   Prefs
	watcher *watcher.Watcher
	opener  *services.Opener

	sidebar *sidebar.Sidebar
	keys    sidebar.KeyMap
	help    help.Model
	notes   *NotesPane
	search  textinput.Model

	focus focusArea
	mode  mode

	confirm confirmDialog
	message string
	input   inputDialog
	menu    actionMenu
	options optionsDialog
	move    moveDialog
	picker  pickerDialog

	moveTargets []*services.Project

	status    string
	statusErr bool
	width     int
	height    int
}

// NewAppModel wires the sidebar to the workspace, restores the attached
// storages and loads the last selection.
func NewAppModel(opts Options) *AppModel {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	var log logrus.FieldLogger = logging.Discard()
	if opts.Logger != nil {
		log = opts.Logger
	}

	if opts.Watcher == nil {
		opts.Watcher = watcher.New(watcher.WithLogger(log))
	}
	if opts.Opener == nil {
		opts.Opener = services.NewOpener()
	}

	search := textinput.New()
	search.Placeholder = "Search notes..."
	search.CharLimit = 100
	search.Prompt = "/ "

	m := &AppModel{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     opts.Config,
		log:     log,
		repo:    opts.Repo,
		prefs:   opts.Prefs,
		watcher: opts.Watcher,
		opener:  opts.Opener,
		keys:    sidebar.DefaultKeyMap(),
		help:    help.New(),
		notes:   NewNotesPane(),
		search:  search,
	}

	sidebarOpts := sidebar.DefaultOptions()
	if cfg := opts.Config; cfg != nil {
		sidebarOpts = sidebar.Options{
			ShowAll:     cfg.ShowAll,
			ShowInbox:   cfg.ShowInbox,
			ShowTodo:    cfg.ShowTodo,
			ShowArchive: cfg.ShowArchive,
			ShowTrash:   cfg.ShowTrash,
			CopyWorkers: cfg.CopyWorkers,
		}
	}

	m.sidebar = sidebar.New(sidebar.Deps{
		Context:   ctx,
		Repo:      opts.Repo,
		Bookmarks: opts.Bookmarks,
		Prefs:     opts.Prefs,
		Host:      m,
		NoteList:  m.notes,
		Editor:    m.notes,
		Logger:    log,
		Options:   sidebarOpts,
	})

	if err := m.sidebar.RestoreBookmarks(); err != nil {
		log.WithError(err).Warn("failed to restore attached storages")
	}
	if err := m.watcher.Start(m.watchDirs()); err != nil {
		log.WithError(err).Warn("failed to start folder watcher")
	}
	m.sidebar.Load()

	switch {
	case opts.Search:
		m.startSearch(opts.Query)
	case opts.StartInNotes:
		m.FocusTable()
	}
	return m
}

func (m *AppModel) startSearch(query string) {
	for i, item := range m.sidebar.Items() {
		if item.Type == sidebar.TypeAll {
			m.sidebar.Select(i)
			break
		}
	}
	m.FocusSearch()
	m.search.SetValue(query)
	m.notes.Filter(query)
}

func (m *AppModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *AppModel) waitForChange() tea.Cmd {
	ctx, w := m.ctx, m.watcher
	return func() tea.Msg {
		select {
		case <-w.Changed():
			return FSChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *AppModel) watchDirs() []string {
	var dirs []string
	for _, p := range m.repo.Projects() {
		dirs = append(dirs, p.URL)
	}
	return append(dirs, m.repo.TrashDir())
}

// rescan registers folders created outside the app and drops vanished ones.
func (m *AppModel) rescan() {
	for _, p := range m.repo.Projects() {
		if info, err := os.Stat(p.URL); err != nil || !info.IsDir() {
			m.log.WithField("project", p.URL).Info("folder disappeared")
			m.repo.RemoveBy(p)
		}
	}
	for _, root := range m.repo.Roots() {
		for _, p := range m.repo.Add(root) {
			m.repo.LoadLabel(p)
		}
	}
}

func (m *AppModel) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.watcher.Stop()
	return m, tea.Quit
}

// Host

// UpdateTable reloads the note list for the current selection, then runs completion.
func (m *AppModel) UpdateTable(completion func()) {
	var notes []*services.Note
	if item := m.sidebar.SelectedItem(); item != nil {
		var err error
		notes, err = m.repo.NotesFor(item.Scope(), m.sidebar.SelectedProjects())
		if err != nil {
			m.log.WithError(err).Warn("failed to list notes")
			m.setStatus("", err)
		}
	}

	m.notes.SetNotes(notes)
	if completion != nil {
		completion()
	}
}

// FocusTable moves keyboard focus to the note list.
func (m *AppModel) FocusTable() {
	m.focus = focusNotes
	m.search.Blur()
}

// CleanSearchAndEditArea clears the search field and the preview.
func (m *AppModel) CleanSearchAndEditArea() {
	m.ClearSearch()
	m.notes.Clear()
}

// ClearSearch empties the search field and the note filter.
func (m *AppModel) ClearSearch() {
	m.search.SetValue("")
	m.notes.Filter("")
}

// FocusSearch moves keyboard focus to the search field.
func (m *AppModel) FocusSearch() {
	m.focus = focusSearch
	m.search.Focus()
}

// RestartWatcher watches the current set of folders.
func (m *AppModel) RestartWatcher() {
	if err := m.watcher.Restart(m.watchDirs()); err != nil && !errors.Is(err, watcher.ErrNotStarted) {
		m.log.WithError(err).Warn("failed to restart folder watcher")
	}
}

// LoadMoveMenu rebuilds the list of folders notes can be moved to.
func (m *AppModel) LoadMoveMenu() {
	m.moveTargets = m.moveTargets[:0]
	for _, p := range m.repo.Projects() {
		if !p.Settings.Hidden {
			m.moveTargets = append(m.moveTargets, p)
		}
	}
	sort.Slice(m.moveTargets, func(i, j int) bool {
		return strings.ToLower(m.moveTargets[i].URL) < strings.ToLower(m.moveTargets[j].URL)
	})
}

func (m *AppModel) setStatus(text string, err error) {
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return
	}
	m.status = text
	m.statusErr = false
}

func (m *AppModel) showError(err error) {
	m.log.WithError(err).Warn("operation failed")
	m.message = err.Error()
	m.mode = modeMessage
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if m.mode == modePicker {
			m.picker.model.Height = max(m.height-10, 5)
		}
		return m, nil

	case FSChangedMsg:
		m.rescan()
		m.sidebar.Reload()
		m.UpdateTable(nil)
		return m, m.waitForChange()

	case sidebar.NotesTrashedMsg, sidebar.FilesCopiedMsg:
		return m, m.sidebar.Update(msg)

	case sidebar.StatusMsg:
		m.setStatus(msg.Text, msg.Err)
		return m, nil

	case backupDoneMsg:
		if msg.err != nil {
			m.showError(fmt.Errorf("backup failed: %w", msg.err))
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Backed up %d file(s) to %s", msg.files, msg.path), nil)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)
	}

	if m.mode == modePicker {
		var cmd tea.Cmd
		m.picker.model, cmd = m.picker.model.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *AppModel) layout() {
	sidebarWidth := m.sidebarWidth()
	m.notes.SetSize(max(m.width-sidebarWidth-8, 20), max(m.height-8, 6))
	m.search.Width = max(m.width-sidebarWidth-12, 10)
	m.help.Width = m.width
}

func (m *AppModel) sidebarWidth() int {
	if m.width <= 0 {
		return 28
	}
	return min(max(m.width/3, 24), 40)
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirm:
		return m, m.updateConfirm(msg)
	case modeMessage:
		switch msg.String() {
		case "enter", "esc", "q", " ":
			m.mode = modeNormal
			m.message = ""
		}
		return m, nil
	case modeInput:
		return m, m.updateInput(msg)
	case modeMenu:
		return m, m.updateMenu(msg)
	case modeOptions:
		return m, m.updateOptions(msg)
	case modeMove:
		return m, m.updateMove(msg)
	case modePicker:
		return m, m.updatePicker(msg)
	}

	switch m.focus {
	case focusSearch:
		return m, m.updateSearch(msg)
	case focusNotes:
		return m.updateNotes(msg)
	default:
		return m.updateSidebar(msg)
	}
}

func (m *AppModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.ClearSearch()
		m.FocusTable()
		return nil
	case "enter", "down":
		m.FocusTable()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.notes.Filter(m.search.Value())
	return cmd
}

func (m *AppModel) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()

	case "enter", "right", "l":
		if m.notes.Len() > 0 {
			m.FocusTable()
		}
		return m, nil

	case ".":
		m.openMenu()
		return m, nil

	case "a":
		return m, m.runAction(sidebar.ActionAttachStorage)

	case "i":
		if item := m.sidebar.SelectedItem(); item != nil && item.Project != nil {
			return m, m.openPicker(pickImport)
		}
		return m, nil

	case "b":
		return m, m.runAction(sidebar.ActionBackupStorage)

	case "v":
		return m, m.runAction(sidebar.ActionViewOptions)

	case "A":
		m.sidebar.SelectArchive()
		return m, nil

	case "y":
		m.copyPath(m.selectedFolderPath())
		return m, nil

	case "shift+down":
		if rows := m.sidebar.SelectedRows(); len(rows) > 0 {
			m.sidebar.ExtendSelection(rows[len(rows)-1] + 1)
		}
		return m, nil

	case "shift+up":
		if rows := m.sidebar.SelectedRows(); len(rows) > 0 {
			m.sidebar.ExtendSelection(rows[len(rows)-1] - 1)
		}
		return m, nil
	}

	switch m.sidebar.HandleKey(m.keys, msg) {
	case sidebar.ShortcutNewFolder:
		return m, m.runAction(sidebar.ActionNewFolder)
	case sidebar.ShortcutReveal:
		return m, m.runAction(sidebar.ActionShowInFinder)
	case sidebar.ShortcutRename:
		return m, m.runAction(sidebar.ActionRename)
	case sidebar.ShortcutDelete:
		return m, m.runAction(sidebar.ActionDelete)
	}
	return m, nil
}

func (m *AppModel) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()

	case "esc", "left", "h":
		m.focus = focusSidebar
		return m, nil

	case "up", "k":
		m.notes.MoveCursor(-1)
		m.showPreview()
		return m, nil

	case "down", "j":
		m.notes.MoveCursor(1)
		m.showPreview()
		return m, nil

	case "enter", "right", "l":
		m.showPreview()
		return m, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		return m, m.notes.UpdatePreview(msg)

	case "/", "tab":
		m.FocusSearch()
		return m, textinput.Blink

	case "x", " ":
		m.notes.ToggleMark()
		m.notes.MoveCursor(1)
		return m, nil

	case "m":
		m.openMove()
		return m, nil

	case "d":
		return m, m.trashNotes()

	case "p":
		if note := m.notes.Selected(); note != nil {
			if err := m.opener.Preview(note); err != nil {
				m.showError(err)
			}
		}
		return m, nil

	case "g":
		if note := m.notes.Selected(); note != nil && note.Project != nil {
			m.sidebar.RevealProject(note.Project)
		}
		return m, nil

	case "n":
		m.openInput(inputNewNote, "New note", "", nil)
		return m, textinput.Blink

	case "y":
		if note := m.notes.Selected(); note != nil {
			m.copyPath(note.Path)
		}
		return m, nil
	}
	return m, nil
}

func (m *AppModel) showPreview() {
	if err := m.notes.ShowPreview(); err != nil {
		m.setStatus("", err)
		return
	}
	if path := m.notes.PreviewPath(); path != "" && m.prefs != nil {
		if err := m.prefs.SetLastNote(path); err != nil {
			m.log.WithError(err).Debug("failed to persist last note")
		}
	}
}

func (m *AppModel) selectedFolderPath() string {
	item := m.sidebar.SelectedItem()
	switch {
	case item == nil:
		return ""
	case item.Type == sidebar.TypeTrash:
		return m.repo.TrashDir()
	case item.Project != nil:
		return item.Project.URL
	}
	return ""
}

func (m *AppModel) copyPath(path string) {
	if path == "" {
		return
	}
	if err := copyToClipboard(path); err != nil {
		m.setStatus("", err)
		return
	}
	m.setStatus("Copied "+path, nil)
}

// runAction performs a sidebar action if it is allowed on the selected row.
func (m *AppModel) runAction(a sidebar.Action) tea.Cmd {
	item := m.sidebar.SelectedItem()
	if st := sidebar.Authorize(item)[a]; !st.Enabled || st.Hidden {
		return nil
	}

	switch a {
	case sidebar.ActionAttachStorage:
		return m.openPicker(pickAttach)

	case sidebar.ActionBackupStorage:
		return m.backup()

	case sidebar.ActionShowInFinder:
		if err := m.opener.Reveal(m.selectedFolderPath()); err != nil {
			m.showError(err)
		}
		return nil

	case sidebar.ActionRename:
		p, err := m.sidebar.BeginRename()
		if err != nil {
			return nil
		}
		m.openInput(inputRename, "Rename folder", p.DisplayName(), p)
		return textinput.Blink

	case sidebar.ActionDelete:
		req, err := m.sidebar.RequestDelete()
		if err != nil {
			return nil
		}
		if req.Detach {
			if err := m.sidebar.Detach(req.Project); err != nil {
				m.showError(err)
				return nil
			}
			m.setStatus("Detached "+req.Project.DisplayName(), nil)
			return nil
		}
		m.openConfirm(req.Prompt, func() error {
			if err := m.sidebar.ConfirmDelete(req.Project); err != nil {
				return err
			}
			m.setStatus("Moved "+req.Project.DisplayName()+" to trash", nil)
			return nil
		})
		return nil

	case sidebar.ActionViewOptions:
		m.openOptions(item.Project)
		return nil

	case sidebar.ActionNewFolder:
		m.openInput(inputNewFolder, "New folder in "+item.Project.DisplayName(), "", item.Project)
		return textinput.Blink
	}
	return nil
}

func (m *AppModel) backup() tea.Cmd {
	projects := m.sidebar.SidebarProjects()
	if len(projects) == 0 {
		return nil
	}
	root := projects[0].Root()
	ctx, repo := m.ctx, m.repo

	m.setStatus("Backing up "+root.DisplayName()+"...", nil)
	return func() tea.Msg {
		path, err := services.DefaultBackupPath(root)
		if err != nil {
			return backupDoneMsg{err: err}
		}
		files, err := repo.Backup(ctx, root, path)
		return backupDoneMsg{path: path, files: files, err: err}
	}
}

// trashNotes drops the marked notes onto the Trash row.
func (m *AppModel) trashNotes() tea.Cmd {
	if item := m.sidebar.SelectedItem(); item != nil && item.Type == sidebar.TypeTrash {
		m.setStatus("Already in trash", nil)
		return nil
	}

	row := -1
	for i, item := range m.sidebar.Items() {
		if item.Type == sidebar.TypeTrash {
			row = i
		}
	}
	if row < 0 {
		m.setStatus("Trash is hidden", nil)
		return nil
	}

	cmd, err := m.sidebar.AcceptDrop(row, sidebar.Payload{Rows: m.notes.MarkedRows()})
	if err != nil {
		if !errors.Is(err, sidebar.ErrInvalidTarget) {
			m.showError(err)
		}
		return nil
	}
	return cmd
}

func (m *AppModel) View() string {
	title := titleStyle.Render("📝 notedeck")

	sidebarPane := paneStyle
	notesPane := paneStyle
	switch m.focus {
	case focusSidebar:
		sidebarPane = focusedPaneStyle
	default:
		notesPane = focusedPaneStyle
	}

	bodyHeight := max(m.height-6, 8)
	left := sidebarPane.
		Width(m.sidebarWidth()).
		Height(bodyHeight).
		Render(m.sidebarView())

	var right string
	if m.mode == modeNormal {
		content := m.notes.View(m.focus == focusNotes)
		if m.focus == focusSearch || m.notes.Query() != "" {
			content = searchBarStyle.Render(m.search.View()) + "\n" + content
		}
		right = notesPane.
			Width(max(m.width-m.sidebarWidth()-6, 20)).
			Height(bodyHeight).
			Render(content)
	} else {
		right = m.dialogView()
	}

	s := title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n"

	switch {
	case m.status == "":
	case m.statusErr:
		s += errorStyle.Render("✗ "+m.status) + "\n"
	default:
		s += successStyle.Render("✓ ") + statusStyle.Render(m.status) + "\n"
	}

	s += m.helpView()
	return s
}

func (m *AppModel) helpView() string {
	switch {
	case m.mode != modeNormal:
		return ""
	case m.focus == focusSearch:
		return helpStyle.Render("type to filter • enter: done • esc: clear")
	case m.focus == focusNotes:
		return helpStyle.Render("↑/k ↓/j: move • enter: preview • x: mark • m: move to • d: trash • p: open preview • g: go to folder • n: new • /: search • y: copy path • esc: sidebar • q: quit")
	default:
		return m.help.View(m.keys) + "\n" +
			helpStyle.Render(". menu • a: attach • i: import • b: backup • v: view options • A: archive • y: copy path • q: quit")
	}
}

func (m *AppModel) sidebarView() string {
	var s strings.Builder

	extended := make(map[int]bool)
	for _, row := range m.sidebar.SelectedRows() {
		extended[row] = true
	}
	cursor := m.sidebar.Cursor()
	renaming := m.sidebar.Renaming()

	for i, item := range m.sidebar.Items() {
		if item.Type == sidebar.TypeLabel {
			if i > 0 {
				s.WriteString("\n")
			}
			s.WriteString(sectionLabelStyle.Render(strings.ToUpper(item.Name)) + "\n")
			continue
		}

		name := item.Name
		if renaming != nil && item.Type == sidebar.TypeCategory && item.Project.Equal(renaming) {
			name += " ✎"
		}
		line := strings.Repeat("  ", item.Depth) + itemIcon(item) + " " + name

		switch {
		case !item.IsSelectable():
			s.WriteString(disabledStyle.Render("  "+line) + "\n")
		case i == cursor:
			s.WriteString(selectedStyle.Render("▶ "+line) + "\n")
		case extended[i]:
			s.WriteString(extendedStyle.Render("+ "+line) + "\n")
		default:
			s.WriteString("  " + line + "\n")
		}
	}
	return s.String()
}

func itemIcon(item sidebar.Item) string {
	switch item.Type {
	case sidebar.TypeAll:
		return "📝"
	case sidebar.TypeInbox:
		return "📥"
	case sidebar.TypeTodo:
		return "☑"
	case sidebar.TypeArchive:
		return "🗃"
	case sidebar.TypeTrash:
		return "🗑"
	}
	if item.Project != nil && item.Project.IsRoot {
		return "💾"
	}
	return "📁"
}
