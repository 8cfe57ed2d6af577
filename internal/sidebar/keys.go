package sidebar

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the sidebar chords.
type KeyMap struct {
	NewFolder   key.Binding
	Reveal      key.Binding
	Rename      key.Binding
	Delete      key.Binding
	FocusSearch key.Binding
	Up          key.Binding
	Down        key.Binding
}

// DefaultKeyMap returns the default sidebar chords.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NewFolder: key.NewBinding(
			key.WithKeys("alt+N"),
			key.WithHelp("alt+N", "new folder"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("alt+ctrl+r"),
			key.WithHelp("alt+ctrl+r", "show in file manager"),
		),
		Rename: key.NewBinding(
			key.WithKeys("alt+R"),
			key.WithHelp("alt+R", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("alt+backspace", "alt+delete"),
			key.WithHelp("alt+⌫", "delete/detach"),
		),
		FocusSearch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NewFolder, k.Rename, k.Delete, k.FocusSearch}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.FocusSearch},
		{k.NewFolder, k.Rename, k.Delete, k.Reveal},
	}
}

// Shortcut is what a key press asks the surrounding UI to do.
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutNewFolder
	ShortcutReveal
	ShortcutRename
	ShortcutDelete
	ShortcutFocusSearch
	ShortcutNavigated
)

// HandleKey maps a chord to a shortcut. Chords whose action is not allowed on
// the selected row are swallowed; unmatched keys fall through to row navigation.
func (s *Sidebar) HandleKey(km KeyMap, msg tea.KeyMsg) Shortcut {
	allowed := func(a Action) bool {
		st := Authorize(s.SelectedItem())[a]
		return st.Enabled && !st.Hidden
	}

	switch {
	case key.Matches(msg, km.NewFolder):
		if allowed(ActionNewFolder) {
			return ShortcutNewFolder
		}
		return ShortcutNone

	case key.Matches(msg, km.Reveal):
		if allowed(ActionShowInFinder) {
			return ShortcutReveal
		}
		return ShortcutNone

	case key.Matches(msg, km.Rename):
		if allowed(ActionRename) {
			return ShortcutRename
		}
		return ShortcutNone

	case key.Matches(msg, km.Delete):
		if allowed(ActionDelete) {
			return ShortcutDelete
		}
		return ShortcutNone

	case key.Matches(msg, km.FocusSearch):
		s.host.FocusSearch()
		return ShortcutFocusSearch

	case key.Matches(msg, km.Up):
		s.SelectPrev()
		return ShortcutNavigated

	case key.Matches(msg, km.Down):
		s.SelectNext()
		return ShortcutNavigated
	}

	return ShortcutNone
}
