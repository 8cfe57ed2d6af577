package sidebar

// Action is a contextual sidebar operation.
type Action int

const (
	ActionAttachStorage Action = iota
	ActionBackupStorage
	ActionShowInFinder
	ActionRename
	ActionDelete
	ActionViewOptions
	ActionNewFolder
)

// Actions lists every action in menu order.
var Actions = []Action{
	ActionAttachStorage,
	ActionBackupStorage,
	ActionShowInFinder,
	ActionRename,
	ActionDelete,
	ActionViewOptions,
	ActionNewFolder,
}

const (
	labelDeleteFolder  = "Delete folder"
	labelDetachStorage = "Detach storage"
)

func (a Action) String() string {
	switch a {
	case ActionAttachStorage:
		return "Attach storage"
	case ActionBackupStorage:
		return "Back up storage"
	case ActionShowInFinder:
		return "Show in file manager"
	case ActionRename:
		return "Rename folder"
	case ActionDelete:
		return labelDeleteFolder
	case ActionViewOptions:
		return "View options"
	case ActionNewFolder:
		return "New folder"
	default:
		return "unknown"
	}
}

// ActionState is the computed state of one action for the selected row.
type ActionState struct {
	Enabled bool
	Hidden  bool
	Label   string
}

// Authorize computes every action's state for item. A nil or stale item
// counts as nothing selected, which leaves only Attach storage enabled.
func Authorize(item *Item) map[Action]ActionState {
	states := make(map[Action]ActionState, len(Actions))
	for _, a := range Actions {
		states[a] = ActionState{Label: a.String()}
	}

	set := func(a Action, enabled bool) {
		st := states[a]
		st.Enabled = enabled
		states[a] = st
	}

	set(ActionAttachStorage, true)

	if item == nil || !item.IsSelectable() {
		return states
	}

	set(ActionBackupStorage, true)

	p := item.Project
	isTrash := item.Type == TypeTrash

	set(ActionShowInFinder, p != nil || isTrash)

	if isTrash {
		return states
	}

	if p != nil {
		rename := states[ActionRename]
		rename.Hidden = p.IsRoot
		rename.Enabled = !p.IsRoot && !p.IsDefault && !p.IsArchive
		states[ActionRename] = rename

		del := states[ActionDelete]
		if p.IsRoot {
			del.Label = labelDetachStorage
		}
		del.Enabled = !p.IsDefault && !p.IsArchive
		states[ActionDelete] = del
	}

	set(ActionViewOptions, p != nil)
	set(ActionNewFolder, p != nil && !p.IsArchive)

	return states
}

// Visible returns the actions a menu should show: enabled and not hidden.
func Visible(states map[Action]ActionState) []Action {
	var out []Action
	for _, a := range Actions {
		if st := states[a]; st.Enabled && !st.Hidden {
			out = append(out, a)
		}
	}
	return out
}
