package sidebar

import "github.com/redjax/notedeck/internal/services"

// ItemType tags a sidebar row.
type ItemType int

const (
	TypeAll ItemType = iota
	TypeCategory
	TypeLabel
	TypeTrash
	TypeArchive
	TypeTodo
	TypeInbox
)

func (t ItemType) String() string {
	switch t {
	case TypeAll:
		return "all"
	case TypeCategory:
		return "category"
	case TypeLabel:
		return "label"
	case TypeTrash:
		return "trash"
	case TypeArchive:
		return "archive"
	case TypeTodo:
		return "todo"
	case TypeInbox:
		return "inbox"
	default:
		return "unknown"
	}
}

// IsPseudo reports whether the type is a virtual aggregating folder.
func (t ItemType) IsPseudo() bool {
	switch t {
	case TypeAll, TypeTrash, TypeArchive, TypeTodo, TypeInbox:
		return true
	}
	return false
}

// Item is one row of the sidebar. Items are rebuilt from scratch after every
// structural change and must not be kept across a rebuild.
type Item struct {
	Type    ItemType
	Name    string
	Project *services.Project

	// Depth is the indentation level of a Category row.
	Depth int
	// ParentIndex is the row of the containing Category, or -1.
	ParentIndex int

	exists func(url string) bool
}

// IsSelectable is false for Label rows and for rows whose folder is no longer registered.
func (i *Item) IsSelectable() bool {
	if i == nil || i.Type == TypeLabel {
		return false
	}
	if i.Project != nil && i.exists != nil && !i.exists(i.Project.URL) {
		return false
	}
	return true
}

// Scope maps the row to the note collection it shows.
func (i *Item) Scope() services.Scope {
	switch i.Type {
	case TypeAll:
		return services.ScopeAll
	case TypeTrash:
		return services.ScopeTrash
	case TypeArchive:
		return services.ScopeArchive
	case TypeTodo:
		return services.ScopeTodo
	case TypeInbox:
		return services.ScopeInbox
	default:
		return services.ScopeProjects
	}
}

// triple identifies a row across rebuilds.
type triple struct {
	Type    string
	Project string
	Name    string
}

func (i *Item) triple() triple {
	t := triple{Type: i.Type.String(), Name: i.Name}
	if i.Project != nil {
		t.Project = i.Project.URL
	}
	return t
}
