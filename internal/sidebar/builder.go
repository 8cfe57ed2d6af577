package sidebar

import "github.com/redjax/notedeck/internal/services"

const (
	LabelLibrary = "Library"
	LabelFolders = "Folders"
)

// Options selects the pseudo-folders shown and tunes background work.
type Options struct {
	ShowAll     bool
	ShowInbox   bool
	ShowTodo    bool
	ShowArchive bool
	ShowTrash   bool

	// CopyWorkers bounds the parallel file copies of a drop.
	CopyWorkers int
}

// DefaultOptions shows every pseudo-folder.
func DefaultOptions() Options {
	return Options{
		ShowAll:     true,
		ShowInbox:   true,
		ShowTodo:    true,
		ShowArchive: true,
		ShowTrash:   true,
		CopyWorkers: 4,
	}
}

// Tree is the part of the repository the builder reads.
type Tree interface {
	Roots() []*services.Project
	Children(p *services.Project) []*services.Project
	DefaultProject() *services.Project
	ArchiveProject() *services.Project
	ProjectExist(url string) bool
}

// Build returns the ordered rows for the repository's current project set:
// the Library label, the pseudo-folders, the Folders label, then every root
// followed by its descendants depth-first. It never fails; a nil tree yields
// the labels and the pseudo-folders that need no folder.
func Build(tree Tree, opts Options) []Item {
	var (
		exists  func(string) bool
		def     *services.Project
		archive *services.Project
	)
	if tree != nil {
		exists = tree.ProjectExist
		def = tree.DefaultProject()
		archive = tree.ArchiveProject()
	}

	items := []Item{{Type: TypeLabel, Name: LabelLibrary, ParentIndex: -1}}

	pseudo := func(t ItemType, name string, p *services.Project) {
		items = append(items, Item{Type: t, Name: name, Project: p, ParentIndex: -1, exists: exists})
	}
	if opts.ShowAll {
		pseudo(TypeAll, "Notes", nil)
	}
	if opts.ShowInbox && def != nil {
		pseudo(TypeInbox, "Inbox", def)
	}
	if opts.ShowTodo {
		pseudo(TypeTodo, "Todo", nil)
	}
	if opts.ShowArchive && archive != nil {
		pseudo(TypeArchive, "Archive", archive)
	}
	if opts.ShowTrash {
		pseudo(TypeTrash, "Trash", nil)
	}

	items = append(items, Item{Type: TypeLabel, Name: LabelFolders, ParentIndex: -1})

	if tree == nil {
		return items
	}

	var walk func(p *services.Project, parentIndex, depth int)
	walk = func(p *services.Project, parentIndex, depth int) {
		if p.Settings.Hidden || p.Equal(archive) {
			return
		}
		row := len(items)
		items = append(items, Item{
			Type:        TypeCategory,
			Name:        p.DisplayName(),
			Project:     p,
			Depth:       depth,
			ParentIndex: parentIndex,
			exists:      exists,
		})
		for _, child := range tree.Children(p) {
			walk(child, row, depth+1)
		}
	}

	for _, root := range tree.Roots() {
		walk(root, -1, 0)
	}

	return items
}
