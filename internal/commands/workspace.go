package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/redjax/notedeck/internal/bookmarks"
	"github.com/redjax/notedeck/internal/config"
	"github.com/redjax/notedeck/internal/prefs"
	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/sidebar"
	"github.com/redjax/notedeck/internal/utils"
)

// Env is what the root command resolved before a subcommand runs.
type Env struct {
	Config *config.Config
	Logger *logrus.Logger
}

// Workspace bundles the stores shared by the TUI and the CLI commands.
type Workspace struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Repo      *services.Repository
	Bookmarks *bookmarks.Store
	Prefs     *prefs.Store
}

// OpenWorkspace creates the data directories and opens every store.
func OpenWorkspace(env *Env) (*Workspace, error) {
	cfg := env.Config
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	repo, err := services.NewRepository(services.RepositoryOptions{
		DefaultDir:  cfg.StorageDir,
		ArchiveName: cfg.ArchiveName,
		TrashDir:    cfg.TrashDir,
		Extensions:  cfg.Extensions,
		Bundles:     cfg.Bundles,
		Logger:      env.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	marks, err := bookmarks.Open(cfg.BookmarksDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open bookmarks: %w", err)
	}

	return &Workspace{
		Config:    cfg,
		Log:       env.Logger,
		Repo:      repo,
		Bookmarks: marks,
		Prefs:     prefs.Open(cfg.PrefsDir),
	}, nil
}

// Close releases the bookmark database.
func (w *Workspace) Close() error {
	return w.Bookmarks.Close()
}

// Sidebar returns a sidebar with no UI attached, loaded with every attached
// storage. CLI commands go through it so they follow the same folder rules
// as the TUI. Selections made through it are not persisted.
func (w *Workspace) Sidebar(ctx context.Context) (*sidebar.Sidebar, error) {
	opts := sidebar.DefaultOptions()
	opts.CopyWorkers = w.Config.CopyWorkers

	s := sidebar.New(sidebar.Deps{
		Context:   ctx,
		Repo:      w.Repo,
		Bookmarks: w.Bookmarks,
		Prefs:     &memPrefs{},
		Host:      headless{},
		NoteList:  headless{},
		Editor:    headless{},
		Logger:    w.Log,
		Options:   opts,
	})
	if err := s.RestoreBookmarks(); err != nil {
		return nil, err
	}
	s.Load()
	return s, nil
}

// Resolve finds the registered folder for arg. An empty arg is the default
// storage; relative paths are tried below the default storage first.
func (w *Workspace) Resolve(arg string) (*services.Project, error) {
	if arg == "" {
		return w.Repo.DefaultProject(), nil
	}

	var candidates []string
	if !filepath.IsAbs(arg) && !strings.HasPrefix(arg, "~") {
		if def := w.Repo.DefaultProject(); def != nil {
			candidates = append(candidates, filepath.Join(def.URL, arg))
		}
	}
	path, err := utils.ExpandPath(arg)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, path)

	for _, c := range candidates {
		if p := w.Repo.GetProjectBy(services.CanonicalPath(c)); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("folder %q is not in any storage", arg)
}

// rowOf returns the sidebar row of p, or -1.
func rowOf(s *sidebar.Sidebar, p *services.Project) int {
	for i, item := range s.Items() {
		if item.Type == sidebar.TypeCategory && item.Project.Equal(p) {
			return i
		}
	}
	return -1
}

// selectProject moves the headless sidebar onto p.
func selectProject(s *sidebar.Sidebar, p *services.Project) error {
	row := rowOf(s, p)
	if row < 0 || !s.Select(row) {
		return fmt.Errorf("folder %s is not shown in the sidebar", p.URL)
	}
	return nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

var errNotInteractive = errors.New("refusing to continue without --yes in a non-interactive session")

type headless struct{}

func (headless) UpdateTable(completion func()) {
	if completion != nil {
		completion()
	}
}
func (headless) FocusTable()                         {}
func (headless) CleanSearchAndEditArea()             {}
func (headless) ClearSearch()                        {}
func (headless) FocusSearch()                        {}
func (headless) RestartWatcher()                     {}
func (headless) LoadMoveMenu()                       {}
func (headless) Len() int                            { return 0 }
func (headless) NoteAt(int) *services.Note           { return nil }
func (headless) GetIndex(*services.Note) (int, bool) { return -1, false }
func (headless) RemoveByNotes([]*services.Note)      {}
func (headless) SelectRow(int)                       {}
func (headless) Clear()                              {}
func (headless) PreviewPath() string                 { return "" }

type memPrefs struct {
	last prefs.Selection
}

func (p *memPrefs) Last() prefs.Selection { return p.last }
func (p *memPrefs) SetLast(sel prefs.Selection) error {
	p.last = sel
	return nil
}
func (p *memPrefs) LastNote() string { return "" }
