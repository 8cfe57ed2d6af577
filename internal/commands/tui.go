package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/tui"
	"github.com/redjax/notedeck/internal/watcher"
)

// TUIOptions picks where the workspace opens.
type TUIOptions struct {
	StartInNotes bool
	Search       bool
	Query        string
}

// RunTUI opens the workspace and blocks until the user quits.
func RunTUI(ctx context.Context, env *Env, opts TUIOptions) error {
	w, err := OpenWorkspace(env)
	if err != nil {
		return err
	}
	defer w.Close()

	fsWatcher := watcher.New(
		watcher.WithDebounceDuration(w.Config.WatchDebounce),
		watcher.WithLogger(w.Log),
	)
	defer fsWatcher.Stop()

	app := tui.NewAppModel(tui.Options{
		Context:      ctx,
		Config:       w.Config,
		Logger:       w.Log,
		Repo:         w.Repo,
		Bookmarks:    w.Bookmarks,
		Prefs:        w.Prefs,
		Watcher:      fsWatcher,
		Opener:       services.NewOpener(),
		StartInNotes: opts.StartInNotes,
		Search:       opts.Search,
		Query:        opts.Query,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
