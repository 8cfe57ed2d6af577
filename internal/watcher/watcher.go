// Package watcher re-arms filesystem watches over every registered storage
// folder and reports debounced change notifications.
package watcher

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ErrNotStarted is returned by Restart before Start.
var ErrNotStarted = errors.New("watcher not started")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithLogger sets the logger used for watch errors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// Watcher watches a set of directories, non-recursively.
type Watcher struct {
	debounceDuration time.Duration
	log              logrus.FieldLogger

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	dirs      []string

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// New creates a stopped watcher.
func New(opts ...Option) *Watcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	w := &Watcher{
		debounceDuration: DefaultDebounceDuration,
		log:              discard,
		changeCh:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w
}

// Start begins watching dirs.
func (w *Watcher) Start(dirs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.fsWatcher = fsw
	w.dirs = nil
	w.addLocked(dirs)
	w.started = true

	go w.loop(w.ctx, fsw)
	return nil
}

// Restart replaces the watched set with dirs. Called after every structural change.
func (w *Watcher) Restart(dirs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return ErrNotStarted
	}

	for _, dir := range w.dirs {
		_ = w.fsWatcher.Remove(dir)
	}
	w.dirs = nil
	w.addLocked(dirs)
	return nil
}

func (w *Watcher) addLocked(dirs []string) {
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if err := w.fsWatcher.Add(dir); err != nil {
			w.log.WithError(err).WithField("dir", dir).Warn("failed to watch folder")
			continue
		}
		w.dirs = append(w.dirs, dir)
	}
}

// Stop stops watching. The change channel stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	w.fsWatcher.Close()
	w.fsWatcher = nil
	w.debouncer.Cancel()
	w.started = false
}

// Dirs returns the directories currently watched.
func (w *Watcher) Dirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.dirs))
	copy(out, w.dirs)
	return out
}

// Changed returns a channel that receives after a burst of changes settles.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	events := fsw.Events
	errs := fsw.Errors

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	if !started {
		return
	}

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
