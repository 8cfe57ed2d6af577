package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, called.Load())
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	assert.Equal(t, DefaultDebounceDuration, NewDebouncer(0).Duration())
}

func TestWatcher_RestartBeforeStart(t *testing.T) {
	w := New()
	assert.ErrorIs(t, w.Restart(nil), ErrNotStarted)
}

func TestWatcher_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()

	w := New(WithDebounceDuration(30 * time.Millisecond))
	require.NoError(t, w.Start([]string{dir}))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("x"), 0644))

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_RestartReplacesDirs(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	w := New(WithDebounceDuration(30 * time.Millisecond))
	require.NoError(t, w.Start([]string{first}))
	defer w.Stop()

	require.NoError(t, w.Restart([]string{second, filepath.Join(second, "missing")}))
	assert.Equal(t, []string{second}, w.Dirs())
}
