package bookmarks

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")

	s := openTestStore(t, dbPath)
	s.Store("/data/work")
	s.Store("/data/home/")
	require.NoError(t, s.Save())
	require.NoError(t, s.Close())

	reopened := openTestStore(t, dbPath)
	require.NoError(t, reopened.Load())
	assert.ElementsMatch(t, []string{"/data/work", "/data/home"}, reopened.URLs())
	assert.True(t, reopened.Has("/data/home"))
}

func TestStoreWithoutSaveIsNotPersisted(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")

	s := openTestStore(t, dbPath)
	s.Store("/data/unsaved")
	assert.True(t, s.Has("/data/unsaved"))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, dbPath)
	require.NoError(t, reopened.Load())
	assert.Empty(t, reopened.URLs())
}

func TestRemoveByRevokesImmediately(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")

	s := openTestStore(t, dbPath)
	s.Store("/data/work")
	require.NoError(t, s.Save())
	require.NoError(t, s.RemoveBy("/data/work"))
	assert.False(t, s.Has("/data/work"))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, dbPath)
	require.NoError(t, reopened.Load())
	assert.Empty(t, reopened.URLs())
}
