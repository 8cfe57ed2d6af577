package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redjax/notedeck/internal/config"
	"github.com/redjax/notedeck/internal/logging"
	"github.com/redjax/notedeck/internal/sidebar"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	color.NoColor = true

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	require.NoError(t, cfg.Resolve())

	w, err := OpenWorkspace(&Env{Config: cfg, Logger: logging.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolve(t *testing.T) {
	w := newTestWorkspace(t)
	def := w.Repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "work", "a.md"), "# A\n")
	w.Repo.Add(def)

	p, err := w.Resolve("")
	require.NoError(t, err)
	assert.True(t, p.IsDefault)

	p, err = w.Resolve("work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(def.URL, "work"), p.URL)

	p, err = w.Resolve(filepath.Join(def.URL, "work"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(def.URL, "work"), p.URL)

	_, err = w.Resolve("missing")
	assert.Error(t, err)
}

func TestFolderLifecycle(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	def := w.Repo.DefaultProject()
	var out bytes.Buffer

	require.NoError(t, runFolderNew(ctx, w, &out, "", "work"))
	assert.Contains(t, out.String(), "✓ Created folder")
	assert.DirExists(t, filepath.Join(def.URL, "work"))

	out.Reset()
	require.NoError(t, runFolderRename(ctx, w, &out, "work", "projects"))
	assert.Contains(t, out.String(), filepath.Join(def.URL, "projects"))
	assert.DirExists(t, filepath.Join(def.URL, "projects"))
	assert.NoDirExists(t, filepath.Join(def.URL, "work"))

	out.Reset()
	require.NoError(t, runFolderDelete(ctx, w, &out, "projects", true))
	assert.Contains(t, out.String(), "to the trash")
	assert.NoDirExists(t, filepath.Join(def.URL, "projects"))
	assert.DirExists(t, filepath.Join(w.Config.TrashDir, "projects"))
	assert.False(t, w.Repo.ProjectExist(filepath.Join(def.URL, "projects")))
}

func TestFolderNewRejectsEmptyName(t *testing.T) {
	w := newTestWorkspace(t)

	err := runFolderNew(context.Background(), w, &bytes.Buffer{}, "", "   ")
	assert.ErrorIs(t, err, errEmptyName)
}

func TestDefaultStorageCannotBeDeleted(t *testing.T) {
	w := newTestWorkspace(t)

	err := runFolderDelete(context.Background(), w, &bytes.Buffer{}, "", true)
	assert.ErrorIs(t, err, sidebar.ErrNotEligible)
	assert.DirExists(t, w.Repo.DefaultProject().URL)
}

func TestStorageAttachListDetach(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	ext := filepath.Join(t.TempDir(), "research")
	writeFile(t, filepath.Join(ext, "a.md"), "# A\n")
	writeFile(t, filepath.Join(ext, "papers", "b.md"), "# B\n")

	var out bytes.Buffer
	require.NoError(t, runStorageAttach(ctx, w, &out, ext))
	assert.Contains(t, out.String(), "✓ Attached storage")
	assert.Equal(t, []string{ext}, w.Bookmarks.URLs())

	err := runStorageAttach(ctx, w, &bytes.Buffer{}, ext)
	assert.ErrorIs(t, err, sidebar.ErrAlreadyRegistered)

	out.Reset()
	require.NoError(t, runStorageList(ctx, w, &out))
	assert.Contains(t, out.String(), "research")
	assert.Contains(t, out.String(), "attached")
	assert.Contains(t, out.String(), "default")

	folders, notes := countStorage(w.Repo, w.Repo.GetProjectBy(ext))
	assert.Equal(t, 1, folders)
	assert.Equal(t, 2, notes)

	out.Reset()
	require.NoError(t, runStorageDetach(ctx, w, &out, ext))
	assert.Contains(t, out.String(), "files were kept")
	assert.FileExists(t, filepath.Join(ext, "a.md"))
	assert.False(t, w.Repo.ProjectExist(ext))
	assert.Empty(t, w.Bookmarks.URLs())
}

func TestStorageListReportsMissingBookmarks(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	ext := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(ext, 0755))
	require.NoError(t, runStorageAttach(ctx, w, &bytes.Buffer{}, ext))

	require.NoError(t, os.Remove(ext))
	w.Repo.RemoveBy(w.Repo.GetProjectBy(ext))

	var out bytes.Buffer
	require.NoError(t, runStorageList(ctx, w, &out))
	assert.Contains(t, out.String(), "missing")
	assert.Contains(t, out.String(), ext)
}

func TestDropCopiesFilesAndFolders(t *testing.T) {
	w := newTestWorkspace(t)
	def := w.Repo.DefaultProject()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "loose.md"), "# Loose\n")
	writeFile(t, filepath.Join(src, "recipes", "soup.md"), "# Soup\n")

	var out bytes.Buffer
	err := runDrop(context.Background(), w, &out, "", []string{
		filepath.Join(src, "loose.md"),
		filepath.Join(src, "recipes"),
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Copied into "+def.URL)
	assert.FileExists(t, filepath.Join(def.URL, "loose.md"))
	assert.FileExists(t, filepath.Join(def.URL, "recipes", "soup.md"))
	assert.True(t, w.Repo.ProjectExist(filepath.Join(def.URL, "recipes")))
	assert.FileExists(t, filepath.Join(src, "loose.md"), "drops copy")
}

func TestDropOntoArchiveIsRejected(t *testing.T) {
	w := newTestWorkspace(t)
	src := filepath.Join(t.TempDir(), "a.md")
	writeFile(t, src, "# A\n")

	err := runDrop(context.Background(), w, &bytes.Buffer{}, "Archive", []string{src})
	assert.Error(t, err)
}

func TestTreePrintsSidebarRows(t *testing.T) {
	w := newTestWorkspace(t)
	def := w.Repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "work", "a.md"), "# A\n")
	w.Repo.Add(def)

	var out bytes.Buffer
	require.NoError(t, runTree(context.Background(), w, &out, true))

	s := out.String()
	assert.Contains(t, s, "LIBRARY")
	assert.Contains(t, s, "FOLDERS")
	assert.Contains(t, s, "    work (1)")
}

func TestNotesList(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	def := w.Repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "alpha.md"), "# Alpha note\n\n- [ ] call back #calls\n")

	var out bytes.Buffer
	require.NoError(t, runNotesList(ctx, w, &out, "", ""))
	assert.Contains(t, out.String(), "Alpha note ☐")
	assert.Contains(t, out.String(), "#calls")
	assert.Contains(t, out.String(), "alpha.md")

	out.Reset()
	require.NoError(t, runNotesList(ctx, w, &out, "", "todo"))
	assert.Contains(t, out.String(), "alpha.md")

	out.Reset()
	require.NoError(t, runNotesList(ctx, w, &out, "", "trash"))
	assert.Contains(t, out.String(), "No notes found.")

	err := runNotesList(ctx, w, &bytes.Buffer{}, "", "bogus")
	assert.ErrorContains(t, err, "invalid scope")
}

func TestBackupAndRestore(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	def := w.Repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "a.md"), "# A\n")
	writeFile(t, filepath.Join(def.URL, "work", "b.md"), "# B\n")
	w.Repo.Add(def)

	zipPath := filepath.Join(t.TempDir(), "backup.zip")
	var out bytes.Buffer
	require.NoError(t, runBackup(ctx, w, &out, "work", zipPath))
	assert.Contains(t, out.String(), "✓ Successfully exported 2 file(s)")
	assert.FileExists(t, zipPath)

	require.NoError(t, runFolderNew(ctx, w, &bytes.Buffer{}, "", "restored"))

	out.Reset()
	require.NoError(t, runRestore(ctx, w, &out, zipPath, "restored"))
	assert.Contains(t, out.String(), "2 new file(s) imported")
	assert.FileExists(t, filepath.Join(def.URL, "restored", "a.md"))
	assert.FileExists(t, filepath.Join(def.URL, "restored", "work", "b.md"))
	assert.True(t, w.Repo.ProjectExist(filepath.Join(def.URL, "restored", "work")))

	err := runRestore(ctx, w, &bytes.Buffer{}, zipPath, "Archive")
	assert.ErrorContains(t, err, "archive")
}
