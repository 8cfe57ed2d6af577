package services

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNoteExtractsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.md")
	writeFile(t, path, `---
tags: Work, planning
---

# Weekly sync

Talked about #roadmap and #work.

- [x] done
- [ ] follow up
`)

	note, err := ReadNote(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Weekly sync", note.Title)
	assert.Equal(t, []string{"planning", "roadmap", "work"}, note.Tags)
	assert.True(t, note.HasTodo)
}

func TestReadNoteWithoutHeading(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.txt")
	writeFile(t, path, "just text\n- [x] finished\n")

	note, err := ReadNote(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "scratch", note.Title)
	assert.Empty(t, note.Tags)
	assert.False(t, note.HasTodo)
}

func TestNotesForScopes(t *testing.T) {
	repo, _ := newTestRepo(t)
	def := repo.DefaultProject()
	archive := repo.ArchiveProject()

	writeFile(t, filepath.Join(def.URL, "inbox.md"), "# inbox\n- [ ] task")
	writeFile(t, filepath.Join(def.URL, "work", "plan.md"), "# plan")
	writeFile(t, filepath.Join(def.URL, "work", "image.png"), "png")
	writeFile(t, filepath.Join(archive.URL, "old.md"), "# old\n- [ ] stale")
	repo.Add(def)

	all, err := repo.NotesFor(ScopeAll, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inbox.md", "plan.md"}, noteNames(all))

	inbox, err := repo.NotesFor(ScopeInbox, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox.md"}, noteNames(inbox))

	todo, err := repo.NotesFor(ScopeTodo, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox.md"}, noteNames(todo))

	archived, err := repo.NotesFor(ScopeArchive, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.md"}, noteNames(archived))

	work := repo.GetProjectBy(filepath.Join(def.URL, "work"))
	require.NotNil(t, work)
	inWork, err := repo.NotesFor(ScopeProjects, []*Project{work})
	require.NoError(t, err)
	assert.Equal(t, []string{"plan.md"}, noteNames(inWork))
	assert.True(t, inWork[0].Project.Equal(work))
}

func noteNames(notes []*Note) []string {
	names := make([]string, 0, len(notes))
	for _, n := range notes {
		names = append(names, n.Name)
	}
	return names
}

func TestMoveNotesSkipsNotesAlreadyInTarget(t *testing.T) {
	repo, _ := newTestRepo(t)
	def := repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "a.md"), "# a")
	writeFile(t, filepath.Join(def.URL, "work", "b.md"), "# b")
	repo.Add(def)
	work := repo.GetProjectBy(filepath.Join(def.URL, "work"))

	notes, err := repo.NotesFor(ScopeAll, nil)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	require.NoError(t, repo.MoveNotes(notes, work))

	inWork, err := repo.ListNotes(work)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "b.md"}, noteNames(inWork))
	assert.NoFileExists(t, filepath.Join(def.URL, "a.md"))
	for _, n := range notes {
		assert.True(t, n.Project.Equal(work))
	}
}

func TestMoveNotesUnknownProject(t *testing.T) {
	repo, base := newTestRepo(t)
	err := repo.MoveNotes(nil, NewProject(filepath.Join(base, "nowhere"), nil))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRemoveNotesMovesToTrash(t *testing.T) {
	repo, _ := newTestRepo(t)
	def := repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "gone.md"), "# gone")

	notes, err := repo.ListNotes(def)
	require.NoError(t, err)
	missing := &Note{Name: "missing.md", Path: filepath.Join(def.URL, "missing.md")}

	result := repo.RemoveNotes(context.Background(), append(notes, missing))
	assert.Len(t, result.Removed, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].Note)
	assert.Error(t, result.Err())

	assert.NoFileExists(t, filepath.Join(def.URL, "gone.md"))
	assert.FileExists(t, filepath.Join(repo.TrashDir(), "gone.md"))

	trashed, err := repo.NotesFor(ScopeTrash, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone.md"}, noteNames(trashed))
}

func TestRemoveNotesCancelled(t *testing.T) {
	repo, _ := newTestRepo(t)
	def := repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "keep.md"), "# keep")
	notes, err := repo.ListNotes(def)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := repo.RemoveNotes(ctx, notes)
	assert.Empty(t, result.Removed)
	assert.Len(t, result.Failed, 1)
	assert.FileExists(t, filepath.Join(def.URL, "keep.md"))
}

func TestTrashItemIsUnique(t *testing.T) {
	repo, _ := newTestRepo(t)
	writeFile(t, filepath.Join(repo.TrashDir(), "note.md"), "x")

	dest, err := repo.TrashItem("/somewhere/note.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo.TrashDir(), "note 2.md"), dest)
}

func TestCopyKeepsOriginal(t *testing.T) {
	repo, base := newTestRepo(t)
	def := repo.DefaultProject()
	src := filepath.Join(base, "outside.md")
	writeFile(t, src, "# outside")
	writeFile(t, filepath.Join(def.URL, "outside.md"), "# existing")

	dest, err := repo.Copy(def, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(def.URL, "outside 2.md"), dest)
	assert.FileExists(t, src)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "# outside", string(data))
}

func TestBackupWritesStorage(t *testing.T) {
	repo, base := newTestRepo(t)
	def := repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "a.md"), "a")
	writeFile(t, filepath.Join(def.URL, "work", "b.md"), "b")

	out := filepath.Join(base, "backup")
	count, err := repo.Backup(context.Background(), def, out)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	zr, err := zip.OpenReader(out + ".zip")
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"storage/a.md", "storage/work/b.md"}, names)
}

func TestRestoreKeepsNewerFiles(t *testing.T) {
	repo, base := newTestRepo(t)
	def := repo.DefaultProject()
	writeFile(t, filepath.Join(def.URL, "a.md"), "a")
	writeFile(t, filepath.Join(def.URL, "work", "b.md"), "b")

	out := filepath.Join(base, "backup.zip")
	_, err := repo.Backup(context.Background(), def, out)
	require.NoError(t, err)

	target := NewRootProject(filepath.Join(base, "restored"))
	require.NoError(t, os.MkdirAll(target.URL, 0755))

	report, err := repo.Restore(context.Background(), out, target)
	require.NoError(t, err)
	assert.Equal(t, RestoreReport{Imported: 2}, report)
	assert.FileExists(t, filepath.Join(target.URL, "a.md"))
	assert.FileExists(t, filepath.Join(target.URL, "work", "b.md"))

	report, err = repo.Restore(context.Background(), out, target)
	require.NoError(t, err)
	assert.Equal(t, RestoreReport{Skipped: 2}, report)

	old := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	stale := filepath.Join(target.URL, "a.md")
	writeFile(t, stale, "stale")
	require.NoError(t, os.Chtimes(stale, old, old))

	report, err = repo.Restore(context.Background(), out, target)
	require.NoError(t, err)
	assert.Equal(t, RestoreReport{Updated: 1, Skipped: 1}, report)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}
