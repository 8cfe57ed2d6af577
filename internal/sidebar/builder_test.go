package sidebar

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/redjax/notedeck/internal/prefs"
	"github.com/redjax/notedeck/internal/services"
)

func TestBuildOrder(t *testing.T) {
	f := newFixture(t)
	def := f.repo.DefaultProject()

	require.NoError(t, os.MkdirAll(filepath.Join(def.URL, "beta", "inner"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(def.URL, "Alpha"), 0755))
	f.repo.Add(def)

	other := filepath.Join(f.base, "other")
	require.NoError(t, os.Mkdir(other, 0755))
	f.repo.Add(services.NewRootProject(other))

	items := Build(f.repo, DefaultOptions())

	var got []string
	for _, item := range items {
		got = append(got, fmt.Sprintf("%s:%s:%d", item.Type, item.Name, item.Depth))
	}
	assert.Equal(t, []string{
		"label:Library:0",
		"all:Notes:0",
		"inbox:Inbox:0",
		"todo:Todo:0",
		"archive:Archive:0",
		"trash:Trash:0",
		"label:Folders:0",
		"category:storage:0",
		"category:Alpha:1",
		"category:beta:1",
		"category:inner:2",
		"category:other:0",
	}, got)

	assert.Equal(t, -1, items[7].ParentIndex)
	assert.Equal(t, 7, items[8].ParentIndex)
	assert.Equal(t, 9, items[10].ParentIndex)
	assert.Equal(t, -1, items[11].ParentIndex)

	assert.Nil(t, items[1].Project)
	assert.True(t, items[2].Project.Equal(def))
	assert.True(t, items[4].Project.IsArchive)
	assert.Nil(t, items[5].Project)
}

func TestBuildRespectsOptionsAndHidden(t *testing.T) {
	f := newFixture(t)
	def := f.repo.DefaultProject()

	writeFile(t, filepath.Join(def.URL, "secret", services.SettingsFileName), "hidden: true\n")
	require.NoError(t, os.MkdirAll(filepath.Join(def.URL, "secret", "child"), 0755))
	for _, p := range f.repo.Add(def) {
		f.repo.LoadLabel(p)
	}

	opts := DefaultOptions()
	opts.ShowTodo = false
	opts.ShowInbox = false

	var types []ItemType
	for _, item := range Build(f.repo, opts) {
		types = append(types, item.Type)
	}
	assert.Equal(t, []ItemType{TypeLabel, TypeAll, TypeArchive, TypeTrash, TypeLabel, TypeCategory}, types)
}

func TestBuildWithoutRepository(t *testing.T) {
	items := Build(nil, DefaultOptions())

	var types []ItemType
	for _, item := range items {
		types = append(types, item.Type)
		assert.Nil(t, item.Project)
	}
	assert.Equal(t, []ItemType{TypeLabel, TypeAll, TypeTodo, TypeTrash, TypeLabel}, types)
	assert.False(t, items[0].IsSelectable())
	assert.True(t, items[1].IsSelectable())
}

func TestItemOfRemovedProjectIsNotSelectable(t *testing.T) {
	f := newFixture(t)
	def := f.repo.DefaultProject()
	require.NoError(t, os.Mkdir(filepath.Join(def.URL, "gone"), 0755))
	f.repo.Add(def)

	items := Build(f.repo, DefaultOptions())
	row := -1
	for i, item := range items {
		if item.Name == "gone" {
			row = i
		}
	}
	require.GreaterOrEqual(t, row, 0)
	assert.True(t, items[row].IsSelectable())

	f.repo.RemoveBy(items[row].Project)
	assert.False(t, items[row].IsSelectable())
}

// Every sequence of attach, new folder, delete and detach leaves exactly one
// Category per live project outside the archive, one row per configured
// pseudo-folder, two labels and no row for a removed project.
func TestBuildTracksLiveProjects(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base, err := os.MkdirTemp("", "notedeck-build-*")
		if err != nil {
			rt.Fatal(err)
		}
		defer os.RemoveAll(base)

		repo, err := services.NewRepository(services.RepositoryOptions{
			DefaultDir: filepath.Join(base, "storage"),
			TrashDir:   filepath.Join(base, "trash"),
		})
		if err != nil {
			rt.Fatal(err)
		}

		s := New(Deps{
			Repo:      repo,
			Bookmarks: &fakeBookmarks{},
			Prefs:     &fakePrefs{last: prefs.Selection{Row: -1}},
			Host:      &fakeHost{},
			NoteList:  &fakeNotes{},
			Editor:    &fakeEditor{},
			Options:   DefaultOptions(),
		})
		s.Load()

		steps := rapid.IntRange(1, 10).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			live := repo.Projects()
			archive := repo.ArchiveProject()

			var parents, deletable, detachable []*services.Project
			for _, p := range live {
				if p.Equal(archive) || p.IsDescendantOf(archive) {
					continue
				}
				parents = append(parents, p)
				if p.IsDefault {
					continue
				}
				if p.IsRoot {
					detachable = append(detachable, p)
				} else {
					deletable = append(deletable, p)
				}
			}

			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				dir := filepath.Join(base, fmt.Sprintf("root%d", i))
				if err := os.Mkdir(dir, 0755); err != nil {
					rt.Fatal(err)
				}
				if err := s.AddRoot(dir); err != nil {
					rt.Fatalf("attach %s: %v", dir, err)
				}
			case 1:
				parent := rapid.SampledFrom(parents).Draw(rt, "parent")
				if err := s.AddChild(parent, fmt.Sprintf("c%d", i)); err != nil {
					rt.Fatalf("new folder under %s: %v", parent.URL, err)
				}
			case 2:
				if len(deletable) == 0 {
					continue
				}
				p := rapid.SampledFrom(deletable).Draw(rt, "delete")
				if err := s.ConfirmDelete(p); err != nil {
					rt.Fatalf("delete %s: %v", p.URL, err)
				}
			case 3:
				if len(detachable) == 0 {
					continue
				}
				p := rapid.SampledFrom(detachable).Draw(rt, "detach")
				if err := s.Detach(p); err != nil {
					rt.Fatalf("detach %s: %v", p.URL, err)
				}
			}

			checkTree(rt, repo, s.Items())
		}
	})
}

func checkTree(rt *rapid.T, repo *services.Repository, items []Item) {
	archive := repo.ArchiveProject()

	want := map[string]bool{}
	for _, p := range repo.Projects() {
		if p.Equal(archive) || p.IsDescendantOf(archive) {
			continue
		}
		want[p.URL] = true
	}

	got := map[string]bool{}
	labels, pseudo := 0, 0
	for _, item := range items {
		if item.Project != nil && !repo.ProjectExist(item.Project.URL) {
			rt.Fatalf("row %q bound to removed project %s", item.Name, item.Project.URL)
		}
		switch {
		case item.Type == TypeLabel:
			labels++
			if item.Project != nil {
				rt.Fatalf("label %q carries a project", item.Name)
			}
		case item.Type.IsPseudo():
			pseudo++
		case item.Type == TypeCategory:
			if got[item.Project.URL] {
				rt.Fatalf("duplicate row for %s", item.Project.URL)
			}
			got[item.Project.URL] = true
		}
	}

	if labels != 2 {
		rt.Fatalf("expected 2 labels, got %d", labels)
	}
	if pseudo != 5 {
		rt.Fatalf("expected 5 pseudo-folders, got %d", pseudo)
	}
	if len(got) != len(want) {
		rt.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for url := range want {
		if !got[url] {
			rt.Fatalf("missing row for %s", url)
		}
	}
}
