package services

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Note represents a note file with metadata
type Note struct {
	Name    string
	Path    string
	Project *Project
	Title   string
	Tags    []string
	HasTodo bool
	ModTime time.Time
}

// Scope names the note collection shown for a sidebar row.
type Scope int

const (
	ScopeProjects Scope = iota
	ScopeAll
	ScopeInbox
	ScopeTodo
	ScopeArchive
	ScopeTrash
)

var (
	fmBlockRe  = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n?(.*)`)
	hashtagRe  = regexp.MustCompile(`(?:^|\s)#([a-zA-Z0-9_-]+)`)
	tagsLineRe = regexp.MustCompile(`(?m)^tags:[ \t]+(\S[^\n]*)$`)
	headingRe  = regexp.MustCompile(`(?m)^#\s+(\S[^\n]*)$`)
	todoRe     = regexp.MustCompile(`(?m)^\s*[-*]\s+\[ \]`)
)

// ReadNote loads a note file and extracts its title, tags and todo state
func ReadNote(path string, project *Project) (*Note, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	note := &Note{
		Name:    filepath.Base(path),
		Path:    path,
		Project: project,
		ModTime: info.ModTime(),
	}
	note.Title = strings.TrimSuffix(note.Name, filepath.Ext(note.Name))

	if info.IsDir() {
		return note, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(content)

	frontmatter, body := splitFrontMatter(text)
	note.Tags = extractTags(frontmatter, body)
	note.HasTodo = todoRe.MatchString(body)
	if m := headingRe.FindStringSubmatch(body); len(m) > 1 {
		note.Title = strings.TrimSpace(m[1])
	}

	return note, nil
}

func splitFrontMatter(text string) (string, string) {
	if fmBlock := fmBlockRe.FindStringSubmatch(text); len(fmBlock) > 2 {
		return fmBlock[1], fmBlock[2]
	}
	return "", text
}

// extractTags collects #hashtags from the body and the comma separated tags: line
// from the frontmatter, lowercased and sorted.
func extractTags(frontmatter, body string) []string {
	tags := make(map[string]bool)

	for _, match := range hashtagRe.FindAllStringSubmatch(body, -1) {
		if len(match) > 1 {
			tags[strings.ToLower(match[1])] = true
		}
	}

	if tagMatches := tagsLineRe.FindStringSubmatch(frontmatter); len(tagMatches) > 1 {
		for _, tag := range strings.Split(tagMatches[1], ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				tags[tag] = true
			}
		}
	}

	result := make([]string, 0, len(tags))
	for tag := range tags {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}

// ListNotes returns the notes stored directly inside a folder.
func (r *Repository) ListNotes(p *Project) ([]*Note, error) {
	notes, err := r.listDir(p.URL, p)
	if err != nil {
		return nil, err
	}
	SortNotes(notes, p.Settings)
	return notes, nil
}

func (r *Repository) listDir(dir string, p *Project) ([]*Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var notes []*Note
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() && !r.IsBundle(entry.Name()) {
			continue
		}
		if !entry.IsDir() && !r.IsNoteFile(entry.Name()) {
			continue
		}

		note, err := ReadNote(filepath.Join(dir, entry.Name()), p)
		if err != nil {
			r.log.WithError(err).WithField("note", entry.Name()).Debug("skipping unreadable note")
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// NotesFor returns the notes of a sidebar scope. ScopeProjects lists the given
// folders; the pseudo scopes ignore projects.
func (r *Repository) NotesFor(scope Scope, projects []*Project) ([]*Note, error) {
	var (
		notes []*Note
		err   error
	)

	switch scope {
	case ScopeTrash:
		notes, err = r.listDir(r.trashDir, nil)
		if err != nil {
			return nil, err
		}
		SortNotes(notes, DefaultProjectSettings())
		return notes, nil

	case ScopeInbox:
		if p := r.DefaultProject(); p != nil {
			return r.ListNotes(p)
		}
		return nil, nil

	case ScopeArchive:
		archive := r.ArchiveProject()
		if archive == nil {
			return nil, nil
		}
		projects = []*Project{archive}
		for _, p := range r.Projects() {
			if p.IsDescendantOf(archive) {
				projects = append(projects, p)
			}
		}

	case ScopeAll, ScopeTodo:
		archive := r.ArchiveProject()
		projects = nil
		for _, p := range r.Projects() {
			if p.Settings.Hidden || !p.Settings.ShowInAll {
				continue
			}
			if archive != nil && (p.Equal(archive) || p.IsDescendantOf(archive)) {
				continue
			}
			projects = append(projects, p)
		}
	}

	for _, p := range projects {
		list, listErr := r.listDir(p.URL, p)
		if listErr != nil {
			r.log.WithError(listErr).WithField("project", p.URL).Warn("failed to list notes")
			continue
		}
		notes = append(notes, list...)
	}

	if scope == ScopeTodo {
		todo := notes[:0]
		for _, n := range notes {
			if n.HasTodo {
				todo = append(todo, n)
			}
		}
		notes = todo
	}

	settings := DefaultProjectSettings()
	if len(projects) == 1 {
		settings = projects[0].Settings
	}
	SortNotes(notes, settings)
	return notes, err
}

// SortNotes orders notes by the folder's sort settings.
func SortNotes(notes []*Note, settings ProjectSettings) {
	less := func(a, b *Note) bool {
		switch settings.SortBy {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return a.ModTime.Before(b.ModTime)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if settings.SortDesc {
			return less(notes[j], notes[i])
		}
		return less(notes[i], notes[j])
	})
}

// CreateNote creates an empty note in the folder and returns it
func (r *Repository) CreateNote(p *Project, name string) (*Note, error) {
	if !r.IsNoteFile(name) {
		name = name + ".md"
	}
	path := uniquePath(filepath.Join(p.URL, name))

	template := "---\ntags:\n---\n\n# " + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "\n\n"
	if err := os.WriteFile(path, []byte(template), 0644); err != nil {
		return nil, err
	}
	return ReadNote(path, p)
}
