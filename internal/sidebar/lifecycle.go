package sidebar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redjax/notedeck/internal/services"
)

var (
	// ErrNotEligible is returned when an action is not allowed on the selected row.
	ErrNotEligible = errors.New("action not allowed on this item")
	// ErrAlreadyRegistered is returned when attaching a storage that is already attached.
	ErrAlreadyRegistered = errors.New("storage already attached")
	// ErrContainsStorage is returned when attaching a directory that holds an attached storage.
	ErrContainsStorage = errors.New("directory contains an attached storage")
	// ErrInvalidTarget is returned for drops the target does not accept.
	ErrInvalidTarget = errors.New("invalid drop target")
)

// DeleteRequest describes what deleting the selected folder will do.
type DeleteRequest struct {
	Project      *services.Project
	Detach       bool
	NeedsConfirm bool
	Prompt       string
}

// RestoreBookmarks registers every storage root with a persisted grant.
// Roots whose directory disappeared are skipped.
func (s *Sidebar) RestoreBookmarks() error {
	if err := s.bookmarks.Load(); err != nil {
		return err
	}
	for _, url := range s.bookmarks.URLs() {
		if info, err := os.Stat(url); err != nil || !info.IsDir() {
			s.log.WithField("project", url).Warn("attached storage is missing, skipping")
			continue
		}
		for _, p := range s.repo.Add(services.NewRootProject(url)) {
			s.repo.LoadLabel(p)
		}
	}
	return nil
}

// AddRoot attaches a directory as a storage root.
func (s *Sidebar) AddRoot(path string) error {
	path = services.CanonicalPath(path)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if s.repo.ProjectExist(path) {
		return ErrAlreadyRegistered
	}
	for _, root := range s.repo.Roots() {
		if root.IsDescendantOf(&services.Project{URL: path}) {
			return fmt.Errorf("%s: %w", root.URL, ErrContainsStorage)
		}
	}

	if err := s.bookmarks.Load(); err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}
	s.bookmarks.Store(path)
	if err := s.bookmarks.Save(); err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	for _, p := range s.repo.Add(services.NewRootProject(path)) {
		s.repo.LoadLabel(p)
	}
	s.log.WithField("project", path).Info("attached storage")

	s.Reload()
	return nil
}

// AddChild creates a folder named name inside project. An empty name does nothing.
func (s *Sidebar) AddChild(project *services.Project, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if !services.ValidName(name) {
		return services.ErrInvalidName
	}
	if project == nil || project.IsArchive || !s.repo.ProjectExist(project.URL) {
		return ErrNotEligible
	}

	url := filepath.Join(project.URL, name)
	parent := s.repo.GetProjectBy(filepath.Dir(url))
	if parent == nil {
		parent = project
	}

	child := services.NewProject(url, parent)
	if err := child.Create(); err != nil {
		return err
	}

	for _, p := range s.repo.Add(child) {
		s.repo.LoadLabel(p)
	}
	s.log.WithField("project", child.URL).Info("created folder")

	s.Reload()
	return nil
}

// BeginRename starts editing the selected folder's name.
func (s *Sidebar) BeginRename() (*services.Project, error) {
	item := s.SelectedItem()
	if item == nil || item.Type != TypeCategory || !Authorize(item)[ActionRename].Enabled {
		return nil, ErrNotEligible
	}
	s.renaming = item.Project
	return item.Project, nil
}

// Renaming returns the folder being renamed, or nil.
func (s *Sidebar) Renaming() *services.Project {
	return s.renaming
}

// CancelRename stops editing without renaming.
func (s *Sidebar) CancelRename() {
	s.renaming = nil
}

// CommitRename renames the folder being edited. Empty text does nothing.
func (s *Sidebar) CommitRename(name string) error {
	p := s.renaming
	s.renaming = nil

	name = strings.TrimSpace(name)
	if p == nil || name == "" || name == p.Label {
		return nil
	}
	if err := s.repo.Rename(p, name); err != nil {
		return err
	}

	s.Reload()
	return nil
}

// RequestDelete describes the delete or detach of the selected folder.
func (s *Sidebar) RequestDelete() (DeleteRequest, error) {
	item := s.SelectedItem()
	if item == nil || item.Type != TypeCategory || !Authorize(item)[ActionDelete].Enabled {
		return DeleteRequest{}, ErrNotEligible
	}

	p := item.Project
	if p.IsRoot {
		return DeleteRequest{Project: p, Detach: true}, nil
	}
	return DeleteRequest{
		Project:      p,
		NeedsConfirm: true,
		Prompt:       fmt.Sprintf("Are you sure you want to remove folder %q and all files inside? This action cannot be undone.", p.DisplayName()),
	}, nil
}

func deletable(p *services.Project) bool {
	return p != nil && !p.IsDefault && !p.IsArchive
}

// ConfirmDelete moves a confirmed non-root folder to the trash and removes it.
func (s *Sidebar) ConfirmDelete(p *services.Project) error {
	if !deletable(p) || p.IsRoot || !s.repo.ProjectExist(p.URL) {
		return ErrNotEligible
	}

	if _, err := s.repo.MoveToTrash(p.URL); err != nil {
		return err
	}
	s.removeProject(p)
	return nil
}

// Detach revokes the grant of a storage root and removes it. Files stay on disk.
func (s *Sidebar) Detach(p *services.Project) error {
	if !deletable(p) || !p.IsRoot || !s.repo.ProjectExist(p.URL) {
		return ErrNotEligible
	}

	if err := s.bookmarks.RemoveBy(p.URL); err != nil {
		return err
	}
	s.log.WithField("project", p.URL).Info("detached storage")
	s.removeProject(p)
	return nil
}

func (s *Sidebar) removeProject(p *services.Project) {
	s.repo.RemoveBy(p)
	s.host.RestartWatcher()
	s.host.CleanSearchAndEditArea()
	s.Reload()
}
