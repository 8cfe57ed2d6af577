package services

import (
	"os"
	"path/filepath"
	"strings"
)

// Project is a registered storage folder backed by a real directory.
type Project struct {
	URL       string
	Label     string
	IsRoot    bool
	IsDefault bool
	IsArchive bool
	Parent    *Project
	Settings  ProjectSettings
}

// NewProject creates a nested folder owned by parent
func NewProject(url string, parent *Project) *Project {
	clean := CanonicalPath(url)
	return &Project{
		URL:      clean,
		Label:    filepath.Base(clean),
		Parent:   parent,
		Settings: DefaultProjectSettings(),
	}
}

// NewRootProject creates a top-level storage with no parent
func NewRootProject(url string) *Project {
	clean := CanonicalPath(url)
	return &Project{
		URL:      clean,
		Label:    filepath.Base(clean),
		IsRoot:   true,
		Settings: DefaultProjectSettings(),
	}
}

// CanonicalPath returns the absolute, cleaned form of a path used for project identity.
func CanonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// Equal compares projects by path, never by pointer.
func (p *Project) Equal(other *Project) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.URL == other.URL
}

// Root returns the storage root owning this project.
func (p *Project) Root() *Project {
	cur := p
	for cur.Parent != nil && !cur.IsRoot {
		cur = cur.Parent
	}
	return cur
}

// Depth is the number of folders between the project and its root.
func (p *Project) Depth() int {
	depth := 0
	for cur := p; cur.Parent != nil && !cur.IsRoot; cur = cur.Parent {
		depth++
	}
	return depth
}

// IsDescendantOf reports whether p lives strictly inside other's directory.
func (p *Project) IsDescendantOf(other *Project) bool {
	if p == nil || other == nil {
		return false
	}
	rel, err := filepath.Rel(other.URL, p.URL)
	if err != nil || rel == "." {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}

// DisplayName prefers the label stored in the project's view settings.
func (p *Project) DisplayName() string {
	if p.Settings.Label != "" {
		return p.Settings.Label
	}
	return p.Label
}

// Create makes the project directory. Missing intermediate folders are an error.
func (p *Project) Create() error {
	return os.Mkdir(p.URL, 0755)
}
