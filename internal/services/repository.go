package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrProjectNotFound is returned when an operation names an unregistered folder.
	ErrProjectNotFound = errors.New("project not registered")
	// ErrInvalidName is returned for folder names that are empty or contain separators.
	ErrInvalidName = errors.New("invalid folder name")
)

// RepositoryOptions configures a Repository.
type RepositoryOptions struct {
	DefaultDir  string
	ArchiveName string
	TrashDir    string
	Extensions  []string
	Bundles     []string
	Logger      logrus.FieldLogger
}

// Repository owns the registered storage roots and their folder trees.
type Repository struct {
	mu       sync.RWMutex
	projects []*Project

	defaultDir string
	archiveDir string
	trashDir   string
	extensions []string
	bundles    []string
	log        logrus.FieldLogger
}

// NewRepository creates the default storage, its archive and the trash directory,
// then registers the default storage as the first root.
func NewRepository(opts RepositoryOptions) (*Repository, error) {
	if opts.TrashDir == "" {
		return nil, errors.New("trash directory is required")
	}
	if opts.ArchiveName == "" {
		opts.ArchiveName = "Archive"
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".md", ".markdown", ".txt"}
	}
	if len(opts.Bundles) == 0 {
		opts.Bundles = []string{".textbundle"}
	}
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		opts.Logger = logger
	}

	r := &Repository{
		trashDir:   CanonicalPath(opts.TrashDir),
		extensions: opts.Extensions,
		bundles:    opts.Bundles,
		log:        opts.Logger,
	}

	if opts.DefaultDir != "" {
		r.defaultDir = CanonicalPath(opts.DefaultDir)
		r.archiveDir = filepath.Join(r.defaultDir, opts.ArchiveName)

		for _, dir := range []string{r.defaultDir, r.archiveDir} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
	}

	if err := os.MkdirAll(r.trashDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trash directory: %w", err)
	}

	if r.defaultDir != "" {
		root := NewRootProject(r.defaultDir)
		root.IsDefault = true
		for _, p := range r.Add(root) {
			r.LoadLabel(p)
		}
	}

	return r, nil
}

// Add registers p and every non-hidden folder below it. It returns the
// projects that were not registered before the call.
func (r *Repository) Add(p *Project) []*Project {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []*Project
	if existing := r.lookup(p.URL); existing != nil {
		p = existing
	} else {
		r.mark(p)
		r.projects = append(r.projects, p)
		added = append(added, p)
	}

	added = append(added, r.scan(p)...)
	return added
}

func (r *Repository) scan(parent *Project) []*Project {
	var added []*Project

	entries, err := os.ReadDir(parent.URL)
	if err != nil {
		r.log.WithError(err).WithField("project", parent.URL).Warn("failed to scan folder")
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() || r.skipDir(entry.Name()) {
			continue
		}

		url := filepath.Join(parent.URL, entry.Name())
		if url == r.trashDir {
			continue
		}

		child := r.lookup(url)
		if child == nil {
			child = NewProject(url, parent)
			r.mark(child)
			r.projects = append(r.projects, child)
			added = append(added, child)
		}
		added = append(added, r.scan(child)...)
	}

	return added
}

func (r *Repository) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || r.IsBundle(name)
}

func (r *Repository) mark(p *Project) {
	p.URL = CanonicalPath(p.URL)
	if r.defaultDir != "" {
		p.IsDefault = p.IsDefault || p.URL == r.defaultDir
		p.IsArchive = p.URL == r.archiveDir
	}
	if p.Parent == nil {
		p.IsRoot = true
	}
}

func (r *Repository) lookup(url string) *Project {
	url = CanonicalPath(url)
	for _, p := range r.projects {
		if p.URL == url {
			return p
		}
	}
	return nil
}

// RemoveBy unregisters p together with all of its descendants. Storage roots
// nested below p, and their folders, stay registered.
func (r *Repository) RemoveBy(p *Project) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.projects[:0]
	for _, existing := range r.projects {
		if owns(p, existing) {
			continue
		}
		kept = append(kept, existing)
	}
	for i := len(kept); i < len(r.projects); i++ {
		r.projects[i] = nil
	}
	r.projects = kept
}

// ProjectExist reports whether a folder with this path is registered.
func (r *Repository) ProjectExist(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(url) != nil
}

// GetProjectBy returns the registered project for url, or nil.
func (r *Repository) GetProjectBy(url string) *Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(url)
}

// GetRootProject returns the first registered storage root.
func (r *Repository) GetRootProject() *Project {
	roots := r.Roots()
	if len(roots) == 0 {
		return nil
	}
	return roots[0]
}

// DefaultProject returns the default storage root.
func (r *Repository) DefaultProject() *Project {
	if r.defaultDir == "" {
		return nil
	}
	return r.GetProjectBy(r.defaultDir)
}

// ArchiveProject returns the archive folder of the default storage.
func (r *Repository) ArchiveProject() *Project {
	if r.archiveDir == "" {
		return nil
	}
	return r.GetProjectBy(r.archiveDir)
}

// TrashDir returns the directory trashed notes and folders are moved to.
func (r *Repository) TrashDir() string {
	return r.trashDir
}

// Projects returns a snapshot of every registered project in registration order.
func (r *Repository) Projects() []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// owns reports whether existing is p or a folder of p that does not belong to
// another root nested inside p.
func owns(p, existing *Project) bool {
	if existing.Equal(p) {
		return true
	}
	if !existing.IsDescendantOf(p) {
		return false
	}
	root := existing.Root()
	return root.Equal(p) || !root.IsDescendantOf(p)
}

// Roots returns the storage roots in registration order.
func (r *Repository) Roots() []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var roots []*Project
	for _, p := range r.projects {
		if p.IsRoot {
			roots = append(roots, p)
		}
	}
	return roots
}

// Children returns the direct children of p sorted by label.
func (r *Repository) Children(p *Project) []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var children []*Project
	for _, existing := range r.projects {
		if existing.Parent != nil && !existing.IsRoot && existing.Parent.Equal(p) {
			children = append(children, existing)
		}
	}

	sort.SliceStable(children, func(i, j int) bool {
		return strings.ToLower(children[i].DisplayName()) < strings.ToLower(children[j].DisplayName())
	})
	return children
}

// LoadLabel applies the folder's view settings, including its display label.
func (r *Repository) LoadLabel(p *Project) {
	settings, err := LoadSettings(p.URL)
	if err != nil {
		r.log.WithError(err).WithField("project", p.URL).Warn("failed to load folder settings")
	}
	p.Settings = settings
}

// SaveSettings persists new view settings for p.
func (r *Repository) SaveSettings(p *Project, settings ProjectSettings) error {
	if err := SaveSettings(p.URL, settings); err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", p.URL, err)
	}
	p.Settings = settings
	return nil
}

// ValidName reports whether name can be used as a single folder name.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// Rename renames the folder on disk and re-keys it and its descendants.
func (r *Repository) Rename(p *Project, name string) error {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return ErrInvalidName
	}
	if !r.ProjectExist(p.URL) {
		return ErrProjectNotFound
	}

	oldURL := p.URL
	newURL := filepath.Join(filepath.Dir(oldURL), name)
	if newURL == oldURL {
		return nil
	}
	if _, err := os.Stat(newURL); err == nil {
		return fmt.Errorf("%s: %w", newURL, fs.ErrExist)
	}

	if err := os.Rename(oldURL, newURL); err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.projects {
		if existing.URL == oldURL {
			existing.URL = newURL
			existing.Label = name
			continue
		}
		if rel, err := filepath.Rel(oldURL, existing.URL); err == nil && !strings.HasPrefix(rel, "..") {
			existing.URL = filepath.Join(newURL, rel)
		}
	}

	r.log.WithFields(logrus.Fields{"from": oldURL, "to": newURL}).Info("renamed folder")
	return nil
}

// IsBundle reports whether name carries one of the bundle suffixes.
func (r *Repository) IsBundle(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range r.bundles {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// IsNoteFile reports whether name carries one of the note extensions.
func (r *Repository) IsNoteFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range r.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// DirEntry is one file discovered by ReadDirectory.
type DirEntry struct {
	Path string
	Rel  string
	Info fs.FileInfo
}

// ReadDirectory lists every non-hidden file below url. Bundles are reported as
// single entries and not descended into.
func (r *Repository) ReadDirectory(url string) ([]DirEntry, error) {
	var entries []DirEntry

	err := filepath.WalkDir(url, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == url {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		isBundle := d.IsDir() && r.IsBundle(d.Name())
		if d.IsDir() && !isBundle {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(url, path)
		if err != nil {
			return err
		}
		entries = append(entries, DirEntry{Path: path, Rel: rel, Info: info})

		if isBundle {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	return entries, nil
}
