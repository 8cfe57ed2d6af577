package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/otiai10/copy"
	"github.com/sirupsen/logrus"
)

// NoteFailure records a note that could not be processed.
type NoteFailure struct {
	Note *Note
	Err  error
}

// RemoveResult is the outcome of a batch removal to trash.
type RemoveResult struct {
	Removed []*Note
	Failed  []NoteFailure
}

// Err joins every per-note failure, or returns nil.
func (r RemoveResult) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.Note.Name, f.Err))
	}
	return errors.Join(errs...)
}

// uniquePath returns path, or "name 2.ext", "name 3.ext", ... when path is taken.
func uniquePath(path string) string {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 2; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s %d%s", stem, i, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// TrashItem returns a free destination inside the trash directory for url.
func (r *Repository) TrashItem(url string) (string, error) {
	if url == "" {
		return "", errors.New("empty path")
	}
	if err := os.MkdirAll(r.trashDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create trash directory: %w", err)
	}
	return uniquePath(filepath.Join(r.trashDir, filepath.Base(url))), nil
}

// MoveToTrash moves a file or directory into the trash and returns its new path.
func (r *Repository) MoveToTrash(url string) (string, error) {
	dest, err := r.TrashItem(url)
	if err != nil {
		return "", err
	}
	if err := move(url, dest); err != nil {
		return "", fmt.Errorf("failed to move %s to trash: %w", url, err)
	}

	r.log.WithFields(logrus.Fields{"from": url, "to": dest}).Info("moved to trash")
	return dest, nil
}

// move renames src to dest, falling back to copy and delete across devices.
func move(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := copy.Copy(src, dest, copy.Options{PreserveTimes: true}); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

// RemoveNotes moves every note to the trash. Failures do not stop the batch;
// cancelling ctx stops before the next note.
func (r *Repository) RemoveNotes(ctx context.Context, notes []*Note) RemoveResult {
	var result RemoveResult

	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, NoteFailure{Note: note, Err: err})
			continue
		}

		if _, err := r.MoveToTrash(note.Path); err != nil {
			r.log.WithError(err).WithField("note", note.Path).Warn("failed to remove note")
			result.Failed = append(result.Failed, NoteFailure{Note: note, Err: err})
			continue
		}
		result.Removed = append(result.Removed, note)
	}

	return result
}

// MoveNotes moves notes into p. Notes already stored in p stay where they are.
func (r *Repository) MoveNotes(notes []*Note, p *Project) error {
	if p == nil || !r.ProjectExist(p.URL) {
		return ErrProjectNotFound
	}

	var errs []error
	for _, note := range notes {
		if filepath.Dir(note.Path) == p.URL {
			continue
		}

		dest := uniquePath(filepath.Join(p.URL, filepath.Base(note.Path)))
		if err := move(note.Path, dest); err != nil {
			r.log.WithError(err).WithField("note", note.Path).Warn("failed to move note")
			errs = append(errs, fmt.Errorf("%s: %w", note.Name, err))
			continue
		}

		r.log.WithFields(logrus.Fields{"note": note.Path, "project": p.URL}).Debug("moved note")
		note.Path = dest
		note.Name = filepath.Base(dest)
		note.Project = p
	}

	return errors.Join(errs...)
}

// Copy copies a file or bundle into p under a free name and returns the new path.
func (r *Repository) Copy(p *Project, src string) (string, error) {
	dest := uniquePath(filepath.Join(p.URL, filepath.Base(src)))
	if err := copy.Copy(src, dest, copy.Options{PreserveTimes: true}); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return dest, nil
}

// CopyEntry copies one entry found by ReadDirectory below dir, keeping its relative path.
func (r *Repository) CopyEntry(dir string, entry DirEntry) (string, error) {
	dest := filepath.Join(dir, entry.Rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}
	dest = uniquePath(dest)
	if err := copy.Copy(entry.Path, dest, copy.Options{PreserveTimes: true}); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", entry.Path, err)
	}
	return dest, nil
}
