package sidebar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/redjax/notedeck/internal/services"
)

// DropOperation is the outcome of validating a drop.
type DropOperation int

const (
	DropReject DropOperation = iota
	DropCopy
	DropMove
)

func (o DropOperation) String() string {
	switch o {
	case DropCopy:
		return "copy"
	case DropMove:
		return "move"
	default:
		return "reject"
	}
}

// Payload is what was dropped: rows of the note list or external paths.
// Rows are checked first.
type Payload struct {
	Rows  []int
	Paths []string
}

// ValidateDrop decides what dropping payload onto item would do.
func ValidateDrop(item *Item, payload Payload) DropOperation {
	if item == nil {
		return DropReject
	}

	switch item.Type {
	case TypeTrash:
		if len(payload.Rows) > 0 {
			return DropMove
		}
		return DropReject

	case TypeCategory, TypeLabel, TypeArchive, TypeInbox:
		if !item.IsSelectable() {
			return DropReject
		}
		if len(payload.Rows) > 0 {
			return DropMove
		}
		if len(payload.Paths) > 0 {
			return DropCopy
		}
		return DropReject

	default:
		return DropReject
	}
}

// DropFailure is one path or note that could not be copied.
type DropFailure struct {
	Path string
	Err  error
}

// DropReport summarizes a copy drop.
type DropReport struct {
	Copied   []string
	Failures []DropFailure
	Folders  []*services.Project
}

// Err joins every failure, or returns nil.
func (r DropReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}

// Summary is a one-line status text.
func (r DropReport) Summary() string {
	if len(r.Failures) == 0 {
		return fmt.Sprintf("Copied %d file(s)", len(r.Copied))
	}
	return fmt.Sprintf("Copied %d file(s), %d failed", len(r.Copied), len(r.Failures))
}

// NotesTrashedMsg carries the result of moving dropped notes to the trash.
type NotesTrashedMsg struct {
	Result services.RemoveResult
}

// FilesCopiedMsg carries the result of copying dropped paths.
type FilesCopiedMsg struct {
	Report DropReport
}

// StatusMsg is a line of feedback for the status bar.
type StatusMsg struct {
	Text string
	Err  error
}

// ValidateDrop validates a drop onto row.
func (s *Sidebar) ValidateDrop(row int, payload Payload) DropOperation {
	return ValidateDrop(s.ItemAt(row), payload)
}

// AcceptDrop executes a drop onto row. Structural changes happen before it
// returns; removals and file copies run in the returned command.
func (s *Sidebar) AcceptDrop(row int, payload Payload) (tea.Cmd, error) {
	item := s.ItemAt(row)
	if ValidateDrop(item, payload) == DropReject {
		return nil, ErrInvalidTarget
	}

	if len(payload.Rows) > 0 {
		return s.dropNotes(item, payload.Rows)
	}
	return s.dropPaths(item, payload.Paths)
}

func (s *Sidebar) dropNotes(item *Item, rows []int) (tea.Cmd, error) {
	var notes []*services.Note
	for _, row := range rows {
		if row < 0 || row >= s.notes.Len() {
			continue
		}
		if note := s.notes.NoteAt(row); note != nil {
			notes = append(notes, note)
		}
	}
	if len(notes) == 0 {
		return nil, nil
	}

	if item.Type == TypeTrash {
		if previewed := s.editor.PreviewPath(); previewed != "" {
			for _, note := range notes {
				if note.Path == previewed {
					s.editor.Clear()
					break
				}
			}
		}
		ctx, repo := s.ctx, s.repo
		return func() tea.Msg {
			return NotesTrashedMsg{Result: repo.RemoveNotes(ctx, notes)}
		}, nil
	}

	if item.Project == nil {
		return nil, ErrInvalidTarget
	}
	err := s.repo.MoveNotes(notes, item.Project)
	s.host.UpdateTable(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to move notes: %w", err)
	}
	return nil, nil
}

type copyJob struct {
	project *services.Project
	src     string

	dir   string
	entry services.DirEntry
}

func (j copyJob) source() string {
	if j.src != "" {
		return j.src
	}
	return j.entry.Path
}

func (s *Sidebar) dropPaths(item *Item, paths []string) (tea.Cmd, error) {
	target := item.Project
	if target == nil {
		return nil, ErrInvalidTarget
	}

	var (
		jobs     []copyJob
		failures []DropFailure
		folders  []*services.Project
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failures = append(failures, DropFailure{Path: path, Err: err})
			continue
		}

		if !info.IsDir() || s.repo.IsBundle(info.Name()) {
			jobs = append(jobs, copyJob{project: target, src: path})
			continue
		}

		child, err := s.createDropFolder(target, filepath.Base(filepath.Clean(path)))
		if err != nil {
			failures = append(failures, DropFailure{Path: path, Err: err})
			continue
		}
		folders = append(folders, child)

		entries, err := s.repo.ReadDirectory(path)
		if err != nil {
			failures = append(failures, DropFailure{Path: path, Err: err})
			continue
		}
		for _, entry := range entries {
			jobs = append(jobs, copyJob{dir: child.URL, entry: entry})
		}
	}

	if len(folders) > 0 {
		s.Reload()
	}
	if len(jobs) == 0 && len(failures) == 0 {
		return nil, nil
	}

	return copyCmd(s.ctx, s.repo, s.opts.CopyWorkers, jobs, failures, folders), nil
}

// createDropFolder creates and registers the folder a dropped directory is copied into.
func (s *Sidebar) createDropFolder(target *services.Project, name string) (*services.Project, error) {
	child := services.NewProject(filepath.Join(target.URL, name), target)
	if err := child.Create(); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		if info, statErr := os.Stat(child.URL); statErr != nil || !info.IsDir() {
			return nil, fmt.Errorf("%s exists and is not a folder: %w", child.URL, fs.ErrExist)
		}
	}

	for _, p := range s.repo.Add(child) {
		s.repo.LoadLabel(p)
	}
	if registered := s.repo.GetProjectBy(child.URL); registered != nil {
		return registered, nil
	}
	return child, nil
}

func copyCmd(ctx context.Context, repo Repository, workers int, jobs []copyJob, failures []DropFailure, folders []*services.Project) tea.Cmd {
	return func() tea.Msg {
		report := DropReport{
			Failures: append([]DropFailure(nil), failures...),
			Folders:  folders,
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		for _, job := range jobs {
			g.Go(func() error {
				var (
					dest string
					err  error
				)
				if err = gctx.Err(); err == nil {
					if job.src != "" {
						dest, err = repo.Copy(job.project, job.src)
					} else {
						dest, err = repo.CopyEntry(job.dir, job.entry)
					}
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failures = append(report.Failures, DropFailure{Path: job.source(), Err: err})
					return nil
				}
				report.Copied = append(report.Copied, dest)
				return nil
			})
		}
		_ = g.Wait()

		return FilesCopiedMsg{Report: report}
	}
}

// Update applies the result of a command started by the sidebar.
func (s *Sidebar) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotesTrashedMsg:
		for _, f := range msg.Result.Failed {
			s.log.WithError(f.Err).WithField("note", f.Note.Path).Warn("failed to move note to trash")
		}
		s.Reload()
		s.notes.RemoveByNotes(msg.Result.Removed)

		status := StatusMsg{Text: fmt.Sprintf("Moved %d note(s) to trash", len(msg.Result.Removed)), Err: msg.Result.Err()}
		return func() tea.Msg { return status }

	case FilesCopiedMsg:
		for _, f := range msg.Report.Failures {
			s.log.WithError(f.Err).WithField("path", f.Path).Warn("failed to copy dropped file")
		}
		for _, folder := range msg.Report.Folders {
			// Folders removed while copying stay removed.
			if !s.repo.ProjectExist(folder.URL) {
				continue
			}
			for _, p := range s.repo.Add(folder) {
				s.repo.LoadLabel(p)
			}
		}
		s.Reload()
		s.host.UpdateTable(nil)

		status := StatusMsg{Text: msg.Report.Summary(), Err: msg.Report.Err()}
		return func() tea.Msg { return status }
	}
	return nil
}
