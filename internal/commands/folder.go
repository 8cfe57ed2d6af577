package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/utils"
)

// NewFolderCmd creates the folder command
func NewFolderCmd(getEnv func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folder",
		Aliases: []string{"folders", "f"},
		Short:   "Create, rename and delete folders",
		Long: `Manage the folders inside a storage. Folders are given by path, either
absolute or relative to the default storage.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new <parent> <name>",
		Short: "Create a folder inside parent",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runFolderNew(cmd.Context(), w, os.Stdout, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runFolderRename(cmd.Context(), w, os.Stdout, args[0], args[1])
			})
		},
	})

	var yes bool
	deleteCmd := &cobra.Command{
		Use:     "delete <folder>",
		Aliases: []string{"rm"},
		Short:   "Move a folder to the trash, or detach a storage",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runFolderDelete(cmd.Context(), w, os.Stdout, args[0], yes)
			})
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(deleteCmd)

	return cmd
}

func runFolderNew(ctx context.Context, w *Workspace, out io.Writer, parent, name string) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	p, err := w.Resolve(parent)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return errEmptyName
	}
	if err := s.AddChild(p, name); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	fmt.Fprintf(out, "✓ Created folder: %s\n", filepath.Join(p.URL, strings.TrimSpace(name)))
	return nil
}

func runFolderRename(ctx context.Context, w *Workspace, out io.Writer, folder, name string) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	p, err := w.Resolve(folder)
	if err != nil {
		return err
	}
	if err := selectProject(s, p); err != nil {
		return err
	}

	if strings.TrimSpace(name) == "" {
		return errEmptyName
	}

	old := p.URL
	if _, err := s.BeginRename(); err != nil {
		return fmt.Errorf("cannot rename %s: %w", old, err)
	}
	if err := s.CommitRename(name); err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}

	fmt.Fprintf(out, "✓ Renamed %s to %s\n", old, p.URL)
	return nil
}

func runFolderDelete(ctx context.Context, w *Workspace, out io.Writer, folder string, yes bool) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	p, err := w.Resolve(folder)
	if err != nil {
		return err
	}
	if err := selectProject(s, p); err != nil {
		return err
	}

	req, err := s.RequestDelete()
	if err != nil {
		return fmt.Errorf("cannot delete %s: %w", p.URL, err)
	}

	if req.Detach {
		if err := s.Detach(req.Project); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Detached storage: %s (files were kept)\n", req.Project.URL)
		return nil
	}

	ok, err := confirm(req.Prompt, yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if err := s.ConfirmDelete(req.Project); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	fmt.Fprintf(out, "✓ Moved %s to the trash\n", req.Project.URL)
	return nil
}

var errEmptyName = errors.New("folder name is empty")

// confirm asks a yes/no question. yes skips the question; without a terminal
// the answer cannot be given and an error is returned.
func confirm(question string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !utils.IsInteractive() {
		return false, errNotInteractive
	}

	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes, delete").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
