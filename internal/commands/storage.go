package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/utils"
)

// NewStorageCmd creates the storage command
func NewStorageCmd(getEnv func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storage",
		Aliases: []string{"storages"},
		Short:   "List, attach and detach note storages",
		Long: `A storage is a top-level directory of notes. The default storage lives in the
data directory; any other directory can be attached and later detached again.
Detaching never deletes files.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the default and attached storages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runStorageList(cmd.Context(), w, os.Stdout)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "attach <path>",
		Short: "Attach a directory as a storage",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runStorageAttach(cmd.Context(), w, os.Stdout, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "detach <path>",
		Short: "Detach a storage, keeping its files",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runStorageDetach(cmd.Context(), w, os.Stdout, args[0])
			})
		},
	})

	return cmd
}

// withWorkspace opens the workspace, runs fn and exits on error.
func withWorkspace(getEnv func() *Env, fn func(w *Workspace) error) {
	w, err := OpenWorkspace(getEnv())
	if err != nil {
		fail(err)
	}
	defer w.Close()

	if err := fn(w); err != nil {
		w.Log.WithError(err).Debug("command failed")
		w.Close()
		fail(err)
	}
}

func runStorageList(ctx context.Context, w *Workspace, out io.Writer) error {
	if _, err := w.Sidebar(ctx); err != nil {
		return err
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	red := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = uint(utils.MaxNameLen(utils.DetectTerminalWidth(120), 30, 20, 6))
	tbl.AddRow(bold.Sprint("NAME"), bold.Sprint("KIND"), bold.Sprint("FOLDERS"), bold.Sprint("NOTES"), bold.Sprint("PATH"))

	for _, root := range w.Repo.Roots() {
		kind := "attached"
		if root.IsDefault {
			kind = "default"
		}
		folders, notes := countStorage(w.Repo, root)
		tbl.AddRow(root.DisplayName(), kind, folders, notes, faint.Sprint(root.URL))
	}

	for _, url := range w.Bookmarks.URLs() {
		if !w.Repo.ProjectExist(url) {
			tbl.AddRow(services.NewRootProject(url).DisplayName(), red.Sprint("missing"), "-", "-", faint.Sprint(url))
		}
	}

	_, err := fmt.Fprintln(out, tbl)
	return err
}

// countStorage counts the folders below root and the notes in root and its folders.
func countStorage(repo *services.Repository, root *services.Project) (int, int) {
	folders, notes := 0, 0
	for _, p := range repo.Projects() {
		if !p.Equal(root) && !p.IsDescendantOf(root) {
			continue
		}
		if !p.Equal(root) {
			folders++
		}
		if list, err := repo.ListNotes(p); err == nil {
			notes += len(list)
		}
	}
	return folders, notes
}

func runStorageAttach(ctx context.Context, w *Workspace, out io.Writer, arg string) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	path, err := utils.ExpandPath(arg)
	if err != nil {
		return err
	}
	if err := s.AddRoot(path); err != nil {
		return fmt.Errorf("failed to attach %s: %w", path, err)
	}

	fmt.Fprintf(out, "✓ Attached storage: %s\n", services.CanonicalPath(path))
	return nil
}

func runStorageDetach(ctx context.Context, w *Workspace, out io.Writer, arg string) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	p, err := w.Resolve(arg)
	if err != nil {
		return err
	}
	if err := s.Detach(p); err != nil {
		return fmt.Errorf("failed to detach %s: %w", p.URL, err)
	}

	fmt.Fprintf(out, "✓ Detached storage: %s (files were kept)\n", p.URL)
	return nil
}
