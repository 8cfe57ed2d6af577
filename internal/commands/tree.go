package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/sidebar"
)

// NewTreeCmd creates the tree command
func NewTreeCmd(getEnv func() *Env) *cobra.Command {
	var counts bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the sidebar",
		Long:  `Print the sidebar rows: the Library pseudo-folders followed by every storage and its folders.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runTree(cmd.Context(), w, os.Stdout, counts)
			})
		},
	}

	cmd.Flags().BoolVarP(&counts, "counts", "n", false, "Show the number of notes of every row")

	return cmd
}

func runTree(ctx context.Context, w *Workspace, out io.Writer, counts bool) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	label := color.New(color.Bold, color.Faint)
	pseudo := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	for i, item := range s.Items() {
		if item.Type == sidebar.TypeLabel {
			if i > 0 {
				fmt.Fprintln(out)
			}
			label.Fprintln(out, strings.ToUpper(item.Name))
			continue
		}

		line := strings.Repeat("  ", item.Depth+1) + item.Name
		if item.Type.IsPseudo() {
			line = pseudo.Sprint(line)
		}
		if counts {
			var projects []*services.Project
			if item.Project != nil {
				projects = []*services.Project{item.Project}
			}
			if notes, err := w.Repo.NotesFor(item.Scope(), projects); err == nil {
				line += faint.Sprintf(" (%d)", len(notes))
			}
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
