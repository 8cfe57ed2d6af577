package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/utils"
)

var scopes = map[string]services.Scope{
	"all":     services.ScopeAll,
	"inbox":   services.ScopeInbox,
	"todo":    services.ScopeTodo,
	"archive": services.ScopeArchive,
	"trash":   services.ScopeTrash,
}

// NewNotesCmd creates the notes command
func NewNotesCmd(getEnv func() *Env) *cobra.Command {
	var (
		scope string
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "notes [folder]",
		Short: "Browse or list notes",
		Long: `Open the workspace with the note list focused. With --list, print the notes of
a folder, or of a pseudo-folder given with --scope (all, inbox, todo, archive, trash).`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var folder string
			if len(args) > 0 {
				folder = args[0]
			}

			if !list {
				if err := RunTUI(cmd.Context(), getEnv(), TUIOptions{StartInNotes: true}); err != nil {
					fmt.Fprintf(os.Stderr, "Error running notes TUI: %v\n", err)
					os.Exit(1)
				}
				return
			}

			withWorkspace(getEnv, func(w *Workspace) error {
				return runNotesList(cmd.Context(), w, os.Stdout, folder, scope)
			})
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "Print the notes instead of opening the TUI")
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "List a pseudo-folder: all, inbox, todo, archive or trash")

	return cmd
}

func runNotesList(ctx context.Context, w *Workspace, out io.Writer, folder, scope string) error {
	if _, err := w.Sidebar(ctx); err != nil {
		return err
	}

	var (
		notes []*services.Note
		err   error
	)
	if scope != "" {
		sc, ok := scopes[strings.ToLower(scope)]
		if !ok {
			return fmt.Errorf("invalid scope: %s (valid options: all, inbox, todo, archive, trash)", scope)
		}
		notes, err = w.Repo.NotesFor(sc, nil)
	} else {
		p, resolveErr := w.Resolve(folder)
		if resolveErr != nil {
			return resolveErr
		}
		notes, err = w.Repo.NotesFor(services.ScopeProjects, []*services.Project{p})
	}
	if err != nil {
		return err
	}

	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes found.")
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tag := color.New(color.FgMagenta, color.Italic)

	width := utils.DetectTerminalWidth(120)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("TITLE"), bold.Sprint("TAGS"), bold.Sprint("MODIFIED"), bold.Sprint("FILE"))
	for _, n := range notes {
		tags := ""
		if len(n.Tags) > 0 {
			tags = tag.Sprint("#" + strings.Join(n.Tags, " #"))
		}
		title := utils.Truncate(n.Title, utils.MaxNameLen(width, 30, 40, 6))
		if n.HasTodo {
			title += " ☐"
		}
		tbl.AddRow(title, tags, n.ModTime.Format("2006-01-02 15:04"), faint.Sprint(n.Name))
	}

	_, err = fmt.Fprintln(out, tbl)
	return err
}
