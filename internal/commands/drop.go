package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/sidebar"
	"github.com/redjax/notedeck/internal/utils"
)

// NewDropCmd creates the drop command
func NewDropCmd(getEnv func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <folder> <path>...",
		Short: "Copy files and directories into a folder",
		Long: `Copy files into a folder the same way dropping them on the sidebar does.
A dropped directory becomes a new folder of the same name; its notes are
copied into it. Name clashes get a numbered suffix.`,
		Args: cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			withWorkspace(getEnv, func(w *Workspace) error {
				return runDrop(cmd.Context(), w, os.Stdout, args[0], args[1:])
			})
		},
	}

	return cmd
}

func runDrop(ctx context.Context, w *Workspace, out io.Writer, folder string, paths []string) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	p, err := w.Resolve(folder)
	if err != nil {
		return err
	}
	row := rowOf(s, p)
	if row < 0 {
		return fmt.Errorf("folder %s is not shown in the sidebar", p.URL)
	}

	expanded, err := utils.ExpandPaths(paths)
	if err != nil {
		return err
	}

	payload := sidebar.Payload{Paths: expanded}
	if op := s.ValidateDrop(row, payload); op != sidebar.DropCopy {
		return fmt.Errorf("cannot drop files on %s", p.DisplayName())
	}

	spin := utils.NewSpinnerService()
	spin.Start(fmt.Sprintf("Copying %d path(s) into %s...", len(expanded), p.DisplayName()))

	cmd, err := s.AcceptDrop(row, payload)
	if err != nil {
		spin.Error(err.Error())
		return err
	}
	if cmd == nil {
		spin.Success("Nothing to copy")
		return nil
	}

	status, ok := runStatus(s, cmd())
	if !ok {
		spin.Stop()
		return nil
	}
	if status.Err != nil {
		spin.Error(status.Text)
		return status.Err
	}
	spin.Success(status.Text)
	fmt.Fprintf(out, "Copied into %s\n", p.URL)
	return nil
}

// runStatus feeds a finished command's message back to the sidebar and
// returns the status it reports.
func runStatus(s *sidebar.Sidebar, msg any) (sidebar.StatusMsg, bool) {
	follow := s.Update(msg)
	if follow == nil {
		return sidebar.StatusMsg{}, false
	}
	status, ok := follow().(sidebar.StatusMsg)
	return status, ok
}
