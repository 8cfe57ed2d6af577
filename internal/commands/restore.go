package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/utils"
)

// NewRestoreCmd creates the restore command
func NewRestoreCmd(getEnv func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "restore <archive> [folder]",
		Aliases: []string{"import"},
		Short:   "Restore a backup archive into a folder",
		Long: `Extract a ZIP archive created by the backup command into a folder, the
default storage when none is given. Merges with existing files, keeping the
newer version of any duplicate.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			var target string
			if len(args) > 1 {
				target = args[1]
			}
			withWorkspace(getEnv, func(w *Workspace) error {
				return runRestore(cmd.Context(), w, os.Stdout, args[0], target)
			})
		},
	}

	return cmd
}

func runRestore(ctx context.Context, w *Workspace, out io.Writer, archive, target string) error {
	s, err := w.Sidebar(ctx)
	if err != nil {
		return err
	}

	p, err := w.Resolve(target)
	if err != nil {
		return err
	}
	if p.IsArchive || p.IsDescendantOf(w.Repo.ArchiveProject()) {
		return fmt.Errorf("cannot restore into the archive")
	}

	zipPath, err := utils.ExpandPath(archive)
	if err != nil {
		return err
	}

	spin := utils.NewSpinnerService()
	spin.Start("Restoring " + zipPath + "...")

	report, err := w.Repo.Restore(ctx, zipPath, p)
	if err != nil {
		spin.Error("Restore failed")
		return err
	}
	spin.Stop()

	// Register folders that came out of the archive.
	for _, added := range w.Repo.Add(p) {
		w.Repo.LoadLabel(added)
	}
	s.Reload()

	fmt.Fprintf(out, "✓ Restore complete:\n")
	fmt.Fprintf(out, "  - %d new file(s) imported\n", report.Imported)
	fmt.Fprintf(out, "  - %d file(s) updated (newer version)\n", report.Updated)
	fmt.Fprintf(out, "  - %d file(s) skipped (existing version is newer)\n", report.Skipped)
	return nil
}
