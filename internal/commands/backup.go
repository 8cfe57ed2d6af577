package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/services"
	"github.com/redjax/notedeck/internal/utils"
)

// NewBackupCmd creates the backup command
func NewBackupCmd(getEnv func() *Env) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "backup [storage]",
		Short: "Back up a storage to a ZIP archive",
		Long: `Write every file of a storage to a ZIP archive. Without an argument the
default storage is backed up. Any folder path selects the storage it belongs to.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var target string
			if len(args) > 0 {
				target = args[0]
			}
			withWorkspace(getEnv, func(w *Workspace) error {
				return runBackup(cmd.Context(), w, os.Stdout, target, outputPath)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the ZIP file")

	return cmd
}

func runBackup(ctx context.Context, w *Workspace, out io.Writer, target, outputPath string) error {
	if _, err := w.Sidebar(ctx); err != nil {
		return err
	}

	p, err := w.Resolve(target)
	if err != nil {
		return err
	}
	root := p.Root()

	if outputPath == "" {
		if outputPath, err = services.DefaultBackupPath(root); err != nil {
			return err
		}
	} else if outputPath, err = utils.ExpandPath(outputPath); err != nil {
		return err
	}

	spin := utils.NewSpinnerService()
	spin.Start(fmt.Sprintf("Backing up %s...", root.DisplayName()))

	count, err := w.Repo.Backup(ctx, root, outputPath)
	if err != nil {
		spin.Error("Backup failed")
		return err
	}

	spin.Success(fmt.Sprintf("Backed up %d file(s)", count))
	fmt.Fprintf(out, "✓ Successfully exported %d file(s) to: %s\n", count, outputPath)
	return nil
}
