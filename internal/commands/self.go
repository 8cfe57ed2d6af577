package commands

import (
	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/version"
)

// NewSelfCmd creates the self command
func NewSelfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self",
		Short: "Show information about this notedeck build",
		Long:  `Commands for inspecting the notedeck application itself.`,
	}

	cmd.AddCommand(version.NewVersionCommand())
	cmd.AddCommand(version.NewInfoCommand())

	return cmd
}
