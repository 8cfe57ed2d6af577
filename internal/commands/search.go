package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd(getEnv func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search all notes",
		Long:  `Opens the workspace on All notes with the search field focused. Optionally provide a search query to start with.`,
		Run: func(cmd *cobra.Command, args []string) {
			query := strings.Join(args, " ")
			if err := RunTUI(cmd.Context(), getEnv(), TUIOptions{Search: true, Query: query}); err != nil {
				fmt.Fprintf(os.Stderr, "Error running search TUI: %v\n", err)
				os.Exit(1)
			}
		},
	}

	return cmd
}
