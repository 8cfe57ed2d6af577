package version

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates a 'version' subcommand that prints the package's version
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print notedeck's version",
		Long:  "Display version information including git commit and build date.",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), GetShortVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), GetVersionString())
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}

// NewInfoCommand creates an 'info' subcommand that prints detailed package information
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show detailed information about notedeck",
		Long:  "Display comprehensive information about the notedeck package including repository details.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), InfoTable(GetPackageInfo()))
		},
	}
}

// InfoTable lays the package information out as a two-column table.
func InfoTable(info PackageInfo) *uitable.Table {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Program:"), info.PackageName)
	tbl.AddRow(bold.Sprint("Owner:"), info.RepoUser)
	tbl.AddRow(bold.Sprint("Repository:"), info.RepoName)
	tbl.AddRow(bold.Sprint("Repository URL:"), info.RepoUrl)
	tbl.AddRow(bold.Sprint("Version:"), info.PackageVersion)
	tbl.AddRow(bold.Sprint("Commit:"), info.PackageCommit)
	tbl.AddRow(bold.Sprint("Build Date:"), info.PackageReleaseDate)
	if info.GoVersion != "" {
		tbl.AddRow(bold.Sprint("Go:"), info.GoVersion)
		tbl.AddRow(bold.Sprint("Platform:"), info.Platform)
	}
	tbl.RightAlign(0)

	return tbl
}
