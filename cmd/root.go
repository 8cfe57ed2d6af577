package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redjax/notedeck/internal/commands"
	"github.com/redjax/notedeck/internal/config"
	"github.com/redjax/notedeck/internal/logging"
	"github.com/redjax/notedeck/internal/version"
)

var (
	cfgFile string
	debug   bool
	env     *commands.Env
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:     `nd`,
	Short:   `Notedeck is a terminal workspace for Markdown notes kept in plain folders.`,
	Long:    `Notedeck shows your storages and their folders in a sidebar next to the notes they contain. Run without a subcommand to open the workspace.`,
	Version: version.GetShortVersion(),
	// Subcommands print their own errors.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initEnv(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, launch the workspace TUI
		if err := commands.RunTUI(cmd.Context(), env, commands.TUIOptions{}); err != nil {
			fmt.Fprintf(os.Stderr, "Error running workspace: %v\n", err)
			os.Exit(1)
		}
	},
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config-file", "c", "", "config file (supports .yml, .json, .toml, .env)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("storage", "", "Path of the default storage")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for app data (storage, trash, logs)")

	// Add subcommands - they get the environment when executed
	getEnv := func() *commands.Env { return env }
	rootCmd.AddCommand(commands.NewStorageCmd(getEnv))
	rootCmd.AddCommand(commands.NewFolderCmd(getEnv))
	rootCmd.AddCommand(commands.NewDropCmd(getEnv))
	rootCmd.AddCommand(commands.NewTreeCmd(getEnv))
	rootCmd.AddCommand(commands.NewNotesCmd(getEnv))
	rootCmd.AddCommand(commands.NewSearchCmd(getEnv))
	rootCmd.AddCommand(commands.NewBackupCmd(getEnv))
	rootCmd.AddCommand(commands.NewRestoreCmd(getEnv))
	rootCmd.AddCommand(commands.NewSelfCmd())
}

// initEnv loads the config and opens the log file.
func initEnv(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	logFile = closer

	logger.WithFields(logrus.Fields{
		"version": version.GetShortVersion(),
		"config":  cfg.ConfigFile,
		"storage": cfg.StorageDir,
	}).Debug("starting")

	env = &commands.Env{Config: cfg, Logger: logger}
	return nil
}
