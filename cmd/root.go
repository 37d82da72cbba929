// Package cmd defines and implements the CLI commands for the subjectwatch
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdata/subjectwatch/internal/config"
	"github.com/shelfdata/subjectwatch/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjectwatch",
		Short: "Track a subject-heading taxonomy and match books against it",
		Long: `subjectwatch scrapes a subject-heading taxonomy from its source site,
tracks how the taxonomy changes between snapshots, and ranks taxonomy
entries against book metadata to suggest the best subject for a title.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults + SUBJECTWATCH_* env)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newMatchCmd())

	return cmd
}

// loadConfigAndLogger is shared by every subcommand.
func loadConfigAndLogger() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
