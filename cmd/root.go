// Package cmd implements the ctxarchive CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxarchive/ctxarchive/internal/app"
	"github.com/ctxarchive/ctxarchive/internal/config"
	"github.com/ctxarchive/ctxarchive/internal/dependency"
)

const version = "0.1.0"
const logo = "📦"

// newRootCmd builds the command tree. Flag state lives in the returned tree,
// so every call starts fresh.
func newRootCmd() *cobra.Command {
	var showLogs bool

	root := &cobra.Command{
		Use:   "ctxarchive",
		Short: logo + " ctxarchive — session context monitor and archiver",
		Long: logo + " ctxarchive — estimates how full the assistant's context window is\n" +
			"and archives the active session's decisions, lessons and tasks.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogging(cmd, showLogs)
		},
	}
	root.PersistentFlags().BoolVar(&showLogs, "logs", false, "Show runtime logs")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newArchiveCmd())
	root.AddCommand(newAutoCmd())
	root.AddCommand(newSummaryCmd())
	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newService wires a Service for the current working directory that reports
// to the command's output.
func newService(cmd *cobra.Command) (*app.Service, error) {
	c, err := dependency.New(config.DefaultConfig(""), cmd.OutOrStdout())
	if err != nil {
		return nil, fmt.Errorf("wire services: %w", err)
	}
	slog.Debug("services ready", "run", c.RunID())
	return c.Service(), nil
}
