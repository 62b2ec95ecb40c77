// Package cmd holds the gardenrating command line: the rating API, the
// polling fallback and a one-shot trigger run.
package cmd

import (
	"context"
	"fmt"

	"gardenrating/infra"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the state shared by the subcommands once PersistentPreRunE has run.
type app struct {
	config    infra.Config
	logger    *zap.Logger
	container *infra.ContainerDI
	logLevel  string
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gardenrating",
		Short: "Rates school garden photos submitted through Airtable",
		Long: `gardenrating scores garden photos with colour and edge heuristics and
writes the crop guess, stage, health score and recommendations back to the
Airtable record that submitted them.

Configuration is read from the environment (and .env outside deployed
environments).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.config = infra.NewConfig()
			if a.logLevel != "" {
				a.config.LogLevel = a.logLevel
			}

			logger, err := infra.NewLogger(a.config.LogLevel, a.config.Environment)
			if err != nil {
				return err
			}
			a.logger = logger.With(zap.String("service", a.config.ServerName))
			a.container = infra.NewContainerDI(a.config, a.logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newAPICmd(a),
		newPollerCmd(a),
		newTriggerCmd(a),
	)
	return root
}

// Execute runs the root command with ctx, which is cancelled on shutdown
// signals.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("gardenrating: %w", err)
	}
	return nil
}
