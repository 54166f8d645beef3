// Package main implements the scout CLI for codebase analysis and
// change planning.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/scout/internal/config"
	"github.com/fyrsmithlabs/scout/internal/llm"
	"github.com/fyrsmithlabs/scout/internal/logging"
	"github.com/fyrsmithlabs/scout/internal/session"
	"github.com/fyrsmithlabs/scout/internal/telemetry"
)

var (
	// configPath is the config file location; empty means the default
	// path under the user's home directory.
	configPath string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Analyze a codebase and plan changes with an LLM",
	Long: `scout runs a multi-phase analysis of a codebase against a task
description and produces a reviewed change plan with exportable tickets.

Each run is a session: progress is saved after every phase, so an
interrupted or failed run can be resumed without repeating completed
work.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.scout/config.yaml)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(providersCmd)
}

// app bundles the dependencies shared by the commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *session.Store
	client *llm.Client
	tel    *telemetry.Telemetry
}

// newApp loads configuration and wires the logger, session store and
// LLM client.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	store, err := session.NewStore(cfg.Sessions.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	tel, err := telemetry.New(context.Background(), cfg.Telemetry, version)
	if err != nil {
		// Metric export is best effort; the run proceeds without it.
		logger.Warn("telemetry unavailable", zap.Error(err))
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		client: llm.NewClient(cfg.LLM, llm.WithLogger(logger)),
		tel:    tel,
	}, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tel.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = logging.Sync(a.logger)
}
