package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/scout/internal/config"
	"github.com/fyrsmithlabs/scout/internal/pipeline"
	"github.com/fyrsmithlabs/scout/internal/session"
)

var (
	runProvider    string
	runModel       string
	runTemperature float64
	runMaxTokens   int
	runTimeout     time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <codebase-path> <task>",
	Short: "Start a new analysis session",
	Long: `Start a new analysis session for a codebase and task description.

The session runs through every analysis phase in order and saves its
state after each one. If a phase fails, the session can be picked up
later with "scout resume".

Examples:
  # Analyze with the configured default provider
  scout run ./myproject "Add rate limiting to the public API"

  # Pick a provider and model for this session
  scout run --provider openai --model gpt-4o ./myproject "Fix flaky uploads"`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider (anthropic, gemini, openai)")
	runCmd.Flags().StringVar(&runModel, "model", "", "model override for this session")
	runCmd.Flags().Float64Var(&runTemperature, "temperature", -1, "sampling temperature override")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "response token limit override")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-request timeout override")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	codebasePath, task := args[0], args[1]
	if _, err := os.Stat(codebasePath); err != nil {
		return fmt.Errorf("codebase path: %w", err)
	}

	runCfg, err := buildRunConfig(a.cfg)
	if err != nil {
		return err
	}

	if !a.client.ProviderAvailable(runCfg.Provider) {
		avail := a.client.AvailableProviders()
		if len(avail) == 0 {
			return fmt.Errorf("no API key configured for provider %q (set ANTHROPIC_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY)", runCfg.Provider)
		}
		return fmt.Errorf("no API key configured for provider %q; available: %s", runCfg.Provider, strings.Join(avail, ", "))
	}

	sess, err := a.store.Create(codebasePath, task, runCfg)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	fmt.Printf("Session: %s\n", sess.ID)

	return executeSession(a, sess)
}

// buildRunConfig resolves the session's request options from flags over
// configuration defaults.
func buildRunConfig(cfg *config.Config) (session.RunConfig, error) {
	runCfg := session.RunConfig{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}
	if runProvider != "" {
		if _, err := cfg.ProviderFor(runProvider); err != nil {
			return session.RunConfig{}, err
		}
		runCfg.Provider = runProvider
	}
	if runModel != "" {
		runCfg.Model = runModel
	}
	if runTemperature >= 0 {
		runCfg.Temperature = runTemperature
	}
	if runMaxTokens > 0 {
		runCfg.MaxTokens = runMaxTokens
	}
	if runTimeout > 0 {
		runCfg.Timeout = config.Duration(runTimeout)
	}
	return runCfg, nil
}

// executeSession drives the orchestrator over sess with progress output
// and signal handling; run and resume share it.
func executeSession(a *app, sess *session.Session) error {
	orch, err := pipeline.New(a.client, a.store, a.logger, pipeline.WithProgress(printProgress))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := orch.Run(ctx, sess)

	if len(sess.ClarifyingQuestions) > 0 {
		fmt.Println("\nClarifying questions raised during analysis:")
		for _, q := range sess.ClarifyingQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}

	switch {
	case runErr == nil:
		fmt.Printf("\n%s\n", sess.Summary)
		fmt.Printf("\nSession %s completed. Export tickets with:\n  scout export %s\n", sess.ID, sess.ID)
		return nil
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintf(os.Stderr, "\nInterrupted. Resume with:\n  scout resume %s\n", sess.ID)
		return runErr
	default:
		fmt.Fprintf(os.Stderr, "\nSession %s failed: %v\nResume with:\n  scout resume %s\n", sess.ID, runErr, sess.ID)
		return runErr
	}
}

func printProgress(p pipeline.PhaseProgress) {
	switch p.Status {
	case session.StatusRunning:
		fmt.Printf("[%d/%d] %s...\n", p.Index, p.Total, p.Phase)
	case session.StatusCompleted:
		fmt.Printf("[%d/%d] %s done\n", p.Index, p.Total, p.Phase)
	case session.StatusFailed:
		fmt.Fprintf(os.Stderr, "[%d/%d] %s failed: %s\n", p.Index, p.Total, p.Phase, p.Message)
	}
}
