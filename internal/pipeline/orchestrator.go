package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/scout/internal/llm"
	"github.com/fyrsmithlabs/scout/internal/repo"
	"github.com/fyrsmithlabs/scout/internal/session"
)

// ChatClient is the slice of the LLM client the orchestrator needs.
type ChatClient interface {
	Chat(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

// PhaseProgress reports progress during a run.
type PhaseProgress struct {
	Phase   session.Phase
	Status  session.PhaseStatus
	Message string
	Index   int
	Total   int
}

// ProgressCallback receives progress updates during execution.
type ProgressCallback func(progress PhaseProgress)

// FactsCollector gathers codebase facts for prompt building.
type FactsCollector func(path string) (*repo.Facts, error)

// Orchestrator runs sessions through the fixed phase sequence.
type Orchestrator struct {
	client   ChatClient
	store    *session.Store
	logger   *zap.Logger
	facts    FactsCollector
	progress ProgressCallback
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithProgress sets the progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(o *Orchestrator) { o.progress = cb }
}

// WithFactsCollector replaces the default repo.Collect, mainly for
// tests.
func WithFactsCollector(fn FactsCollector) Option {
	return func(o *Orchestrator) { o.facts = fn }
}

// New creates an orchestrator.
func New(client ChatClient, store *session.Store, logger *zap.Logger, opts ...Option) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("chat client is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		client: client,
		store:  store,
		logger: logger,
		facts:  repo.Collect,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes every incomplete phase in order. Completed phases are
// skipped without an LLM call or state mutation. The first failure
// halts the run and leaves the session failed; earlier completed work
// stays persisted untouched. Re-invoking Run on the same session
// resumes from the first incomplete phase.
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session) error {
	logger := o.logger.With(zap.String("session_id", sess.ID))

	facts, err := o.facts(sess.CodebasePath)
	if err != nil {
		// Facts only enrich prompts; a missing or unreadable tree is
		// reported by the phase itself if it matters.
		logger.Warn("codebase facts unavailable", zap.Error(err))
		facts = nil
	}

	order := session.PhaseOrder()
	for i, phase := range order {
		rec := sess.Record(phase)
		if rec.Status == session.StatusCompleted {
			o.report(PhaseProgress{Phase: phase, Status: session.StatusCompleted, Message: "already completed, skipping", Index: i + 1, Total: len(order)})
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := o.runPhase(ctx, sess, phase, facts, i+1, len(order)); err != nil {
			return err
		}
	}

	if sess.AllPhasesCompleted() && sess.Summary == "" {
		sess.Summary = buildSummary(sess)
		sess.UpdatedAt = time.Now().UTC()
		if err := o.store.Save(sess); err != nil {
			return fmt.Errorf("persisting summary: %w", err)
		}
	}

	logger.Info("pipeline finished", zap.String("state", string(sess.State)))
	return nil
}

func (o *Orchestrator) runPhase(ctx context.Context, sess *session.Session, phase session.Phase, facts *repo.Facts, index, total int) error {
	logger := o.logger.With(
		zap.String("session_id", sess.ID),
		zap.String("phase", string(phase)),
	)
	now := time.Now().UTC()

	// A phase left failed or running by an earlier run retries.
	if err := sess.ResetPhase(phase, now); err != nil {
		return err
	}
	if err := sess.StartPhase(phase, now); err != nil {
		return err
	}
	if err := o.store.Save(sess); err != nil {
		return fmt.Errorf("persisting phase start: %w", err)
	}
	o.report(PhaseProgress{Phase: phase, Status: session.StatusRunning, Message: "running", Index: index, Total: total})
	logger.Info("phase started")

	prompt := buildPrompt(sess, phase, facts)
	temperature := sess.Config.Temperature
	output, chatErr := o.client.Chat(ctx, prompt, llm.Options{
		Provider:    sess.Config.Provider,
		Model:       sess.Config.Model,
		Temperature: &temperature,
		MaxTokens:   sess.Config.MaxTokens,
		Timeout:     sess.Config.Timeout.Duration(),
	})
	finished := time.Now().UTC()

	if chatErr != nil {
		perr := classifyPhaseError(phase, chatErr, finished)
		if err := sess.FailPhase(phase, perr, finished); err != nil {
			return err
		}
		if err := o.store.Save(sess); err != nil {
			return fmt.Errorf("persisting phase failure: %w", err)
		}
		o.report(PhaseProgress{Phase: phase, Status: session.StatusFailed, Message: perr.Message, Index: index, Total: total})
		logger.Error("phase failed", zap.String("kind", perr.Kind), zap.Error(chatErr))
		return perr
	}

	outputFile, err := o.store.WritePhaseOutput(sess, phase, output)
	if err != nil {
		perr := &session.PhaseError{
			Phase:      phase,
			Kind:       "output_write_failed",
			Message:    err.Error(),
			OccurredAt: finished,
		}
		if failErr := sess.FailPhase(phase, perr, finished); failErr != nil {
			return failErr
		}
		if saveErr := o.store.Save(sess); saveErr != nil {
			return fmt.Errorf("persisting phase failure: %w", saveErr)
		}
		return perr
	}

	if err := sess.CompletePhase(phase, outputFile, output, finished); err != nil {
		return err
	}
	if clarifyingPhases[phase] {
		sess.AddClarifyingQuestions(extractClarifyingQuestions(output), finished)
	}
	if err := o.store.Save(sess); err != nil {
		return fmt.Errorf("persisting phase completion: %w", err)
	}

	o.report(PhaseProgress{Phase: phase, Status: session.StatusCompleted, Message: "completed", Index: index, Total: total})
	logger.Info("phase completed",
		zap.String("output_file", outputFile),
		zap.Int64("duration_ms", sess.Phases[phase].DurationMS),
	)
	return nil
}

// classifyPhaseError attaches phase name and timestamp to a chat
// failure, preserving the classified kind when one is present.
func classifyPhaseError(phase session.Phase, err error, now time.Time) *session.PhaseError {
	kind := "request_failed"
	var cerr *llm.Error
	if errors.As(err, &cerr) {
		kind = string(cerr.Kind)
	}
	return &session.PhaseError{
		Phase:      phase,
		Kind:       kind,
		Message:    err.Error(),
		OccurredAt: now,
	}
}

func (o *Orchestrator) report(progress PhaseProgress) {
	if o.progress != nil {
		o.progress(progress)
	}
}
