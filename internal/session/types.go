package session

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/scout/internal/config"
)

// Phase identifies one analysis step. The sequence below encodes a hard
// dependency chain: each phase's prompt may reference any earlier
// phase's output, so the order is fixed and never reordered at runtime.
type Phase string

const (
	PhaseDomainResearch  Phase = "domain_research"
	PhaseTechStack       Phase = "tech_stack"
	PhaseArchitecture    Phase = "architecture"
	PhaseConventions     Phase = "conventions"
	PhaseFeatureLocation Phase = "feature_location"
	PhaseImpactAnalysis  Phase = "impact_analysis"
	PhaseChangePlanning  Phase = "change_planning"
)

// PhaseOrder returns all phases in execution order.
func PhaseOrder() []Phase {
	return []Phase{
		PhaseDomainResearch,
		PhaseTechStack,
		PhaseArchitecture,
		PhaseConventions,
		PhaseFeatureLocation,
		PhaseImpactAnalysis,
		PhaseChangePlanning,
	}
}

// State is the session lifecycle state.
type State string

const (
	StateCreated   State = "created"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// PhaseStatus is the status of one phase record. Statuses only move
// pending -> running -> completed or failed.
type PhaseStatus string

const (
	StatusPending   PhaseStatus = "pending"
	StatusRunning   PhaseStatus = "running"
	StatusCompleted PhaseStatus = "completed"
	StatusFailed    PhaseStatus = "failed"
	StatusSkipped   PhaseStatus = "skipped"
)

// PhaseError is the structured failure attached to a failed phase. It
// wraps a classified provider error with the phase name and timestamp.
type PhaseError struct {
	Phase      Phase     `json:"phase"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Error implements the error interface.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %s: %s", e.Phase, e.Kind, e.Message)
}

// PhaseRecord is one phase's execution record.
type PhaseRecord struct {
	Status      PhaseStatus `json:"status"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	DurationMS  int64       `json:"duration_ms,omitempty"`
	// OutputFile is the file name within the session directory; present
	// iff Status is completed.
	OutputFile string      `json:"output_file,omitempty"`
	Error      *PhaseError `json:"error,omitempty"`
}

// RunConfig is the resolved option snapshot a session was created with.
type RunConfig struct {
	Provider    string          `json:"provider"`
	Model       string          `json:"model,omitempty"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Timeout     config.Duration `json:"timeout"`
}

// Session is one pipeline run.
type Session struct {
	ID           string `json:"id"`
	CodebasePath string `json:"codebase_path"`
	Task         string `json:"task"`
	State        State  `json:"state"`
	// SessionDir is the directory exclusively owned by this session.
	SessionDir string    `json:"session_dir"`
	Config     RunConfig `json:"config"`
	// Phases maps every phase in PhaseOrder to its record.
	Phases map[Phase]*PhaseRecord `json:"phases"`
	// Context accumulates completed phase outputs; it grows
	// monotonically as phases complete.
	Context             map[Phase]string `json:"context"`
	ClarifyingQuestions []string         `json:"clarifying_questions,omitempty"`
	Summary             string           `json:"summary,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Record returns the record for phase, creating a pending one if the
// snapshot predates the phase (forward compatibility on load).
func (s *Session) Record(phase Phase) *PhaseRecord {
	if rec, ok := s.Phases[phase]; ok {
		return rec
	}
	rec := &PhaseRecord{Status: StatusPending}
	s.Phases[phase] = rec
	return rec
}

// StartPhase transitions phase to running and stamps its start time.
func (s *Session) StartPhase(phase Phase, now time.Time) error {
	rec := s.Record(phase)
	if rec.Status != StatusPending {
		return fmt.Errorf("phase %s is %s, can only start a pending phase", phase, rec.Status)
	}
	started := now
	rec.Status = StatusRunning
	rec.StartedAt = &started
	s.State = StateRunning
	s.UpdatedAt = now
	return nil
}

// CompletePhase transitions phase to completed, records its output file
// and merges the output into the accumulated context. The session
// becomes completed once every phase is.
func (s *Session) CompletePhase(phase Phase, outputFile, output string, now time.Time) error {
	rec := s.Record(phase)
	if rec.Status != StatusRunning {
		return fmt.Errorf("phase %s is %s, can only complete a running phase", phase, rec.Status)
	}
	completed := now
	rec.Status = StatusCompleted
	rec.CompletedAt = &completed
	rec.OutputFile = outputFile
	if rec.StartedAt != nil {
		rec.DurationMS = now.Sub(*rec.StartedAt).Milliseconds()
	}
	s.Context[phase] = output
	s.UpdatedAt = now
	if s.AllPhasesCompleted() {
		s.State = StateCompleted
	}
	return nil
}

// FailPhase transitions phase to failed with the structured error and
// marks the whole session failed.
func (s *Session) FailPhase(phase Phase, perr *PhaseError, now time.Time) error {
	rec := s.Record(phase)
	if rec.Status != StatusRunning {
		return fmt.Errorf("phase %s is %s, can only fail a running phase", phase, rec.Status)
	}
	rec.Status = StatusFailed
	rec.Error = perr
	if rec.StartedAt != nil {
		rec.DurationMS = now.Sub(*rec.StartedAt).Milliseconds()
	}
	s.State = StateFailed
	s.UpdatedAt = now
	return nil
}

// ResetPhase returns a failed or interrupted (running) phase to
// pending so a resumed run can retry it. Completed phases never reset.
func (s *Session) ResetPhase(phase Phase, now time.Time) error {
	rec := s.Record(phase)
	switch rec.Status {
	case StatusFailed, StatusRunning:
		s.Phases[phase] = &PhaseRecord{Status: StatusPending}
		s.UpdatedAt = now
		return nil
	case StatusPending:
		return nil
	default:
		return fmt.Errorf("phase %s is %s and cannot be reset", phase, rec.Status)
	}
}

// AllPhasesCompleted reports whether every phase in the fixed order is
// completed.
func (s *Session) AllPhasesCompleted() bool {
	for _, phase := range PhaseOrder() {
		rec, ok := s.Phases[phase]
		if !ok || rec.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// FirstIncomplete returns the first phase in order that is not
// completed, or false when the pipeline is done.
func (s *Session) FirstIncomplete() (Phase, bool) {
	for _, phase := range PhaseOrder() {
		rec, ok := s.Phases[phase]
		if !ok || rec.Status != StatusCompleted {
			return phase, true
		}
	}
	return "", false
}

// AddClarifyingQuestions appends questions in order, dropping
// duplicates already collected.
func (s *Session) AddClarifyingQuestions(questions []string, now time.Time) {
	seen := make(map[string]bool, len(s.ClarifyingQuestions))
	for _, q := range s.ClarifyingQuestions {
		seen[q] = true
	}
	for _, q := range questions {
		if q == "" || seen[q] {
			continue
		}
		s.ClarifyingQuestions = append(s.ClarifyingQuestions, q)
		seen[q] = true
		s.UpdatedAt = now
	}
}
