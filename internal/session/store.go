package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const snapshotFile = "session.json"

var (
	// ErrNotFound indicates no session exists for the given ID.
	ErrNotFound = errors.New("session not found")
)

// Store persists sessions under a root directory, one subdirectory per
// session. Directories are never shared between sessions.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates the root directory if needed.
func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.New("sessions root directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating sessions root: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Create allocates a new session with every phase pending and persists
// the initial snapshot.
func (s *Store) Create(codebasePath, task string, cfg RunConfig) (*Session, error) {
	if codebasePath == "" {
		return nil, errors.New("codebase path is required")
	}
	if task == "" {
		return nil, errors.New("task is required")
	}

	id := uuid.New().String()
	dir := filepath.Join(s.root, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:           id,
		CodebasePath: codebasePath,
		Task:         task,
		State:        StateCreated,
		SessionDir:   dir,
		Config:       cfg,
		Phases:       make(map[Phase]*PhaseRecord, len(PhaseOrder())),
		Context:      make(map[Phase]string),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, phase := range PhaseOrder() {
		sess.Phases[phase] = &PhaseRecord{Status: StatusPending}
	}

	if err := s.Save(sess); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("codebase_path", codebasePath),
	)
	return sess, nil
}

// Save writes the full session snapshot atomically: the JSON goes to a
// temp file in the session directory, then a rename swaps it in.
func (s *Store) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	target := filepath.Join(sess.SessionDir, snapshotFile)
	tmp, err := os.CreateTemp(sess.SessionDir, snapshotFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load reads the session snapshot for id.
func (s *Store) Load(id string) (*Session, error) {
	path := filepath.Join(s.root, id, snapshotFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshaling session %s: %w", id, err)
	}
	if sess.Phases == nil {
		sess.Phases = make(map[Phase]*PhaseRecord)
	}
	if sess.Context == nil {
		sess.Context = make(map[Phase]string)
	}
	// The directory may have been moved with the root.
	sess.SessionDir = filepath.Join(s.root, id)
	return &sess, nil
}

// List returns all persisted sessions, most recently updated first.
func (s *Store) List() ([]*Session, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading sessions root: %w", err)
	}

	var sessions []*Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sess, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Warn("skipping unreadable session",
				zap.String("session_id", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// WritePhaseOutput stores a completed phase's text as <phase>.md inside
// the session directory and returns the file name for the record.
func (s *Store) WritePhaseOutput(sess *Session, phase Phase, output string) (string, error) {
	name := string(phase) + ".md"
	path := filepath.Join(sess.SessionDir, name)
	if err := os.WriteFile(path, []byte(output), 0o600); err != nil {
		return "", fmt.Errorf("writing output for phase %s: %w", phase, err)
	}
	return name, nil
}

// ReadPhaseOutput reads a completed phase's persisted output.
func (s *Store) ReadPhaseOutput(sess *Session, phase Phase) (string, error) {
	rec, ok := sess.Phases[phase]
	if !ok || rec.OutputFile == "" {
		return "", fmt.Errorf("phase %s has no output file", phase)
	}
	data, err := os.ReadFile(filepath.Join(sess.SessionDir, rec.OutputFile))
	if err != nil {
		return "", fmt.Errorf("reading output for phase %s: %w", phase, err)
	}
	return string(data), nil
}
