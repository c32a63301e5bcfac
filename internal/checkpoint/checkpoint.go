// Package checkpoint persists scrape progress so an interrupted run can resume.
//
// The file lives at one fixed path; its presence alone signals a resumable
// run. Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated document behind.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/model"
)

// State is the persisted snapshot.
type State struct {
	CompletedIDs []string  `json:"completed_ids"`
	RunID        string    `json:"run_id,omitempty"`
	TotalJobs    int       `json:"total_jobs"`
	NewJobs      int       `json:"new_jobs"`
	Errors       int       `json:"errors"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Totals returns the counters as model.Totals.
func (s State) Totals() model.Totals {
	return model.Totals{Seen: s.TotalJobs, New: s.NewJobs, Errors: s.Errors}
}

// Completed returns the completed ids as a set.
func (s State) Completed() map[string]struct{} {
	set := make(map[string]struct{}, len(s.CompletedIDs))
	for _, id := range s.CompletedIDs {
		set[id] = struct{}{}
	}
	return set
}

// NewState builds a snapshot from a completed set and running totals.
func NewState(completed map[string]struct{}, runID string, totals model.Totals, at time.Time) State {
	ids := make([]string, 0, len(completed))
	for id := range completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return State{
		CompletedIDs: ids,
		RunID:        runID,
		TotalJobs:    totals.Seen,
		NewJobs:      totals.New,
		Errors:       totals.Errors,
		UpdatedAt:    at.UTC(),
	}
}

// Manager reads and writes the checkpoint file.
type Manager struct {
	path string
	log  *zap.SugaredLogger
}

// NewManager returns a Manager for the file at path.
func NewManager(path string, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{path: path, log: log}
}

// Path is the checkpoint file location.
func (m *Manager) Path() string { return m.path }

// Exists reports whether a checkpoint file is present.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Load returns the stored state, or ok=false when there is none. An
// unreadable or corrupt file is logged and treated as absent.
func (m *Manager) Load() (state State, ok bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.log.Warnw("Checkpoint unreadable, starting fresh", "path", m.path, "err", err)
		}
		return State{}, false
	}
	if err := json.Unmarshal(data, &state); err != nil {
		m.log.Warnw("Checkpoint corrupt, starting fresh", "path", m.path, "err", err)
		return State{}, false
	}
	return state, true
}

// Save atomically replaces the checkpoint with s.
func (m *Manager) Save(s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal checkpoint")
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create checkpoint dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create checkpoint temp file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write checkpoint")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync checkpoint")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close checkpoint")
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return errors.Wrapf(err, "replace checkpoint %s", m.path)
	}
	return nil
}

// Clear removes the checkpoint. A missing file is not an error.
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "remove checkpoint %s", m.path)
	}
	return nil
}
