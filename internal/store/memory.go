package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"jobmate/ats-ingest/internal/model"
)

// Memory is an in-process Store with the same upsert semantics as the SQL
// backends.
type Memory struct {
	mu      sync.Mutex
	targets map[string]model.Target
	jobs    map[string]model.StoredJob // by url hash
	runs    map[string]model.Run
	seq     int
	resets  int

	// FailUpsert, when set, is consulted before every job write.
	FailUpsert func(rec model.JobRecord) error
}

// NewMemory seeds a store with targets.
func NewMemory(targets ...model.Target) *Memory {
	m := &Memory{
		targets: make(map[string]model.Target),
		jobs:    make(map[string]model.StoredJob),
		runs:    make(map[string]model.Run),
	}
	for _, t := range targets {
		m.targets[t.ID] = t
	}
	return m
}

func (m *Memory) ListTargets(_ context.Context, f TargetFilter) ([]model.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]model.Target, 0, len(m.targets))
	for _, t := range m.targets {
		if t.Verified && strings.TrimSpace(t.Endpoint) != "" {
			all = append(all, t)
		}
	}
	return FilterTargets(all, f), nil
}

func (m *Memory) UpsertJob(_ context.Context, rec model.JobRecord, target model.Target, seenAt time.Time) (model.StoredJob, bool, error) {
	if m.FailUpsert != nil {
		if err := m.FailUpsert(rec); err != nil {
			return model.StoredJob{}, false, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row := newJobRow(rec, target)
	job, exists := m.jobs[row.URLHash]
	if !exists {
		m.seq++
		job = model.StoredJob{
			ID:        "job-" + strconv.Itoa(m.seq),
			URLHash:   row.URLHash,
			URL:       row.URL,
			Title:     row.Title,
			Source:    row.Source,
			TargetID:  target.ID,
			SalaryMin: row.SalaryMin,
			SalaryMax: row.SalaryMax,
			FirstSeen: seenAt,
			LastSeen:  seenAt,
			IsActive:  true,
		}
		m.jobs[row.URLHash] = job
		return job, true, nil
	}

	job.LastSeen = seenAt
	job.IsActive = true
	if target.ID != "" {
		job.TargetID = target.ID
	}
	if row.SalaryMin != nil {
		job.SalaryMin = row.SalaryMin
	}
	if row.SalaryMax != nil {
		job.SalaryMax = row.SalaryMax
	}
	m.jobs[row.URLHash] = job
	return job, false, nil
}

func (m *Memory) RefreshTarget(_ context.Context, targetID string, r model.TargetRefresh) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[targetID]
	if !ok {
		return nil
	}
	polled := r.PolledAt
	t.LastPolledAt = &polled
	t.JobCount = r.JobCount
	t.Verified = r.Verified
	m.targets[targetID] = t
	return nil
}

func (m *Memory) StartRun(_ context.Context, source string, cfg map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := "run-" + strconv.Itoa(m.seq)
	m.runs[id] = model.Run{ID: id, Source: source, Status: model.RunRunning, Config: cfg, StartedAt: time.Now().UTC()}
	return id, nil
}

func (m *Memory) FinishRun(_ context.Context, runID string, totals model.Totals, status model.RunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return errors.Newf("scrape run %s not found", runID)
	}
	now := time.Now().UTC()
	run.Totals = totals
	run.Status = status
	run.FinishedAt = &now
	m.runs[runID] = run
	return nil
}

func (m *Memory) MarkInactive(_ context.Context, lastSeenBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, j := range m.jobs {
		if j.IsActive && j.LastSeen.Before(lastSeenBefore) {
			j.IsActive = false
			m.jobs[k] = j
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteFirstSeenBefore(_ context.Context, firstSeenBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, j := range m.jobs {
		if j.FirstSeen.Before(firstSeenBefore) {
			delete(m.jobs, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpsertTarget(_ context.Context, t model.Target) (model.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	t.SourceType = strings.ToLower(strings.TrimSpace(t.SourceType))
	for id, existing := range m.targets {
		if existing.Slug == t.Slug && existing.SourceType == t.SourceType {
			t.ID = id
			if t.Name == "" {
				t.Name = existing.Name
			}
			if t.Endpoint == "" {
				t.Endpoint = existing.Endpoint
			}
			break
		}
	}
	if t.ID == "" {
		m.seq++
		t.ID = "target-" + strconv.Itoa(m.seq)
	}
	m.targets[t.ID] = t
	return t, nil
}

// Reset implements Resetter.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()
}

// ── Inspection helpers ────────────────────────────────────────────────────

// Jobs returns the stored jobs ordered by first sighting.
func (m *Memory) Jobs() []model.StoredJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.StoredJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Target returns the stored target by id.
func (m *Memory) Target(id string) (model.Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[id]
	return t, ok
}

// Run returns the stored run by id.
func (m *Memory) Run(id string) (model.Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	return r, ok
}

// RunCount is the number of runs started.
func (m *Memory) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// Resets counts Reset calls.
func (m *Memory) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}
