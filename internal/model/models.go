// Package model defines shared data structures for the ingest service.
package model

import (
	"encoding/json"
	"time"
)

// Target mirrors the companies table row relevant to polling.
// The store owns it; the scraper only refreshes metadata after a poll.
type Target struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	SourceType   string     `json:"sourceType"` // greenhouse, lever, …
	Name         string     `json:"name,omitempty"`
	Endpoint     string     `json:"endpoint,omitempty"`
	Verified     bool       `json:"verified"`
	LastPolledAt *time.Time `json:"lastPolledAt,omitempty"`
	JobCount     int        `json:"jobCount"`
}

// TargetRefresh is written back to a target after it was polled successfully.
type TargetRefresh struct {
	PolledAt time.Time
	JobCount int
	Verified bool
}

// RemoteType values mirror the jobs.remote_type column check constraint.
type RemoteType string

const (
	RemoteRemote  RemoteType = "remote"
	RemoteOnsite  RemoteType = "onsite"
	RemoteHybrid  RemoteType = "hybrid"
	RemoteUnknown RemoteType = "unknown"
)

// Valid reports whether r is one of the four persisted values.
func (r RemoteType) Valid() bool {
	switch r {
	case RemoteRemote, RemoteOnsite, RemoteHybrid, RemoteUnknown:
		return true
	}
	return false
}

// Seniority levels inferred by adapters.
const (
	SeniorityIntern   = "intern"
	SeniorityJunior   = "junior"
	SeniorityMid      = "mid"
	SenioritySenior   = "senior"
	SeniorityDirector = "director"
	SeniorityManager  = "manager"
)

// JobRecord is a normalised offer produced by a format adapter.
// URL and Title are always set: adapters drop entries missing either.
type JobRecord struct {
	URL            string          `json:"url"`
	Title          string          `json:"title"`
	Location       string          `json:"location,omitempty"`
	Description    string          `json:"description,omitempty"`
	SalaryMin      *int            `json:"salaryMin,omitempty"`
	SalaryMax      *int            `json:"salaryMax,omitempty"`
	SalaryCurrency string          `json:"salaryCurrency"`
	RemoteType     RemoteType      `json:"remoteType"`
	Seniority      string          `json:"seniority,omitempty"`
	Category       string          `json:"category,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	PostedAt       *time.Time      `json:"postedAt,omitempty"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

// StoredJob is the persisted view of a JobRecord, keyed by URLHash.
// FirstSeen, URL and Title are fixed at creation; the rest is refreshed on
// every observation.
type StoredJob struct {
	ID        string    `json:"id"`
	URLHash   string    `json:"urlHash"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	TargetID  string    `json:"targetId"`
	SalaryMin *int      `json:"salaryMin,omitempty"`
	SalaryMax *int      `json:"salaryMax,omitempty"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	IsActive  bool      `json:"isActive"`
}

// RunStatus mirrors scrape_runs.status.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
)

// Totals are the running counters of a scrape run.
type Totals struct {
	Seen   int `json:"total_jobs"`
	New    int `json:"new_jobs"`
	Errors int `json:"errors"`
}

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{Seen: t.Seen + o.Seen, New: t.New + o.New, Errors: t.Errors + o.Errors}
}

// Run is the audit row of one scrape invocation.
type Run struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Status     RunStatus      `json:"status"`
	Config     map[string]any `json:"config,omitempty"`
	Totals     Totals         `json:"totals"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
}
