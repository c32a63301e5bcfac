// Package store persists targets, jobs and scrape runs.
//
// Two SQL backends share one schema: Postgres (pgxpool) for production and
// SQLite (modernc) for local runs. Memory backs the tests. Every backend
// tags connection-class faults with ErrTransient so Retrying can tell them
// apart from permanent failures.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"jobmate/ats-ingest/internal/identity"
	"jobmate/ats-ingest/internal/model"
)

// descriptionLimit caps jobs.description, in runes.
const descriptionLimit = 500

var (
	// ErrTransient marks connection-class faults worth a retry on a fresh
	// connection.
	ErrTransient = errors.New("transient store fault")

	// ErrUnsupported is returned by Retrying when the wrapped store lacks an
	// optional capability.
	ErrUnsupported = errors.New("operation not supported by store")
)

// IsTransient reports whether err was classified as a connection-class fault.
func IsTransient(err error) bool {
	return err != nil && errors.Is(err, ErrTransient)
}

// MarkTransient tags err as retryable. Nil stays nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrTransient)
}

// TargetFilter narrows ListTargets. Zero values disable a criterion.
type TargetFilter struct {
	SourceType string
	Slug       string // case-insensitive
	Limit      int
}

// Store is the collaborator consumed by the scrape worker.
type Store interface {
	// ListTargets returns verified targets with an endpoint, ordered by slug
	// then id.
	ListTargets(ctx context.Context, f TargetFilter) ([]model.Target, error)
	// UpsertJob creates the job keyed by identity.Key(rec.URL) or refreshes
	// it. isNew is true only when a row was created.
	UpsertJob(ctx context.Context, rec model.JobRecord, target model.Target, seenAt time.Time) (job model.StoredJob, isNew bool, err error)
	RefreshTarget(ctx context.Context, targetID string, r model.TargetRefresh) error
	StartRun(ctx context.Context, source string, cfg map[string]any) (string, error)
	FinishRun(ctx context.Context, runID string, totals model.Totals, status model.RunStatus) error
}

// Sweeper runs the retention sweeps of the daemon.
type Sweeper interface {
	// MarkInactive flags active jobs last seen before the cutoff.
	MarkInactive(ctx context.Context, lastSeenBefore time.Time) (int64, error)
	// DeleteFirstSeenBefore removes jobs first seen before the cutoff.
	DeleteFirstSeenBefore(ctx context.Context, firstSeenBefore time.Time) (int64, error)
}

// TargetWriter registers polling targets.
type TargetWriter interface {
	UpsertTarget(ctx context.Context, t model.Target) (model.Target, error)
}

// Resetter drops the current connection so the next call opens a new one.
type Resetter interface {
	Reset()
}

// jobRow is the column set written on insert, derived from a record.
type jobRow struct {
	URLHash     string
	URL         string
	Title       string
	Source      string
	CompanyName *string
	CompanyID   *string
	Location    *string
	Description *string
	SalaryMin   *int
	SalaryMax   *int
	Currency    *string
	RemoteType  *string
	Seniority   *string
	Category    *string
	Tags        []string
	PostedAt    *time.Time
	Raw         []byte
}

func newJobRow(rec model.JobRecord, target model.Target) jobRow {
	row := jobRow{
		URLHash:     identity.Key(rec.URL),
		URL:         strings.TrimSpace(rec.URL),
		Title:       strings.TrimSpace(rec.Title),
		Source:      sourceTag(target.SourceType),
		CompanyName: optional(target.Name),
		CompanyID:   optional(target.ID),
		Location:    optional(rec.Location),
		Description: optional(truncateRunes(rec.Description, descriptionLimit)),
		SalaryMin:   rec.SalaryMin,
		SalaryMax:   rec.SalaryMax,
		Currency:    optional(rec.SalaryCurrency),
		Seniority:   optional(rec.Seniority),
		Category:    optional(rec.Category),
		Tags:        rec.Tags,
		PostedAt:    rec.PostedAt,
	}
	if rec.RemoteType.Valid() {
		rt := string(rec.RemoteType)
		row.RemoteType = &rt
	}
	if len(rec.Raw) > 0 && json.Valid(rec.Raw) {
		row.Raw = []byte(rec.Raw)
	}
	return row
}

func sourceTag(sourceType string) string {
	s := strings.ToLower(strings.TrimSpace(sourceType))
	if s == "" {
		return "unknown"
	}
	return s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return strings.TrimSpace(s)
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// FilterTargets applies the filter, ordering and limit of ListTargets to an
// in-memory slice. Verification and endpoint checks are left to the caller.
func FilterTargets(all []model.Target, f TargetFilter) []model.Target {
	out := make([]model.Target, 0, len(all))
	for _, t := range all {
		if f.SourceType != "" && !strings.EqualFold(t.SourceType, f.SourceType) {
			continue
		}
		if f.Slug != "" && !strings.EqualFold(t.Slug, f.Slug) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Slug != out[j].Slug {
			return out[i].Slug < out[j].Slug
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
