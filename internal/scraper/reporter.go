package scraper

import (
	"context"

	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/store"
)

// SourceTag identifies runs of this scraper in scrape_runs.source.
const SourceTag = "ats_scraper"

// RunConfig is the filter snapshot recorded with a run.
type RunConfig struct {
	SourceType  string
	Slug        string
	TargetCount int
}

func (c RunConfig) asMap() map[string]any {
	m := map[string]any{"company_count": c.TargetCount}
	if c.SourceType != "" {
		m["ats_filter"] = c.SourceType
	} else {
		m["ats_filter"] = nil
	}
	if c.Slug != "" {
		m["company_filter"] = c.Slug
	} else {
		m["company_filter"] = nil
	}
	return m
}

// Reporter owns the audit row of each run.
type Reporter struct {
	store store.Store
	log   *zap.SugaredLogger
}

// NewReporter returns a Reporter writing to st.
func NewReporter(st store.Store, log *zap.SugaredLogger) *Reporter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reporter{store: st, log: log}
}

// Start records a new running run.
func (r *Reporter) Start(ctx context.Context, cfg RunConfig) (string, error) {
	id, err := r.store.StartRun(ctx, SourceTag, cfg.asMap())
	if err != nil {
		return "", err
	}
	r.log.Infow("Started scrape run", "run", id, "ats", cfg.SourceType, "targets", cfg.TargetCount)
	return id, nil
}

// Finish stores the final totals. Failures are logged, not returned.
func (r *Reporter) Finish(ctx context.Context, runID string, totals model.Totals) {
	if err := r.store.FinishRun(ctx, runID, totals, model.RunCompleted); err != nil {
		r.log.Errorw("Failed to finish scrape run", "run", runID, "err", err)
		return
	}
	r.log.Infow("Finished scrape run", "run", runID,
		"total", totals.Seen, "new", totals.New, "errors", totals.Errors)
}
