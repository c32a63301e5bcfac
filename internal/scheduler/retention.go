package scheduler

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/store"
)

// SweepResult counts the rows touched by one sweep.
type SweepResult struct {
	Deactivated int64 `json:"deactivated"`
	Deleted     int64 `json:"deleted"`
}

// Retention ages out jobs: unseen for StaleAfter become inactive, first seen
// more than TTL ago are deleted.
type Retention struct {
	store      store.Sweeper
	staleAfter time.Duration
	ttl        time.Duration
	now        func() time.Time
	log        *zap.SugaredLogger
}

// NewRetention builds a Retention from hour and day counts.
func NewRetention(st store.Sweeper, staleHours, ttlDays int, log *zap.SugaredLogger) *Retention {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Retention{
		store:      st,
		staleAfter: time.Duration(staleHours) * time.Hour,
		ttl:        time.Duration(ttlDays) * 24 * time.Hour,
		now:        time.Now,
		log:        log,
	}
}

// WithClock overrides the time source.
func (r *Retention) WithClock(now func() time.Time) *Retention {
	r.now = now
	return r
}

// Sweep runs both passes. The delete pass still runs when marking fails.
func (r *Retention) Sweep(ctx context.Context) (SweepResult, error) {
	now := r.now().UTC()
	var res SweepResult

	n, markErr := r.store.MarkInactive(ctx, now.Add(-r.staleAfter))
	if markErr != nil {
		markErr = errors.Wrap(markErr, "mark inactive")
	} else {
		res.Deactivated = n
	}

	n, delErr := r.store.DeleteFirstSeenBefore(ctx, now.Add(-r.ttl))
	if delErr != nil {
		delErr = errors.Wrap(delErr, "delete expired")
	} else {
		res.Deleted = n
	}

	r.log.Infow("Retention sweep", "deactivated", res.Deactivated, "deleted", res.Deleted,
		"stale_after", r.staleAfter, "ttl", r.ttl)
	return res, errors.CombineErrors(markErr, delErr)
}
