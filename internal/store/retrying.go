package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/retry"
)

// Retrying decorates a Store: every call that fails with a transient fault
// is retried under policy, resetting the inner connection in between.
// Other errors propagate on the first failure.
type Retrying struct {
	inner  Store
	policy retry.Policy
	log    *zap.SugaredLogger
}

// NewRetrying wraps inner with attempts total tries and a linear delay base.
func NewRetrying(inner Store, attempts int, delay time.Duration, log *zap.SugaredLogger) *Retrying {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Retrying{
		inner:  inner,
		policy: retry.Policy{Attempts: attempts, Delay: delay, Retryable: IsTransient},
		log:    log,
	}
}

// WithSleep replaces the wait between attempts; used by tests.
func (r *Retrying) WithSleep(sleep func(context.Context, time.Duration) error) *Retrying {
	r.policy.Sleep = sleep
	return r
}

func (r *Retrying) do(ctx context.Context, what string, op func(ctx context.Context) error) error {
	attempt := 0
	return r.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if IsTransient(err) && attempt < r.policy.Attempts {
			r.log.Warnw("Transient store fault, retrying",
				"op", what, "attempt", attempt, "of", r.policy.Attempts, "err", err)
		}
		return err
	}, r.reset)
}

func (r *Retrying) reset() {
	if rs, ok := r.inner.(Resetter); ok {
		rs.Reset()
	}
}

func (r *Retrying) ListTargets(ctx context.Context, f TargetFilter) (out []model.Target, err error) {
	err = r.do(ctx, "list targets", func(ctx context.Context) error {
		out, err = r.inner.ListTargets(ctx, f)
		return err
	})
	return out, err
}

func (r *Retrying) UpsertJob(ctx context.Context, rec model.JobRecord, target model.Target, seenAt time.Time) (job model.StoredJob, isNew bool, err error) {
	err = r.do(ctx, "upsert job", func(ctx context.Context) error {
		job, isNew, err = r.inner.UpsertJob(ctx, rec, target, seenAt)
		return err
	})
	return job, isNew, err
}

func (r *Retrying) RefreshTarget(ctx context.Context, targetID string, rf model.TargetRefresh) error {
	return r.do(ctx, "refresh target", func(ctx context.Context) error {
		return r.inner.RefreshTarget(ctx, targetID, rf)
	})
}

func (r *Retrying) StartRun(ctx context.Context, source string, cfg map[string]any) (id string, err error) {
	err = r.do(ctx, "start run", func(ctx context.Context) error {
		id, err = r.inner.StartRun(ctx, source, cfg)
		return err
	})
	return id, err
}

func (r *Retrying) FinishRun(ctx context.Context, runID string, totals model.Totals, status model.RunStatus) error {
	return r.do(ctx, "finish run", func(ctx context.Context) error {
		return r.inner.FinishRun(ctx, runID, totals, status)
	})
}

func (r *Retrying) MarkInactive(ctx context.Context, lastSeenBefore time.Time) (n int64, err error) {
	sw, ok := r.inner.(Sweeper)
	if !ok {
		return 0, ErrUnsupported
	}
	err = r.do(ctx, "mark inactive", func(ctx context.Context) error {
		n, err = sw.MarkInactive(ctx, lastSeenBefore)
		return err
	})
	return n, err
}

func (r *Retrying) DeleteFirstSeenBefore(ctx context.Context, firstSeenBefore time.Time) (n int64, err error) {
	sw, ok := r.inner.(Sweeper)
	if !ok {
		return 0, ErrUnsupported
	}
	err = r.do(ctx, "delete old jobs", func(ctx context.Context) error {
		n, err = sw.DeleteFirstSeenBefore(ctx, firstSeenBefore)
		return err
	})
	return n, err
}

func (r *Retrying) UpsertTarget(ctx context.Context, t model.Target) (out model.Target, err error) {
	tw, ok := r.inner.(TargetWriter)
	if !ok {
		return model.Target{}, ErrUnsupported
	}
	err = r.do(ctx, "upsert target", func(ctx context.Context) error {
		out, err = tw.UpsertTarget(ctx, t)
		return err
	})
	return out, err
}
