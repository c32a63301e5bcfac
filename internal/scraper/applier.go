package scraper

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/checkpoint"
	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/store"
)

// flushEvery is the checkpoint cadence, in targets applied.
const flushEvery = 10

// Checkpointer is the subset of checkpoint.Manager the worker relies on.
type Checkpointer interface {
	Exists() bool
	Load() (checkpoint.State, bool)
	Save(checkpoint.State) error
	Clear() error
}

// Publisher announces newly discovered jobs.
type Publisher interface {
	PublishDiscovered(ctx context.Context, job model.StoredJob, target model.Target) error
}

// progress is the mutable state of one invocation.
type progress struct {
	runID     string
	completed map[string]struct{}
	totals    model.Totals
	applied   int // targets applied by this invocation
	withJobs  int
}

func (p *progress) snapshot(at time.Time) checkpoint.State {
	return checkpoint.NewState(p.completed, p.runID, p.totals, at)
}

// applier writes fetch results to the store one target at a time.
type applier struct {
	store     store.Store
	ckpt      Checkpointer
	publisher Publisher
	now       func() time.Time
	dryRun    bool
	log       *zap.SugaredLogger
}

// apply walks targets in order. It stops at the first store write failure,
// after flushing the checkpoint.
func (a *applier) apply(ctx context.Context, targets []model.Target, results map[string]FetchResult, p *progress) error {
	for _, t := range targets {
		res, ok := results[t.ID]
		if !ok {
			res = FetchResult{TargetID: t.ID, Err: &FetchError{Kind: KindConnection, Err: errors.New("no fetch result")}}
		}

		if err := a.applyTarget(ctx, t, res, p); err != nil {
			p.totals.Errors++
			a.flush(p)
			a.log.Errorw("Store write failed, checkpoint saved", "target", t.Slug, "err", err)
			return errors.Wrapf(err, "apply target %s", t.Slug)
		}

		p.completed[t.ID] = struct{}{}
		p.applied++
		if p.applied%flushEvery == 0 {
			a.flush(p)
			a.log.Infow("Checkpoint", "done", len(p.completed), "new", p.totals.New, "errors", p.totals.Errors)
		}
	}
	return nil
}

func (a *applier) applyTarget(ctx context.Context, t model.Target, res FetchResult, p *progress) error {
	if res.Err != nil {
		kind, _ := KindOf(res.Err)
		if kind.Counted() || kind == "" {
			p.totals.Errors++
			a.log.Warnw("Fetch failed", "target", t.Slug, "ats", t.SourceType, "kind", kind, "err", res.Err)
		} else {
			a.log.Debugw("Target skipped", "target", t.Slug, "kind", kind)
		}
		return nil
	}

	if len(res.Records) > 0 {
		p.withJobs++
	}

	if a.dryRun {
		p.totals.Seen += len(res.Records)
		p.totals.New += len(res.Records)
		if len(res.Records) > 0 {
			a.log.Infow("[dry-run] adapted", "target", t.Slug, "ats", t.SourceType,
				"jobs", len(res.Records), "sample", res.Records[0].Title)
		}
		return nil
	}

	seenAt := a.now().UTC()
	for _, rec := range res.Records {
		job, isNew, err := a.store.UpsertJob(ctx, rec, t, seenAt)
		if err != nil {
			return errors.Wrapf(err, "upsert %s", rec.URL)
		}
		p.totals.Seen++
		if !isNew {
			continue
		}
		p.totals.New++
		if a.publisher != nil {
			if err := a.publisher.PublishDiscovered(ctx, job, t); err != nil {
				a.log.Warnw("Publish failed", "job", job.ID, "err", err)
			}
		}
	}

	if res.Polled {
		err := a.store.RefreshTarget(ctx, t.ID, model.TargetRefresh{
			PolledAt: seenAt,
			JobCount: len(res.Records),
			Verified: true,
		})
		if err != nil {
			return errors.Wrap(err, "refresh target")
		}
	}
	return nil
}

// flush saves the checkpoint; dry runs never touch it. Save failures are
// logged and the run goes on.
func (a *applier) flush(p *progress) {
	if a.dryRun {
		return
	}
	if err := a.ckpt.Save(p.snapshot(a.now())); err != nil {
		a.log.Errorw("Checkpoint save failed", "err", err)
	}
}
