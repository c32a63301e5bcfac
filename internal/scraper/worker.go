package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/store"
)

// ErrRunInProgress is returned when Run is called while another run of the
// same Worker has not finished.
var ErrRunInProgress = errors.New("a scrape run is already in progress")

// Options select the targets of one invocation and how progress is handled.
type Options struct {
	SourceType string
	Slug       string
	Limit      int

	DryRun bool // fetch and adapt only
	Resume bool // continue from the checkpoint
	Fresh  bool // discard the checkpoint; wins over Resume

	// Targets replaces the store listing when non-nil (targets file).
	Targets []model.Target
}

// Summary describes a finished (or aborted) invocation.
type Summary struct {
	RunID     string        `json:"runId,omitempty"`
	Targets   int           `json:"targets"`   // matched by the filter
	Skipped   int           `json:"skipped"`   // already completed per checkpoint
	Processed int           `json:"processed"` // applied by this invocation
	WithJobs  int           `json:"withJobs"`
	Totals    model.Totals  `json:"totals"`
	Resumed   bool          `json:"resumed"`
	DryRun    bool          `json:"dryRun"`
	Failed    bool          `json:"failed"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Worker runs one scrape cycle: list, fetch concurrently, apply sequentially.
type Worker struct {
	store     store.Store
	fetcher   *Fetcher
	ckpt      Checkpointer
	reporter  *Reporter
	publisher Publisher
	now       func() time.Time
	log       *zap.SugaredLogger

	running sync.Mutex

	mu   sync.RWMutex
	last *Summary
}

// NewWorker constructs a Worker.
func NewWorker(st store.Store, fetcher *Fetcher, ckpt Checkpointer, log *zap.SugaredLogger) *Worker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Worker{
		store:    st,
		fetcher:  fetcher,
		ckpt:     ckpt,
		reporter: NewReporter(st, log),
		now:      time.Now,
		log:      log,
	}
}

// WithPublisher announces newly created jobs through p.
func (w *Worker) WithPublisher(p Publisher) *Worker {
	w.publisher = p
	return w
}

// WithClock overrides the time source.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// Last returns the summary of the most recent run, if any.
func (w *Worker) Last() (Summary, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return Summary{}, false
	}
	return *w.last, true
}

// Run executes one invocation. Per-target faults only show up in the
// totals. The returned error is a listing failure, a fatal store write or
// an interruption; in the last two cases the checkpoint has been flushed.
func (w *Worker) Run(ctx context.Context, opts Options) (Summary, error) {
	if !w.running.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer w.running.Unlock()

	started := w.now()
	sum := Summary{DryRun: opts.DryRun, StartedAt: started.UTC()}

	targets, err := w.targets(ctx, opts)
	if err != nil {
		return sum, errors.Wrap(err, "list targets")
	}
	sum.Targets = len(targets)
	if len(targets) == 0 {
		w.log.Warnw("No targets match the filter", "ats", opts.SourceType, "target", opts.Slug)
		w.remember(sum)
		return sum, nil
	}

	p := &progress{completed: make(map[string]struct{})}
	switch {
	case opts.Fresh:
		if !opts.DryRun {
			if err := w.ckpt.Clear(); err != nil {
				w.log.Warnw("Could not discard checkpoint", "err", err)
			}
		}
		w.log.Infow("Fresh run, checkpoint ignored")
	case opts.Resume || w.ckpt.Exists():
		if state, ok := w.ckpt.Load(); ok {
			p.completed = state.Completed()
			p.totals = state.Totals()
			p.runID = state.RunID
			sum.Resumed = true
			w.log.Infow("Resuming from checkpoint",
				"completed", len(p.completed), "run", p.runID,
				"total", p.totals.Seen, "new", p.totals.New, "errors", p.totals.Errors)
		} else if opts.Resume {
			w.log.Infow("No checkpoint to resume from, starting from scratch")
		}
	}

	pending := make([]model.Target, 0, len(targets))
	for _, t := range targets {
		if _, done := p.completed[t.ID]; !done {
			pending = append(pending, t)
		}
	}
	sum.Skipped = len(targets) - len(pending)

	if !opts.DryRun && p.runID == "" {
		id, err := w.reporter.Start(ctx, RunConfig{
			SourceType:  opts.SourceType,
			Slug:        opts.Slug,
			TargetCount: len(targets),
		})
		if err != nil {
			return w.fail(sum, p, started, errors.WithHint(
				errors.Wrap(err, "start run"),
				"check the store connection and re-run"))
		}
		p.runID = id
	}

	ap := &applier{
		store:     w.store,
		ckpt:      w.ckpt,
		publisher: w.publisher,
		now:       w.now,
		dryRun:    opts.DryRun,
		log:       w.log,
	}

	w.log.Infow("Fetching boards", "pending", len(pending), "skipped", sum.Skipped, "dry_run", opts.DryRun)
	results := w.fetcher.FetchAll(ctx, pending)

	// Nothing is applied after cancellation, so pending targets stay pending.
	if err := ctx.Err(); err != nil {
		ap.flush(p)
		return w.fail(sum, p, started, errors.WithHint(
			errors.Wrap(err, "scrape interrupted before results were applied"),
			"re-run with --resume to continue"))
	}

	if err := ap.apply(ctx, pending, results, p); err != nil {
		return w.fail(sum, p, started, errors.WithHintf(err,
			"progress was checkpointed to %s; re-run with --resume to continue", w.checkpointPath()))
	}

	sum = w.fill(sum, p, started)
	if !opts.DryRun {
		w.reporter.Finish(ctx, p.runID, p.totals)
		if err := w.ckpt.Clear(); err != nil {
			w.log.Errorw("Could not clear checkpoint", "err", err)
		}
	}

	w.log.Infow("Scrape complete",
		"run", sum.RunID, "processed", sum.Processed, "with_jobs", sum.WithJobs,
		"total", sum.Totals.Seen, "new", sum.Totals.New, "errors", sum.Totals.Errors,
		"elapsed", sum.Duration)
	w.remember(sum)
	return sum, nil
}

func (w *Worker) targets(ctx context.Context, opts Options) ([]model.Target, error) {
	filter := store.TargetFilter{SourceType: opts.SourceType, Slug: opts.Slug, Limit: opts.Limit}
	if opts.Targets != nil {
		return store.FilterTargets(opts.Targets, filter), nil
	}
	return w.store.ListTargets(ctx, filter)
}

func (w *Worker) fill(sum Summary, p *progress, started time.Time) Summary {
	sum.RunID = p.runID
	sum.Processed = p.applied
	sum.WithJobs = p.withJobs
	sum.Totals = p.totals
	sum.Duration = w.now().Sub(started)
	return sum
}

func (w *Worker) fail(sum Summary, p *progress, started time.Time, err error) (Summary, error) {
	sum = w.fill(sum, p, started)
	sum.Failed = true
	w.log.Errorw("Scrape aborted",
		"run", sum.RunID, "processed", sum.Processed,
		"total", sum.Totals.Seen, "new", sum.Totals.New, "errors", sum.Totals.Errors,
		"err", err)
	w.remember(sum)
	return sum, err
}

func (w *Worker) remember(sum Summary) {
	w.mu.Lock()
	w.last = &sum
	w.mu.Unlock()
}

func (w *Worker) checkpointPath() string {
	if p, ok := w.ckpt.(interface{ Path() string }); ok {
		return p.Path()
	}
	return "the checkpoint file"
}
