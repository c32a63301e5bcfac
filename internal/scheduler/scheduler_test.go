package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/scheduler"
	"jobmate/ats-ingest/internal/scraper"
	"jobmate/ats-ingest/internal/store"
)

type countingRunner struct {
	calls atomic.Int32
	opts  atomic.Value
}

func (r *countingRunner) Run(_ context.Context, opts scraper.Options) (scraper.Summary, error) {
	r.calls.Add(1)
	r.opts.Store(opts)
	return scraper.Summary{Targets: 1}, nil
}

// ── Scheduling ────────────────────────────────────────────────────────────

func TestStart_RunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := scheduler.New(runner, nil, scheduler.Config{IntervalHours: 6}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	opts := runner.opts.Load().(scraper.Options)
	assert.False(t, opts.Fresh, "daemon cycles resume interrupted runs")
	assert.False(t, opts.DryRun)
}

func TestStart_RejectsBadSweepSpec(t *testing.T) {
	ret := scheduler.NewRetention(store.NewMemory(), 48, 90, nil)
	s := scheduler.New(&countingRunner{}, ret, scheduler.Config{IntervalHours: 6, SweepSpec: "every tuesday"}, nil)
	assert.Error(t, s.Start(context.Background()))
}

// ── Retention ─────────────────────────────────────────────────────────────

func TestRetention_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	target := model.Target{ID: "t", Slug: "acme", SourceType: "lever"}
	mem := store.NewMemory(target)

	upsert := func(url string, at time.Time) {
		_, _, err := mem.UpsertJob(ctx, model.JobRecord{URL: url, Title: "Job"}, target, at)
		require.NoError(t, err)
	}
	upsert("https://example.com/fresh", now.Add(-time.Hour))
	upsert("https://example.com/stale", now.Add(-72*time.Hour))
	upsert("https://example.com/ancient", now.Add(-100*24*time.Hour))

	res, err := scheduler.NewRetention(mem, 48, 90, nil).WithClock(func() time.Time { return now }).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Deactivated)
	assert.Equal(t, int64(1), res.Deleted)

	jobs := mem.Jobs()
	require.Len(t, jobs, 2)
	assert.False(t, jobs[0].IsActive, "stale job")
	assert.True(t, jobs[1].IsActive, "fresh job")
}
