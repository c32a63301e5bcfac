// Package scheduler wires up the cron jobs of daemon mode: the periodic
// scrape and the retention sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/scraper"
)

// Runner executes one scrape invocation.
type Runner interface {
	Run(ctx context.Context, opts scraper.Options) (scraper.Summary, error)
}

// Config holds the cron cadence.
type Config struct {
	IntervalHours int
	SweepSpec     string // cron spec of the retention sweep, e.g. "@every 24h"
}

// Scheduler wraps robfig/cron and manages the scrape loop.
type Scheduler struct {
	cron      *cron.Cron
	runner    Runner
	retention *Retention
	scrape    string // cron spec, e.g. "@every 6h"
	sweep     string
	log       *zap.SugaredLogger

	wg sync.WaitGroup
}

// New creates a Scheduler that scrapes every cfg.IntervalHours hours. A nil
// retention disables the sweep.
func New(runner Runner, retention *Retention, cfg Config, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Desugar().Named("cron")))
	sweep := cfg.SweepSpec
	if sweep == "" {
		sweep = "@every 24h"
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runner:    runner,
		retention: retention,
		scrape:    fmt.Sprintf("@every %dh", cfg.IntervalHours),
		sweep:     sweep,
		log:       log,
	}
}

// Start registers the jobs and starts the scheduler. Also runs one scrape
// immediately so the store is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.scrape, func() { s.runScrape(ctx) }); err != nil {
		return errors.Wrapf(err, "schedule scrape %q", s.scrape)
	}
	if s.retention != nil {
		if _, err := s.cron.AddFunc(s.sweep, func() { s.runSweep(ctx) }); err != nil {
			return errors.Wrapf(err, "schedule sweep %q", s.sweep)
		}
	}

	s.cron.Start()
	s.log.Infow("Cron started", "scrape", s.scrape, "sweep", s.sweep)

	s.wg.Go(func() { s.runScrape(ctx) })
	return nil
}

// Stop stops the cron and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Infow("Cron stopped")
}

// runScrape performs one scrape with automatic resume: a checkpoint left by
// an interrupted cycle is picked up by the next one.
func (s *Scheduler) runScrape(ctx context.Context) {
	s.log.Infow("Scrape cycle started")
	sum, err := s.runner.Run(ctx, scraper.Options{})
	switch {
	case errors.Is(err, scraper.ErrRunInProgress):
		s.log.Warnw("Previous scrape still running, cycle skipped")
	case err != nil:
		s.log.Errorw("Scrape cycle failed", "err", err, "processed", sum.Processed)
	default:
		s.log.Infow("Scrape cycle complete",
			"targets", sum.Targets, "new", sum.Totals.New, "errors", sum.Totals.Errors)
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.retention.Sweep(ctx); err != nil {
		s.log.Errorw("Retention sweep failed", "err", err)
	}
}
