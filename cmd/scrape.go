package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"jobmate/ats-ingest/internal/adapter"
	"jobmate/ats-ingest/internal/scraper"
	"jobmate/ats-ingest/internal/store"
)

func newScrapeCmd(a *app) *cobra.Command {
	var (
		opts        scraper.Options
		targetsFile string
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Poll every verified target once",
		Long: `Poll every verified target once and upsert the offers found.

Progress is checkpointed every 10 targets. An interrupted run is resumed
automatically on the next invocation unless --fresh is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if targetsFile != "" {
				targets, err := store.LoadTargetsFile(targetsFile)
				if err != nil {
					return err
				}
				opts.Targets = withEndpoints(targets, adapter.Default())
			}
			return runScrape(ctx, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.SourceType, "source", "", "only targets of this ATS (greenhouse, lever, ...)")
	f.StringVar(&opts.Slug, "target", "", "only the target with this slug")
	f.IntVar(&opts.Limit, "limit", 0, "at most N targets (0 = all)")
	f.BoolVar(&opts.DryRun, "dry-run", false, "fetch and adapt, write nothing")
	f.BoolVar(&opts.Resume, "resume", false, "continue from the checkpoint")
	f.BoolVar(&opts.Fresh, "fresh", false, "discard any checkpoint and start over")
	f.StringVar(&targetsFile, "targets-file", "", "read targets from a YAML file instead of the store")
	return cmd
}

func runScrape(ctx context.Context, a *app, opts scraper.Options) error {
	if opts.Limit < 0 {
		return errors.Newf("--limit must not be negative, got %d", opts.Limit)
	}

	var st store.Store
	if opts.DryRun && opts.Targets != nil {
		// Nothing to list and nothing to write.
		st = store.NewMemory()
	} else {
		be, err := openStore(ctx, a.cfg, a.log)
		if err != nil {
			return err
		}
		defer be.close()
		st = be
	}

	worker := newWorker(st, a.cfg, a.log)
	if !opts.DryRun {
		pub, closePub := openPublisher(ctx, a.cfg, a.log)
		defer closePub()
		if pub != nil {
			worker.WithPublisher(pub)
		}
	}

	_, err := worker.Run(ctx, opts)
	return err
}
