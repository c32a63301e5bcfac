package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/adapter"
	"jobmate/ats-ingest/internal/checkpoint"
	"jobmate/ats-ingest/internal/config"
	"jobmate/ats-ingest/internal/db"
	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/notify"
	"jobmate/ats-ingest/internal/scraper"
	"jobmate/ats-ingest/internal/store"
)

// backend is a retrying store plus the function releasing its connection.
type backend struct {
	*store.Retrying
	close func()
}

// openStore connects to Postgres when DATABASE_URL is set, otherwise to the
// SQLite file. Every call goes through the transient-fault retry policy.
func openStore(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*backend, error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, err
	}

	var (
		inner   store.Store
		release func()
	)
	if cfg.DatabaseURL != "" {
		log.Infow("Connecting to PostgreSQL")
		pg := store.NewPostgres(cfg.DatabaseURL, cfg.StoreResetAfter, log.Named("postgres"))
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, errors.WithHint(errors.Wrap(err, "postgres"), "check DATABASE_URL and that the server is reachable")
		}
		log.Infow("PostgreSQL connected")
		inner, release = pg, pg.Close
	} else {
		sl := store.NewSQLite(cfg.SQLitePath, cfg.StoreResetAfter, log.Named("sqlite"))
		inner, release = sl, sl.Close
		log.Infow("Using SQLite", "path", cfg.SQLitePath)
	}

	r := store.NewRetrying(inner, cfg.StoreRetryAttempts, cfg.StoreRetryDelay, log.Named("store"))
	return &backend{Retrying: r, close: release}, nil
}

// openPublisher returns nil when REDIS_URL is unset. Redis being down only
// disables events.
func openPublisher(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (scraper.Publisher, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	switch {
	case errors.Is(err, db.ErrRedisUnavailable):
		log.Warnw("Redis unavailable, job events disabled", "err", err)
		return nil, func() {}
	case err != nil:
		log.Warnw("Invalid REDIS_URL, job events disabled", "err", err, "hint", errors.FlattenHints(err))
		return nil, func() {}
	}
	log.Infow("Redis connected, publishing " + notify.ChannelJobDiscovered)
	return notify.NewRedis(rdb, log.Named("notify")), func() { _ = rdb.Close() }
}

func newWorker(st store.Store, cfg *config.Config, log *zap.SugaredLogger) *scraper.Worker {
	fetcher := scraper.NewFetcher(adapter.Default(), scraper.FetchConfig{
		Concurrency:  cfg.Scrape.Concurrency,
		PerHost:      cfg.Scrape.PerHost,
		Timeout:      cfg.Scrape.Timeout,
		HostInterval: cfg.Scrape.HostInterval,
	}, log.Named("fetcher"))
	ckpt := checkpoint.NewManager(cfg.Checkpoint, log.Named("checkpoint"))
	return scraper.NewWorker(st, fetcher, ckpt, log.Named("worker"))
}

// withEndpoints fills missing endpoints from the adapter of each target.
func withEndpoints(targets []model.Target, reg *adapter.Registry) []model.Target {
	out := make([]model.Target, len(targets))
	for i, t := range targets {
		if t.Endpoint == "" {
			if ad, ok := reg.Lookup(t.SourceType); ok {
				t.Endpoint = ad.Endpoint(t.Slug)
			}
		}
		out[i] = t
	}
	return out
}
