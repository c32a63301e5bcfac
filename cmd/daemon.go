package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"jobmate/ats-ingest/internal/checkpoint"
	"jobmate/ats-ingest/internal/scheduler"
	"jobmate/ats-ingest/internal/server"
)

func newDaemonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Scrape on a schedule and serve health endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), a)
		},
	}
}

func runDaemon(parent context.Context, a *app) error {
	cfg, log := a.cfg, a.log

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Store ───────────────────────────────────────────────────────────────
	be, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	// ── Redis ───────────────────────────────────────────────────────────────
	pub, closePub := openPublisher(ctx, cfg, log)
	defer closePub()

	worker := newWorker(be, cfg, log)
	if pub != nil {
		worker.WithPublisher(pub)
	}

	// ── Scheduler ───────────────────────────────────────────────────────────
	sched := scheduler.New(worker,
		scheduler.NewRetention(be, cfg.StaleHours, cfg.TTLDays, log.Named("retention")),
		scheduler.Config{IntervalHours: cfg.ScrapeIntervalHours},
		log.Named("scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	// ── HTTP server ─────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      server.Router(worker, checkpoint.NewManager(cfg.Checkpoint, log)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	errc := make(chan error, 2)
	go func() {
		log.Infow("HTTP listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- errors.Wrap(err, "http server")
		}
	}()

	// ── gRPC health ─────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return errors.Wrapf(err, "listen grpc :%s", cfg.GRPCPort)
	}
	grpcSrv, health := server.NewGRPC()
	go func() {
		log.Infow("gRPC listening", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- errors.Wrap(err, "grpc server")
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	log.Infow("Shutting down")
	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP shutdown error", "err", err)
	}
	grpcSrv.GracefulStop()
	log.Infow("Stopped")
	return runErr
}
