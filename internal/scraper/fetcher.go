// Package scraper fetches target boards concurrently and applies the results
// to the store with checkpointed progress.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"jobmate/ats-ingest/internal/adapter"
	"jobmate/ats-ingest/internal/model"
)

const (
	userAgent    = "jobmate-ats-ingest/1.0"
	maxBodyBytes = 32 << 20
)

// FetchKind classifies a per-target fetch fault.
type FetchKind string

const (
	KindNoEndpoint  FetchKind = "no_endpoint"
	KindNoAdapter   FetchKind = "no_adapter"
	KindRateLimited FetchKind = "rate_limited"
	KindDecode      FetchKind = "decode"
	KindHTTPStatus  FetchKind = "http_status"
	KindTimeout     FetchKind = "timeout"
	KindConnection  FetchKind = "connection"
)

// Counted reports whether the fault adds to the run's error counter.
// Skips decided before any request are not counted.
func (k FetchKind) Counted() bool {
	return k != KindNoEndpoint && k != KindNoAdapter
}

// FetchError is the error type of every failed FetchResult.
type FetchError struct {
	Kind   FetchKind
	Status int // HTTP status for KindRateLimited and KindHTTPStatus
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s (HTTP %d): %v", e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (HTTP %d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf extracts the fault kind of err; ok is false for foreign errors.
func KindOf(err error) (FetchKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// FetchResult is the outcome for one target.
type FetchResult struct {
	TargetID string
	Records  []model.JobRecord
	// Polled is true when the board answered 200 and was adapted,
	// including an empty board.
	Polled bool
	Err    error
}

// FetchConfig bounds the fan-out.
type FetchConfig struct {
	Concurrency  int           // requests in flight overall
	PerHost      int           // requests in flight per destination host
	Timeout      time.Duration // per request, body included
	HostInterval time.Duration // minimum spacing between requests to one host; 0 disables
}

type hostGate struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// Fetcher issues one GET per target and classifies the response. It never
// retries and never writes.
type Fetcher struct {
	cfg      FetchConfig
	client   *http.Client
	registry *adapter.Registry
	global   *semaphore.Weighted
	log      *zap.SugaredLogger

	mu    sync.Mutex
	hosts map[string]*hostGate
}

// NewFetcher constructs a Fetcher with its own pooled HTTP client.
func NewFetcher(registry *adapter.Registry, cfg FetchConfig, log *zap.SugaredLogger) *Fetcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PerHost < 1 {
		cfg.PerHost = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = cfg.PerHost
	transport.MaxIdleConnsPerHost = cfg.PerHost
	transport.MaxIdleConns = cfg.Concurrency

	return &Fetcher{
		cfg:      cfg,
		client:   &http.Client{Transport: transport},
		registry: registry,
		global:   semaphore.NewWeighted(int64(cfg.Concurrency)),
		log:      log,
		hosts:    make(map[string]*hostGate),
	}
}

// FetchAll fetches every target concurrently and returns one result per
// target id. It returns once all fetches have finished.
func (f *Fetcher) FetchAll(ctx context.Context, targets []model.Target) map[string]FetchResult {
	results := make(map[string]FetchResult, len(targets))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, t := range targets {
		wg.Go(func() {
			res := f.Fetch(ctx, t)
			mu.Lock()
			results[t.ID] = res
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}

// Fetch fetches and adapts a single target.
func (f *Fetcher) Fetch(ctx context.Context, t model.Target) FetchResult {
	res := FetchResult{TargetID: t.ID}

	endpoint := strings.TrimSpace(t.Endpoint)
	if endpoint == "" {
		res.Err = &FetchError{Kind: KindNoEndpoint}
		return res
	}
	ad, ok := f.registry.Lookup(t.SourceType)
	if !ok {
		res.Err = &FetchError{Kind: KindNoAdapter, Err: errors.Newf("source type %q", t.SourceType)}
		return res
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		res.Err = &FetchError{Kind: KindConnection, Err: errors.Newf("invalid endpoint %q", endpoint)}
		return res
	}

	// Host slot first: a request queued behind a busy host holds no global slot.
	gate := f.gate(strings.ToLower(u.Host))
	if err := gate.sem.Acquire(ctx, 1); err != nil {
		res.Err = transportError(err)
		return res
	}
	defer gate.sem.Release(1)
	if err := f.global.Acquire(ctx, 1); err != nil {
		res.Err = transportError(err)
		return res
	}
	defer f.global.Release(1)

	if gate.limiter != nil {
		if err := gate.limiter.Wait(ctx); err != nil {
			res.Err = transportError(err)
			return res
		}
	}

	started := time.Now()
	payload, status, err := f.get(ctx, endpoint)
	f.log.Debugw("Fetched board", "target", t.Slug, "ats", t.SourceType, "status", status, "elapsed", time.Since(started))
	if err != nil {
		res.Err = err
		return res
	}
	if status == http.StatusNotFound {
		return res
	}

	res.Records = ad.Adapt(payload, t.Slug)
	res.Polled = true
	return res
}

// get performs the request; a nil error with status 404 means "no board".
func (f *Fetcher) get(ctx context.Context, endpoint string) (payload any, status int, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, &FetchError{Kind: KindConnection, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, resp.StatusCode, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resp.StatusCode, &FetchError{Kind: KindRateLimited, Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, &FetchError{Kind: KindHTTPStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, transportError(err)
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, resp.StatusCode, &FetchError{Kind: KindDecode, Err: err}
	}
	return payload, resp.StatusCode, nil
}

func (f *Fetcher) gate(host string) *hostGate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.hosts[host]
	if !ok {
		g = &hostGate{sem: semaphore.NewWeighted(int64(f.cfg.PerHost))}
		if f.cfg.HostInterval > 0 {
			g.limiter = rate.NewLimiter(rate.Every(f.cfg.HostInterval), 1)
		}
		f.hosts[host] = g
	}
	return g
}

func transportError(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	return &FetchError{Kind: KindConnection, Err: err}
}
