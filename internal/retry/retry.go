// Package retry re-runs store operations that failed with a transient error.
package retry

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Policy bounds a retry loop. Attempts counts every call, including the first.
// The n-th retry waits Delay*n before running.
type Policy struct {
	Attempts  int
	Delay     time.Duration
	Retryable func(error) bool

	// Sleep is swapped in tests; defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs op until it succeeds, returns a non-retryable error or the attempt
// budget is spent. reset, when non-nil, runs before every retry so the next
// attempt gets a fresh connection.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, reset func()) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if reset != nil {
			reset()
		}
		if serr := sleep(ctx, p.Delay*time.Duration(attempt)); serr != nil {
			return errors.Wrapf(serr, "retry interrupted (last error: %v)", err)
		}
	}
	return errors.Wrapf(err, "giving up after %d attempts", attempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
