package retry

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("connection reset")

func recordingSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	var waits []time.Duration
	resets := 0
	calls := 0
	p := Policy{Attempts: 3, Delay: time.Second, Retryable: func(error) bool { return true }, Sleep: recordingSleep(&waits)}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	}, func() { resets++ })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, resets)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestDo_GivesUpAfterBudget(t *testing.T) {
	var waits []time.Duration
	calls := 0
	p := Policy{Attempts: 3, Delay: time.Millisecond, Sleep: recordingSleep(&waits)}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errFlaky))
	assert.Equal(t, 3, calls)
	assert.Len(t, waits, 2)
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	permanent := errors.New("unique violation")
	calls := 0
	p := Policy{Attempts: 3, Retryable: func(err error) bool { return !errors.Is(err, permanent) }}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	}, func() { t.Fatal("reset must not run for permanent errors") })

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledContextStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	p := Policy{Attempts: 5, Delay: time.Hour}

	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errFlaky
	}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, calls)
}
