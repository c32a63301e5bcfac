package store

import (
	"context"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/ats-ingest/internal/model"
)

func TestPgTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"reset by peer", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"refused", errors.Wrap(syscall.ECONNREFUSED, "dial"), true},
		{"broken pipe", syscall.EPIPE, true},
		{"plain", errors.New("syntax error at or near"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pgTransient(tc.err))
		})
	}
}

func TestClassify_CancelledContextIsNotTransient(t *testing.T) {
	err := classify(errors.Wrap(context.Canceled, "read"), "upsert", func(error) bool { return true })
	assert.False(t, IsTransient(err))
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Nil(t, classify(nil, "noop", pgTransient))
}

func TestSQLite_ConnectionFaultIsMarkedAndRetried(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`UPDATE companies SET last_scraped_at`).
		WillReturnError(&net.OpError{Op: "write", Net: "tcp", Err: syscall.ECONNRESET})
	mock.ExpectExec(`UPDATE companies SET last_scraped_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inner := newSQLiteWith(conn)
	r := NewRetrying(inner, 3, time.Millisecond, nil).
		WithSleep(func(context.Context, time.Duration) error { return nil })

	err = r.RefreshTarget(context.Background(), "t1", model.TargetRefresh{PolledAt: time.Now(), JobCount: 2, Verified: true})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.conns.Opens(), "the handle is reopened after the fault")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_PermanentFaultPropagates(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`UPDATE scrape_runs SET total_found`).
		WillReturnError(errors.New("no such table: scrape_runs"))

	r := NewRetrying(newSQLiteWith(conn), 3, time.Millisecond, nil)
	err = r.FinishRun(context.Background(), "run-1", model.Totals{Seen: 1}, model.RunCompleted)
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
