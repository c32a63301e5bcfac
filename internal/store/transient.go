package store

import (
	"context"
	"database/sql/driver"
	"io"
	"net"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var connErrnos = []syscall.Errno{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.EPIPE,
}

// classify wraps err with msg and marks it transient when isTransient says so.
// Cancelled or expired contexts are never transient.
func classify(err error, msg string, isTransient func(error) bool) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrap(err, msg)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrapped
	}
	if isTransient(err) {
		return MarkTransient(wrapped)
	}
	return wrapped
}

// connectionFault matches socket-level failures common to every backend.
func connectionFault(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	for _, errno := range connErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// pgTransient adds Postgres connection exceptions (SQLSTATE class 08) and
// administrator shutdowns (57P01..57P03).
func pgTransient(err error) bool {
	if connectionFault(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return true
		}
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

// sqliteTransient adds busy/locked database errors and bad pooled connections.
func sqliteTransient(err error) bool {
	if connectionFault(err) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
