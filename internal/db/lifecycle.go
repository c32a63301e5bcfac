// Package db provides connection helpers for the backing stores.
package db

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Lifecycle owns one store connection (pool, *sql.DB, …) and recreates it
// after resetAfter uses or after Invalidate. resetAfter == 0 disables the
// periodic reset. Safe for concurrent use.
type Lifecycle[T any] struct {
	open       func(ctx context.Context) (T, error)
	close      func(T)
	resetAfter int
	log        *zap.SugaredLogger

	mu    sync.Mutex
	conn  T
	live  bool
	uses  int
	opens int
}

// NewLifecycle returns a Lifecycle that opens lazily on first Get.
func NewLifecycle[T any](open func(context.Context) (T, error), close func(T), resetAfter int, log *zap.SugaredLogger) *Lifecycle[T] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Lifecycle[T]{open: open, close: close, resetAfter: resetAfter, log: log}
}

// Get returns the current connection, opening a new one when none is live or
// the use budget is spent.
func (l *Lifecycle[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.live && l.resetAfter > 0 && l.uses >= l.resetAfter {
		l.log.Infow("Resetting store connection", "uses", l.uses)
		l.release()
	}

	if !l.live {
		conn, err := l.open(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		l.conn = conn
		l.live = true
		l.uses = 0
		l.opens++
	}

	l.uses++
	return l.conn, nil
}

// Invalidate drops the current connection; the next Get opens a fresh one.
func (l *Lifecycle[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live {
		l.log.Infow("Invalidating store connection", "uses", l.uses)
		l.release()
	}
}

// Close releases the current connection, if any.
func (l *Lifecycle[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live {
		l.release()
	}
}

// Opens reports how many connections have been opened so far.
func (l *Lifecycle[T]) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

func (l *Lifecycle[T]) release() {
	if l.close != nil {
		l.close(l.conn)
	}
	var zero T
	l.conn = zero
	l.live = false
	l.uses = 0
}
