package db_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/ats-ingest/internal/db"
)

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := db.NewRedisClient(context.Background(), "ftp://localhost:6379")
	require.Error(t, err)
	assert.False(t, errors.Is(err, db.ErrRedisUnavailable))
	assert.Contains(t, strings.Join(errors.GetAllHints(err), "\n"), "unset REDIS_URL")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err = db.NewRedisClient(ctx, "redis://"+addr+"/0")
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrRedisUnavailable)
	assert.Contains(t, err.Error(), addr)
}
