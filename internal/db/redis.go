package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable marks a Redis URL that parsed but did not answer PING.
var ErrRedisUnavailable = errors.New("redis unavailable")

// NewRedisClient opens the client that carries EVENT_JOB_DISCOVERED
// notifications. redisURL is a redis:// or rediss:// URL (REDIS_URL).
// The connection is checked with PING before the client is returned;
// callers treat ErrRedisUnavailable as "run without job events".
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "parse REDIS_URL"),
			"expected redis://[:password@]host:port/db; unset REDIS_URL to disable job events")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Mark(
			errors.Wrapf(err, "ping redis at %s", opts.Addr),
			ErrRedisUnavailable)
	}
	return client, nil
}
