package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/ats-ingest/internal/model"
	"jobmate/ats-ingest/internal/notify"
)

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestPublishDiscovered(t *testing.T) {
	rdb := &fakeRedis{}
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := model.StoredJob{ID: "j1", URL: "https://example.com/j/1", Title: "SRE", Source: "lever", TargetID: "t1", FirstSeen: seen}

	err := notify.NewRedis(rdb, nil).PublishDiscovered(context.Background(), job, model.Target{ID: "t1", Slug: "acme"})
	require.NoError(t, err)

	assert.Equal(t, notify.ChannelJobDiscovered, rdb.channel)
	var ev notify.JobDiscovered
	require.NoError(t, json.Unmarshal(rdb.payload, &ev))
	assert.Equal(t, "EVENT_JOB_DISCOVERED", ev.Type)
	assert.Equal(t, "j1", ev.JobID)
	assert.Equal(t, "acme", ev.Company)
	assert.Equal(t, seen, ev.FirstSeen)
}

func TestPublishDiscovered_Error(t *testing.T) {
	rdb := &fakeRedis{err: errors.New("connection refused")}
	err := notify.NewRedis(rdb, nil).PublishDiscovered(context.Background(), model.StoredJob{ID: "j1"}, model.Target{Name: "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENT_JOB_DISCOVERED")
}
