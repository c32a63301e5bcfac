// Package notify announces newly discovered jobs on Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/model"
)

// ChannelJobDiscovered carries one message per job created by a scrape.
const ChannelJobDiscovered = "EVENT_JOB_DISCOVERED"

// Publisher is the part of *redis.Client used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// JobDiscovered is the message body.
type JobDiscovered struct {
	Type      string    `json:"type"`
	JobID     string    `json:"jobId"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	TargetID  string    `json:"targetId"`
	Company   string    `json:"company,omitempty"`
	FirstSeen time.Time `json:"firstSeen"`
}

// Redis publishes JobDiscovered events.
type Redis struct {
	rdb Publisher
	log *zap.SugaredLogger
}

// NewRedis wraps a Redis client.
func NewRedis(rdb Publisher, log *zap.SugaredLogger) *Redis {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Redis{rdb: rdb, log: log}
}

// PublishDiscovered sends one event for job.
func (r *Redis) PublishDiscovered(ctx context.Context, job model.StoredJob, target model.Target) error {
	company := target.Name
	if company == "" {
		company = target.Slug
	}
	event, err := json.Marshal(JobDiscovered{
		Type:      ChannelJobDiscovered,
		JobID:     job.ID,
		URL:       job.URL,
		Title:     job.Title,
		Source:    job.Source,
		TargetID:  job.TargetID,
		Company:   company,
		FirstSeen: job.FirstSeen,
	})
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	if err := r.rdb.Publish(ctx, ChannelJobDiscovered, event).Err(); err != nil {
		return errors.Wrapf(err, "publish %s", ChannelJobDiscovered)
	}
	r.log.Debugw("Published job", "job", job.ID, "target", target.Slug)
	return nil
}
