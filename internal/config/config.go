// Package config loads and validates runtime configuration at startup.
// Fail-fast: an invalid value aborts the process before any work starts.
//
// Precedence (lowest to highest): defaults < config file < environment.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the ingest service.
type Config struct {
	DatabaseURL string // Postgres; wins over SQLitePath when both are set
	SQLitePath  string
	RedisURL    string // optional: enables new-job events

	Scrape     ScrapeConfig
	Checkpoint string // checkpoint file path

	StoreResetAfter    int // store requests before the connection is recreated
	StoreRetryAttempts int
	StoreRetryDelay    time.Duration

	ScrapeIntervalHours int // how often the daemon cron fires
	StaleHours          int // unseen jobs are marked inactive after this
	TTLDays             int // jobs first seen before this are deleted

	Port     string
	GRPCPort string

	LogLevel string
	LogJSON  bool
}

// ScrapeConfig bounds the fetch fan-out.
type ScrapeConfig struct {
	Concurrency  int
	PerHost      int
	Timeout      time.Duration
	HostInterval time.Duration // minimum spacing between requests to one host; 0 disables
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("sqlite.path", "")
	v.SetDefault("redis.url", "")

	v.SetDefault("scrape.concurrency", 20)
	v.SetDefault("scrape.per_host", 3)
	v.SetDefault("scrape.timeout", "10s")
	v.SetDefault("scrape.host_interval", "0s")

	v.SetDefault("checkpoint.path", ".scraper_checkpoint.json")

	v.SetDefault("store.reset_after", 5000)
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.retry_delay", "1s")

	v.SetDefault("schedule.interval_hours", 6)
	v.SetDefault("sweep.stale_hours", 48)
	v.SetDefault("sweep.ttl_days", 90)

	v.SetDefault("discovery.port", "8081")
	v.SetDefault("grpc.port", "9091")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// New returns a viper instance with defaults and environment binding.
// DATABASE_URL maps to database.url, SCRAPE_PER_HOST to scrape.per_host, etc.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the optional config file and returns a validated Config.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}
	return FromViper(v)
}

// FromViper validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL: v.GetString("database.url"),
		SQLitePath:  v.GetString("sqlite.path"),
		RedisURL:    v.GetString("redis.url"),
		Scrape: ScrapeConfig{
			Concurrency:  v.GetInt("scrape.concurrency"),
			PerHost:      v.GetInt("scrape.per_host"),
			Timeout:      seconds(v, "scrape.timeout"),
			HostInterval: seconds(v, "scrape.host_interval"),
		},
		Checkpoint:          v.GetString("checkpoint.path"),
		StoreResetAfter:     v.GetInt("store.reset_after"),
		StoreRetryAttempts:  v.GetInt("store.retry_attempts"),
		StoreRetryDelay:     seconds(v, "store.retry_delay"),
		ScrapeIntervalHours: v.GetInt("schedule.interval_hours"),
		StaleHours:          v.GetInt("sweep.stale_hours"),
		TTLDays:             v.GetInt("sweep.ttl_days"),
		Port:                v.GetString("discovery.port"),
		GRPCPort:            v.GetString("grpc.port"),
		LogLevel:            v.GetString("log.level"),
		LogJSON:             v.GetBool("log.json"),
	}

	positive := map[string]int{
		"SCRAPE_CONCURRENCY":      cfg.Scrape.Concurrency,
		"SCRAPE_PER_HOST":         cfg.Scrape.PerHost,
		"STORE_RETRY_ATTEMPTS":    cfg.StoreRetryAttempts,
		"SCHEDULE_INTERVAL_HOURS": cfg.ScrapeIntervalHours,
		"SWEEP_STALE_HOURS":       cfg.StaleHours,
		"SWEEP_TTL_DAYS":          cfg.TTLDays,
	}
	for name, val := range positive {
		if val < 1 {
			return nil, errors.Newf("%s must be a positive integer, got %d", name, val)
		}
	}
	if cfg.StoreResetAfter < 0 {
		return nil, errors.Newf("STORE_RESET_AFTER must not be negative, got %d", cfg.StoreResetAfter)
	}
	if cfg.Scrape.Timeout <= 0 {
		return nil, errors.Newf("SCRAPE_TIMEOUT must be a positive duration, got %s", cfg.Scrape.Timeout)
	}
	if cfg.Scrape.HostInterval < 0 || cfg.StoreRetryDelay < 0 {
		return nil, errors.New("SCRAPE_HOST_INTERVAL and STORE_RETRY_DELAY must not be negative")
	}
	if cfg.Checkpoint == "" {
		return nil, errors.New("CHECKPOINT_PATH must not be empty")
	}

	return cfg, nil
}

// RequireStore fails unless a backing store is configured.
func (c *Config) RequireStore() error {
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return errors.WithHint(
			errors.New("DATABASE_URL or SQLITE_PATH is required"),
			"set DATABASE_URL for Postgres or SQLITE_PATH for a local database",
		)
	}
	return nil
}

// seconds reads a duration key; bare integers ("10") are seconds.
func seconds(v *viper.Viper, key string) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return time.Duration(n) * time.Second
	}
	return v.GetDuration(key)
}
