package store

// postgresSchema mirrors the production tables. IDs are text so both
// backends share the Go-side uuid generation.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id              TEXT PRIMARY KEY,
		slug            TEXT NOT NULL,
		ats             TEXT NOT NULL,
		name            TEXT,
		api_url         TEXT,
		verified        BOOLEAN NOT NULL DEFAULT FALSE,
		last_scraped_at TIMESTAMPTZ,
		job_count       INTEGER NOT NULL DEFAULT 0,
		UNIQUE (ats, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		url_hash        TEXT NOT NULL UNIQUE,
		url             TEXT NOT NULL,
		title           TEXT NOT NULL,
		ats_source      TEXT NOT NULL,
		company_name    TEXT,
		company_id      TEXT,
		location        TEXT,
		description     TEXT,
		salary_min      INTEGER,
		salary_max      INTEGER,
		salary_currency TEXT,
		remote_type     TEXT CHECK (remote_type IN ('remote', 'onsite', 'hybrid', 'unknown')),
		seniority       TEXT,
		category        TEXT,
		tags            TEXT[],
		posted_at       TIMESTAMPTZ,
		raw_data        JSONB,
		first_seen      TIMESTAMPTZ NOT NULL,
		last_seen       TIMESTAMPTZ NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_last_seen_idx ON jobs (last_seen) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS scrape_runs (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		status      TEXT NOT NULL,
		config      JSONB,
		total_found INTEGER NOT NULL DEFAULT 0,
		new_found   INTEGER NOT NULL DEFAULT 0,
		errors      INTEGER NOT NULL DEFAULT 0,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	)`,
}

// sqliteSchema stores timestamps as unix milliseconds and tags as JSON text.
var sqliteSchema = []string{
	`PRAGMA busy_timeout = 5000`,
	`PRAGMA journal_mode = WAL`,
	`CREATE TABLE IF NOT EXISTS companies (
		id              TEXT PRIMARY KEY,
		slug            TEXT NOT NULL,
		ats             TEXT NOT NULL,
		name            TEXT,
		api_url         TEXT,
		verified        INTEGER NOT NULL DEFAULT 0,
		last_scraped_at INTEGER,
		job_count       INTEGER NOT NULL DEFAULT 0,
		UNIQUE (ats, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		url_hash        TEXT NOT NULL UNIQUE,
		url             TEXT NOT NULL,
		title           TEXT NOT NULL,
		ats_source      TEXT NOT NULL,
		company_name    TEXT,
		company_id      TEXT,
		location        TEXT,
		description     TEXT,
		salary_min      INTEGER,
		salary_max      INTEGER,
		salary_currency TEXT,
		remote_type     TEXT,
		seniority       TEXT,
		category        TEXT,
		tags            TEXT,
		posted_at       INTEGER,
		raw_data        TEXT,
		first_seen      INTEGER NOT NULL,
		last_seen       INTEGER NOT NULL,
		is_active       INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS scrape_runs (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		status      TEXT NOT NULL,
		config      TEXT,
		total_found INTEGER NOT NULL DEFAULT 0,
		new_found   INTEGER NOT NULL DEFAULT 0,
		errors      INTEGER NOT NULL DEFAULT 0,
		started_at  INTEGER NOT NULL,
		finished_at INTEGER
	)`,
}

var jobInsertColumns = []string{
	"id", "url_hash", "url", "title", "ats_source", "company_name", "company_id",
	"location", "description", "salary_min", "salary_max", "salary_currency",
	"remote_type", "seniority", "category", "tags", "posted_at", "raw_data",
	"first_seen", "last_seen", "is_active",
}

var jobReturnColumns = []string{
	"id", "url_hash", "url", "title", "ats_source", "company_id",
	"salary_min", "salary_max", "first_seen", "last_seen", "is_active",
}

var targetColumns = []string{
	"id", "slug", "ats", "COALESCE(name, '')", "api_url", "verified", "last_scraped_at", "job_count",
}
