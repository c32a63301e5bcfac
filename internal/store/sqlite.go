package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"jobmate/ats-ingest/internal/db"
	"jobmate/ats-ingest/internal/model"
)

var qsql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLite is the single-file Store used for local runs.
type SQLite struct {
	conns *db.Lifecycle[*sql.DB]
	log   *zap.SugaredLogger
}

// NewSQLite returns a store backed by the database file at path. The schema
// is created on every (re)open.
func NewSQLite(path string, resetAfter int, log *zap.SugaredLogger) *SQLite {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SQLite{
		conns: db.NewLifecycle(func(ctx context.Context) (*sql.DB, error) {
			return openSQLite(ctx, path)
		}, func(conn *sql.DB) { _ = conn.Close() }, resetAfter, log),
		log: log,
	}
}

// newSQLiteWith wraps an already opened handle; tests use it with sqlmock.
func newSQLiteWith(conn *sql.DB) *SQLite {
	log := zap.NewNop().Sugar()
	return &SQLite{
		conns: db.NewLifecycle(func(context.Context) (*sql.DB, error) { return conn, nil }, nil, 0, log),
		log:   log,
	}
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	// One writer keeps busy_timeout effective and transactions serialised.
	conn.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "create sqlite schema")
		}
	}
	return conn, nil
}

// Reset implements Resetter.
func (s *SQLite) Reset() { s.conns.Invalidate() }

// Close releases the database handle.
func (s *SQLite) Close() { s.conns.Close() }

func (s *SQLite) handle(ctx context.Context) (*sql.DB, error) {
	conn, err := s.conns.Get(ctx)
	return conn, classify(err, "open sqlite", sqliteTransient)
}

func (s *SQLite) ListTargets(ctx context.Context, f TargetFilter) ([]model.Target, error) {
	conn, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	query, args, err := targetQuery(qsql, f).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build target query")
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "query companies", sqliteTransient)
	}
	defer rows.Close()

	var targets []model.Target
	for rows.Next() {
		var (
			t        model.Target
			polledMs sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Slug, &t.SourceType, &t.Name, &t.Endpoint, &t.Verified, &polledMs, &t.JobCount); err != nil {
			return nil, classify(err, "scan company", sqliteTransient)
		}
		t.LastPolledAt = fromMillis(polledMs)
		targets = append(targets, t)
	}
	return targets, classify(rows.Err(), "iterate companies", sqliteTransient)
}

func (s *SQLite) UpsertJob(ctx context.Context, rec model.JobRecord, target model.Target, seenAt time.Time) (model.StoredJob, bool, error) {
	conn, err := s.handle(ctx)
	if err != nil {
		return model.StoredJob{}, false, err
	}
	row := newJobRow(rec, target)
	seenMs := seenAt.UnixMilli()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return model.StoredJob{}, false, classify(err, "begin upsert", sqliteTransient)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM jobs WHERE url_hash = ?`, row.URLHash).Scan(&existingID)
	isNew := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isNew {
		return model.StoredJob{}, false, classify(err, "lookup job", sqliteTransient)
	}

	var stmt sq.Sqlizer
	if isNew {
		var tags, postedMs any
		if len(row.Tags) > 0 {
			b, _ := json.Marshal(row.Tags)
			tags = string(b)
		}
		if row.PostedAt != nil {
			postedMs = row.PostedAt.UnixMilli()
		}
		var raw any
		if row.Raw != nil {
			raw = string(row.Raw)
		}
		stmt = qsql.Insert("jobs").
			Columns(jobInsertColumns...).
			Values(uuid.NewString(), row.URLHash, row.URL, row.Title, row.Source, row.CompanyName, row.CompanyID,
				row.Location, row.Description, row.SalaryMin, row.SalaryMax, row.Currency,
				row.RemoteType, row.Seniority, row.Category, tags, postedMs, raw,
				seenMs, seenMs, true)
	} else {
		stmt = qsql.Update("jobs").
			Set("last_seen", seenMs).
			Set("is_active", true).
			Set("company_id", sq.Expr("COALESCE(?, company_id)", row.CompanyID)).
			Set("salary_min", sq.Expr("COALESCE(?, salary_min)", row.SalaryMin)).
			Set("salary_max", sq.Expr("COALESCE(?, salary_max)", row.SalaryMax)).
			Where(sq.Eq{"id": existingID})
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return model.StoredJob{}, false, errors.Wrap(err, "build job write")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return model.StoredJob{}, false, classify(err, "write job "+row.URLHash[:12], sqliteTransient)
	}

	job, err := scanStoredJob(tx.QueryRowContext(ctx,
		`SELECT `+strings.Join(jobReturnColumns, ", ")+` FROM jobs WHERE url_hash = ?`, row.URLHash))
	if err != nil {
		return model.StoredJob{}, false, classify(err, "read back job", sqliteTransient)
	}
	if err := tx.Commit(); err != nil {
		return model.StoredJob{}, false, classify(err, "commit upsert", sqliteTransient)
	}
	return job, isNew, nil
}

func scanStoredJob(row *sql.Row) (model.StoredJob, error) {
	var (
		job                  model.StoredJob
		targetID             sql.NullString
		salaryMin, salaryMax sql.NullInt64
		firstMs, lastMs      int64
	)
	if err := row.Scan(&job.ID, &job.URLHash, &job.URL, &job.Title, &job.Source, &targetID,
		&salaryMin, &salaryMax, &firstMs, &lastMs, &job.IsActive); err != nil {
		return model.StoredJob{}, err
	}
	job.TargetID = targetID.String
	job.SalaryMin = intPtr(salaryMin)
	job.SalaryMax = intPtr(salaryMax)
	job.FirstSeen = time.UnixMilli(firstMs).UTC()
	job.LastSeen = time.UnixMilli(lastMs).UTC()
	return job, nil
}

func (s *SQLite) RefreshTarget(ctx context.Context, targetID string, r model.TargetRefresh) error {
	return s.exec(ctx, "refresh company "+targetID, qsql.Update("companies").
		Set("last_scraped_at", r.PolledAt.UnixMilli()).
		Set("job_count", r.JobCount).
		Set("verified", r.Verified).
		Where(sq.Eq{"id": targetID}))
}

func (s *SQLite) StartRun(ctx context.Context, source string, cfg map[string]any) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "marshal run config")
	}
	id := uuid.NewString()
	err = s.exec(ctx, "insert scrape run", qsql.Insert("scrape_runs").
		Columns("id", "source", "status", "config", "started_at").
		Values(id, source, string(model.RunRunning), string(cfgJSON), time.Now().UnixMilli()))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLite) FinishRun(ctx context.Context, runID string, totals model.Totals, status model.RunStatus) error {
	return s.exec(ctx, "finish scrape run "+runID,
		finishRunQuery(qsql, runID, totals, status, time.Now().UnixMilli()))
}

func (s *SQLite) MarkInactive(ctx context.Context, lastSeenBefore time.Time) (int64, error) {
	return s.execCount(ctx, "mark inactive", qsql.Update("jobs").
		Set("is_active", false).
		Where(sq.Eq{"is_active": true}).
		Where(sq.Lt{"last_seen": lastSeenBefore.UnixMilli()}))
}

func (s *SQLite) DeleteFirstSeenBefore(ctx context.Context, firstSeenBefore time.Time) (int64, error) {
	return s.execCount(ctx, "delete old jobs", qsql.Delete("jobs").
		Where(sq.Lt{"first_seen": firstSeenBefore.UnixMilli()}))
}

func (s *SQLite) UpsertTarget(ctx context.Context, t model.Target) (model.Target, error) {
	conn, err := s.handle(ctx)
	if err != nil {
		return model.Target{}, err
	}
	query, args, err := upsertTargetQuery(qsql, t).ToSql()
	if err != nil {
		return model.Target{}, errors.Wrap(err, "build company upsert")
	}
	var id string
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return model.Target{}, classify(err, "upsert company", sqliteTransient)
	}
	t.ID = id
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	t.SourceType = strings.ToLower(strings.TrimSpace(t.SourceType))
	return t, nil
}

func (s *SQLite) exec(ctx context.Context, what string, b sq.Sqlizer) error {
	_, err := s.execCount(ctx, what, b)
	return err
}

func (s *SQLite) execCount(ctx context.Context, what string, b sq.Sqlizer) (int64, error) {
	conn, err := s.handle(ctx)
	if err != nil {
		return 0, err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrapf(err, "build %s", what)
	}
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err, what, sqliteTransient)
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "rows affected")
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
