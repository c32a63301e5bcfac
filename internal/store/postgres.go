package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/db"
	"jobmate/ats-ingest/internal/model"
)

const pgUpsertSuffix = `ON CONFLICT (url_hash) DO UPDATE SET
	last_seen  = EXCLUDED.last_seen,
	is_active  = TRUE,
	company_id = COALESCE(EXCLUDED.company_id, jobs.company_id),
	salary_min = COALESCE(EXCLUDED.salary_min, jobs.salary_min),
	salary_max = COALESCE(EXCLUDED.salary_max, jobs.salary_max)
RETURNING id, url_hash, url, title, ats_source, company_id, salary_min, salary_max,
	first_seen, last_seen, is_active, (xmax = 0) AS inserted`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres is the production Store. The pool lives behind a Lifecycle so
// it is recreated periodically and after transient faults.
type Postgres struct {
	conns *db.Lifecycle[*pgxpool.Pool]
	log   *zap.SugaredLogger
}

// NewPostgres returns a Postgres store; the pool is opened on first use and
// recreated every resetAfter calls (0 = never).
func NewPostgres(databaseURL string, resetAfter int, log *zap.SugaredLogger) *Postgres {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	open := func(ctx context.Context) (*pgxpool.Pool, error) {
		return db.NewPostgresPool(ctx, databaseURL, 0)
	}
	return &Postgres{
		conns: db.NewLifecycle(open, func(p *pgxpool.Pool) { p.Close() }, resetAfter, log),
		log:   log,
	}
}

// Reset implements Resetter.
func (p *Postgres) Reset() { p.conns.Invalidate() }

// Close releases the pool.
func (p *Postgres) Close() { p.conns.Close() }

func (p *Postgres) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := p.conns.Get(ctx)
	return pool, classify(err, "connect postgres", pgTransient)
}

// Migrate creates the tables when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	pool, err := p.pool(ctx)
	if err != nil {
		return err
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return classify(err, "migrate postgres", pgTransient)
		}
	}
	return nil
}

func targetQuery(b sq.StatementBuilderType, f TargetFilter) sq.SelectBuilder {
	q := b.Select(targetColumns...).
		From("companies").
		Where(sq.Eq{"verified": true}).
		Where(sq.NotEq{"api_url": nil}).
		OrderBy("slug", "id")
	if f.SourceType != "" {
		q = q.Where(sq.Eq{"ats": strings.ToLower(f.SourceType)})
	}
	if f.Slug != "" {
		q = q.Where(sq.Expr("LOWER(slug) = ?", strings.ToLower(f.Slug)))
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q
}

func (p *Postgres) ListTargets(ctx context.Context, f TargetFilter) ([]model.Target, error) {
	pool, err := p.pool(ctx)
	if err != nil {
		return nil, err
	}
	query, args, err := targetQuery(psql, f).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build target query")
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "query companies", pgTransient)
	}
	defer rows.Close()

	var targets []model.Target
	for rows.Next() {
		var t model.Target
		if err := rows.Scan(&t.ID, &t.Slug, &t.SourceType, &t.Name, &t.Endpoint, &t.Verified, &t.LastPolledAt, &t.JobCount); err != nil {
			return nil, classify(err, "scan company", pgTransient)
		}
		targets = append(targets, t)
	}
	return targets, classify(rows.Err(), "iterate companies", pgTransient)
}

func (p *Postgres) UpsertJob(ctx context.Context, rec model.JobRecord, target model.Target, seenAt time.Time) (model.StoredJob, bool, error) {
	pool, err := p.pool(ctx)
	if err != nil {
		return model.StoredJob{}, false, err
	}
	row := newJobRow(rec, target)
	seenAt = seenAt.UTC()

	query, args, err := psql.Insert("jobs").
		Columns(jobInsertColumns...).
		Values(uuid.NewString(), row.URLHash, row.URL, row.Title, row.Source, row.CompanyName, row.CompanyID,
			row.Location, row.Description, row.SalaryMin, row.SalaryMax, row.Currency,
			row.RemoteType, row.Seniority, row.Category, row.Tags, row.PostedAt, row.Raw,
			seenAt, seenAt, true).
		Suffix(pgUpsertSuffix).
		ToSql()
	if err != nil {
		return model.StoredJob{}, false, errors.Wrap(err, "build job upsert")
	}

	var (
		job      model.StoredJob
		targetID *string
		inserted bool
	)
	err = pool.QueryRow(ctx, query, args...).Scan(
		&job.ID, &job.URLHash, &job.URL, &job.Title, &job.Source, &targetID,
		&job.SalaryMin, &job.SalaryMax, &job.FirstSeen, &job.LastSeen, &job.IsActive, &inserted,
	)
	if err != nil {
		return model.StoredJob{}, false, classify(err, "upsert job "+row.URLHash[:12], pgTransient)
	}
	if targetID != nil {
		job.TargetID = *targetID
	}
	return job, inserted, nil
}

func (p *Postgres) RefreshTarget(ctx context.Context, targetID string, r model.TargetRefresh) error {
	pool, err := p.pool(ctx)
	if err != nil {
		return err
	}
	query, args, err := psql.Update("companies").
		Set("last_scraped_at", r.PolledAt.UTC()).
		Set("job_count", r.JobCount).
		Set("verified", r.Verified).
		Where(sq.Eq{"id": targetID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build company update")
	}
	_, err = pool.Exec(ctx, query, args...)
	return classify(err, "refresh company "+targetID, pgTransient)
}

func (p *Postgres) StartRun(ctx context.Context, source string, cfg map[string]any) (string, error) {
	pool, err := p.pool(ctx)
	if err != nil {
		return "", err
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "marshal run config")
	}
	id := uuid.NewString()
	query, args, err := psql.Insert("scrape_runs").
		Columns("id", "source", "status", "config", "started_at").
		Values(id, source, string(model.RunRunning), cfgJSON, time.Now().UTC()).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "build run insert")
	}
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return "", classify(err, "insert scrape run", pgTransient)
	}
	return id, nil
}

func (p *Postgres) FinishRun(ctx context.Context, runID string, totals model.Totals, status model.RunStatus) error {
	pool, err := p.pool(ctx)
	if err != nil {
		return err
	}
	query, args, err := finishRunQuery(psql, runID, totals, status, time.Now().UTC()).ToSql()
	if err != nil {
		return errors.Wrap(err, "build run update")
	}
	_, err = pool.Exec(ctx, query, args...)
	return classify(err, "finish scrape run "+runID, pgTransient)
}

func finishRunQuery(b sq.StatementBuilderType, runID string, totals model.Totals, status model.RunStatus, at any) sq.UpdateBuilder {
	return b.Update("scrape_runs").
		Set("total_found", totals.Seen).
		Set("new_found", totals.New).
		Set("errors", totals.Errors).
		Set("status", string(status)).
		Set("finished_at", at).
		Where(sq.Eq{"id": runID})
}

func (p *Postgres) MarkInactive(ctx context.Context, lastSeenBefore time.Time) (int64, error) {
	return p.execCount(ctx, "mark inactive", psql.Update("jobs").
		Set("is_active", false).
		Where(sq.Eq{"is_active": true}).
		Where(sq.Lt{"last_seen": lastSeenBefore.UTC()}))
}

func (p *Postgres) DeleteFirstSeenBefore(ctx context.Context, firstSeenBefore time.Time) (int64, error) {
	return p.execCount(ctx, "delete old jobs", psql.Delete("jobs").
		Where(sq.Lt{"first_seen": firstSeenBefore.UTC()}))
}

func (p *Postgres) execCount(ctx context.Context, what string, b sq.Sqlizer) (int64, error) {
	pool, err := p.pool(ctx)
	if err != nil {
		return 0, err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrapf(err, "build %s", what)
	}
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, classify(err, what, pgTransient)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) UpsertTarget(ctx context.Context, t model.Target) (model.Target, error) {
	pool, err := p.pool(ctx)
	if err != nil {
		return model.Target{}, err
	}
	query, args, err := upsertTargetQuery(psql, t).ToSql()
	if err != nil {
		return model.Target{}, errors.Wrap(err, "build company upsert")
	}
	var id string
	if err := pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Target{}, errors.Newf("company %s/%s not written", t.SourceType, t.Slug)
		}
		return model.Target{}, classify(err, "upsert company", pgTransient)
	}
	t.ID = id
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	t.SourceType = strings.ToLower(strings.TrimSpace(t.SourceType))
	return t, nil
}

// upsertTargetQuery keys companies by (ats, slug); empty name and endpoint
// never erase known values.
func upsertTargetQuery(b sq.StatementBuilderType, t model.Target) sq.InsertBuilder {
	id := t.ID
	if id == "" {
		id = uuid.NewString()
	}
	return b.Insert("companies").
		Columns("id", "slug", "ats", "name", "api_url", "verified").
		Values(id, strings.ToLower(strings.TrimSpace(t.Slug)), strings.ToLower(strings.TrimSpace(t.SourceType)),
			optional(t.Name), optional(t.Endpoint), t.Verified).
		Suffix(`ON CONFLICT (ats, slug) DO UPDATE SET
	name     = COALESCE(EXCLUDED.name, companies.name),
	api_url  = COALESCE(EXCLUDED.api_url, companies.api_url),
	verified = EXCLUDED.verified
RETURNING id`)
}
