package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fretsource/guitar-scout/internal/db"
	"github.com/fretsource/guitar-scout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO query_runs (id, query, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_run": `UPDATE query_runs SET status = $1, result = $2, trace = $3, updated_at = $4 WHERE id = $5`,
	"get_run":      `SELECT id, query, status, result, trace, created_at, updated_at FROM query_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS query_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	query      TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	trace      JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
	link        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	condition   TEXT NOT NULL DEFAULT 'Unknown',
	image_url   TEXT,
	source      TEXT NOT NULL DEFAULT 'Unknown',
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_query_runs_status ON query_runs(status);
CREATE INDEX IF NOT EXISTS idx_query_runs_created_at ON query_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, query string) (*model.QueryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO query_runs (id, query, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, query, string(model.QueryRunRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.QueryRun{
		ID:        id,
		Query:     query,
		Status:    model.QueryRunRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.QueryRunStatus, result *model.RecommendationResult, trace *model.ExplanationTrace) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal trace")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE query_runs SET status = $1, result = $2, trace = $3, updated_at = $4 WHERE id = $5`,
		string(status), resultJSON, traceJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.QueryRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, query, status, result, trace, created_at, updated_at FROM query_runs WHERE id = $1`,
		runID,
	)
	run, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.QueryRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, query, status, result, trace, created_at, updated_at
		 FROM query_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.QueryRun
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	cols := []string{"link", "title", "price", "condition", "image_url", "source", "imported_at"}
	now := time.Now().UTC()

	rows := make([][]any, 0, len(listings))
	for _, l := range listings {
		l.Normalize()
		if !l.Valid() || l.Link == "" {
			continue
		}
		rows = append(rows, []any{l.Link, l.Title, l.Price, l.Condition, l.ImageURL, l.Source, now})
	}

	n, err := db.BulkUpsert(ctx, s.pool, "listings", cols, []string{"link"}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert listings")
	}
	return int(n), nil
}

func (s *PostgresStore) SearchListings(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	query, args := buildListingQuery(filter, "$")

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(&l.Title, &l.Price, &l.Condition, &l.ImageURL, &l.Link, &l.Source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: search listings")
}

func scanPgRun(row pgx.Row) (*model.QueryRun, error) {
	var run model.QueryRun
	var status string
	var resultJSON, traceJSON []byte

	if err := row.Scan(&run.ID, &run.Query, &status, &resultJSON, &traceJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = model.QueryRunStatus(status)

	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal result")
		}
	}
	if len(traceJSON) > 0 && string(traceJSON) != "null" {
		if err := json.Unmarshal(traceJSON, &run.Trace); err != nil {
			return nil, eris.Wrap(err, "unmarshal trace")
		}
	}
	return &run, nil
}
