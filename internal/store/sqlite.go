package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fretsource/guitar-scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS query_runs (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     TEXT,
	trace      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS listings (
	link        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	price       REAL NOT NULL,
	condition   TEXT NOT NULL DEFAULT 'Unknown',
	image_url   TEXT,
	source      TEXT NOT NULL DEFAULT 'Unknown',
	imported_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_query_runs_status ON query_runs(status);
CREATE INDEX IF NOT EXISTS idx_query_runs_created_at ON query_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, query string) (*model.QueryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_runs (id, query, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, query, string(model.QueryRunRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.QueryRun{
		ID:        id,
		Query:     query,
		Status:    model.QueryRunRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.QueryRunStatus, result *model.RecommendationResult, trace *model.ExplanationTrace) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal trace")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE query_runs SET status = ?, result = ?, trace = ?, updated_at = ? WHERE id = ?`,
		string(status), string(resultJSON), string(traceJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.QueryRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, status, result, trace, created_at, updated_at FROM query_runs WHERE id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.QueryRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, status, result, trace, created_at, updated_at
		 FROM query_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.QueryRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings (link, title, price, condition, image_url, source, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			condition = excluded.condition,
			image_url = excluded.image_url,
			source = excluded.source,
			imported_at = excluded.imported_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
	for _, l := range listings {
		l.Normalize()
		// The link is the row identity; a listing without one cannot be
		// deduplicated on re-import.
		if !l.Valid() || l.Link == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, l.Link, l.Title, l.Price, l.Condition, l.ImageURL, l.Source, now); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert listing %s", l.Link)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return count, nil
}

func (s *SQLiteStore) SearchListings(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	query, args := buildListingQuery(filter, "?")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(&l.Title, &l.Price, &l.Condition, &l.ImageURL, &l.Link, &l.Source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: search listings")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.QueryRun, error) {
	var run model.QueryRun
	var status string
	var resultJSON, traceJSON sql.NullString

	if err := row.Scan(&run.ID, &run.Query, &status, &resultJSON, &traceJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = model.QueryRunStatus(status)

	if resultJSON.Valid && resultJSON.String != "" && resultJSON.String != "null" {
		if err := json.Unmarshal([]byte(resultJSON.String), &run.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal result")
		}
	}
	if traceJSON.Valid && traceJSON.String != "" && traceJSON.String != "null" {
		if err := json.Unmarshal([]byte(traceJSON.String), &run.Trace); err != nil {
			return nil, eris.Wrap(err, "unmarshal trace")
		}
	}
	return &run, nil
}

// buildListingQuery assembles the listings search for either placeholder
// style ("?" for sqlite, "$" for postgres). Brand filters match title
// prefixes because imported listings carry no separate brand column.
func buildListingQuery(filter model.CatalogFilter, placeholder string) (string, []any) {
	var sb strings.Builder
	var args []any

	next := func() string {
		if placeholder == "?" {
			return "?"
		}
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(`SELECT title, price, condition, image_url, link, source FROM listings WHERE 1=1`)

	if filter.PriceMin > 0 {
		args = append(args, filter.PriceMin)
		sb.WriteString(" AND price >= " + next())
	}
	if filter.PriceMax > 0 {
		args = append(args, filter.PriceMax)
		sb.WriteString(" AND price <= " + next())
	}
	if len(filter.Brands) > 0 {
		var clauses []string
		for _, b := range filter.Brands {
			args = append(args, strings.ToLower(b)+"%")
			clauses = append(clauses, "lower(title) LIKE "+next())
		}
		sb.WriteString(" AND (" + strings.Join(clauses, " OR ") + ")")
	}

	limit := filter.MaxResults
	if limit <= 0 {
		limit = 25
	}
	args = append(args, limit)
	sb.WriteString(" ORDER BY title LIMIT " + next())

	return sb.String(), args
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
