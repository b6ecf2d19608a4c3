package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyInto bulk-inserts rows into a table using the COPY protocol. Use it
// only for fresh tables; it does not handle conflicts.
func CopyInto(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// BulkUpsert COPYs rows into a temp table and merges them into the target
// with INSERT ... ON CONFLICT DO UPDATE. Large imports stay fast without
// giving up conflict handling on re-imports.
func BulkUpsert(ctx context.Context, pool Pool, table string, columns, conflictKeys []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 || len(conflictKeys) == 0 {
		return 0, eris.New("db: bulk upsert: columns and conflict keys required")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: bulk upsert: begin tx")
	}
	defer tx.Rollback(ctx)

	tempTable := "_tmp_upsert_" + table
	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{tempTable}.Sanitize(),
		pgx.Identifier{table}.Sanitize(),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: bulk upsert: create temp table for %s", table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tempTable}, columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: bulk upsert: COPY into temp table for %s", table)
	}

	conflictSet := make(map[string]bool, len(conflictKeys))
	for _, k := range conflictKeys {
		conflictSet[k] = true
	}
	var setClauses []string
	for _, col := range columns {
		if conflictSet[col] {
			continue
		}
		quoted := pgx.Identifier{col}.Sanitize()
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", quoted, quoted))
	}

	colList := quoteAndJoin(columns)
	mergeSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		pgx.Identifier{table}.Sanitize(),
		colList,
		colList,
		pgx.Identifier{tempTable}.Sanitize(),
		quoteAndJoin(conflictKeys),
		strings.Join(setClauses, ", "),
	)

	tag, err := tx.Exec(ctx, mergeSQL)
	if err != nil {
		return 0, eris.Wrapf(err, "db: bulk upsert: merge into %s", table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: bulk upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
