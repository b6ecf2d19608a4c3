package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fretsource/guitar-scout/internal/model"
)

func TestPostgresCreateRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO query_runs`).
		WithArgs(pgxmock.AnyArg(), "looking for a metal guitar", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresFromPool(mock)
	run, err := s.CreateRun(context.Background(), "looking for a metal guitar")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.QueryRunRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRunNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE query_runs`).
		WithArgs("degraded", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	s := NewPostgresFromPool(mock)
	err = s.CompleteRun(context.Background(), "missing", model.QueryRunDegraded, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, query, status, result, trace, created_at, updated_at FROM query_runs`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "query", "status", "result", "trace", "created_at", "updated_at"}).
			AddRow("run-1", "blues guitar", "complete",
				[]byte(`{"user_analysis":"Blues player","recommendations":[]}`),
				[]byte(`{"reasoning_steps":[],"tools_used":[],"knowledge_applied":[],"candidates_found":3,"complete":true}`),
				now, now))

	s := NewPostgresFromPool(mock)
	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.QueryRunComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, "Blues player", run.Result.UserAnalysis)
	require.NotNil(t, run.Trace)
	assert.Equal(t, 3, run.Trace.CandidatesFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearchListings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT title, price, condition, image_url, link, source FROM listings`).
		WithArgs(500.0, 1200.0, "fender%", 10).
		WillReturnRows(pgxmock.NewRows([]string{"title", "price", "condition", "image_url", "link", "source"}).
			AddRow("Fender Player Stratocaster - 3-Color Sunburst", 899.0, "Excellent", "", "https://example.com/strat", "Fender"))

	s := NewPostgresFromPool(mock)
	listings, err := s.SearchListings(context.Background(), model.CatalogFilter{
		PriceMin:   500,
		PriceMax:   1200,
		Brands:     []string{"Fender"},
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 899.0, listings[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}
