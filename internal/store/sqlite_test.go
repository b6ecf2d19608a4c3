package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fretsource/guitar-scout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "warm vintage blues tone around $1500")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.QueryRunRunning, run.Status)

	result := &model.RecommendationResult{
		UserAnalysis: "Blues player with a mid-range budget.",
		Recommendations: []model.Recommendation{
			{Rank: 1, Title: "Fender Vintera '60s Stratocaster - Olympic White", Price: 1149, MatchScore: 0.9, Reconciled: true},
		},
		MarketInsights: "Solid availability in this range.",
	}
	trace := &model.ExplanationTrace{
		ReasoningSteps:  []model.ReasoningStep{{Step: "Analyzing user query"}},
		CandidatesFound: 5,
		Complete:        true,
	}

	require.NoError(t, s.CompleteRun(ctx, run.ID, model.QueryRunComplete, result, trace))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueryRunComplete, got.Status)
	require.NotNil(t, got.Result)
	require.Len(t, got.Result.Recommendations, 1)
	assert.Equal(t, "Fender Vintera '60s Stratocaster - Olympic White", got.Result.Recommendations[0].Title)
	require.NotNil(t, got.Trace)
	assert.Equal(t, 5, got.Trace.CandidatesFound)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteRunNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.CompleteRun(context.Background(), "does-not-exist", model.QueryRunComplete, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		_, err := s.CreateRun(ctx, q)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestUpsertAndSearchListings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	listings := []model.Listing{
		{Title: "Fender Player Stratocaster - 3-Color Sunburst", Price: 899, Condition: "Excellent", Link: "https://example.com/strat", Source: "Fender"},
		{Title: "Gibson SG Standard - Cherry Red", Price: 1899, Condition: "Excellent", Link: "https://example.com/sg", Source: "Gibson"},
		{Title: "no link so invalid", Price: 100},
	}

	n, err := s.UpsertListings(ctx, listings)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-import updates in place instead of duplicating.
	listings[0].Price = 949
	n, err = s.UpsertListings(ctx, listings[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err := s.SearchListings(ctx, model.CatalogFilter{
		PriceMin:   500,
		PriceMax:   1000,
		Brands:     []string{"Fender"},
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 949.0, found[0].Price)

	all, err := s.SearchListings(ctx, model.CatalogFilter{MaxResults: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
