package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/store"
	"github.com/fretsource/guitar-scout/pkg/anthropic"
)

// fakeRunStore records run persistence calls in memory.
type fakeRunStore struct {
	created   []string
	completed map[string]model.QueryRunStatus
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{completed: make(map[string]model.QueryRunStatus)}
}

func (f *fakeRunStore) CreateRun(ctx context.Context, query string) (*model.QueryRun, error) {
	id := "run-" + query
	f.created = append(f.created, id)
	return &model.QueryRun{ID: id, Query: query, Status: model.QueryRunRunning}, nil
}

func (f *fakeRunStore) CompleteRun(ctx context.Context, runID string, status model.QueryRunStatus, result *model.RecommendationResult, trace *model.ExplanationTrace) error {
	f.completed[runID] = status
	return nil
}

func (f *fakeRunStore) GetRun(ctx context.Context, runID string) (*model.QueryRun, error) {
	return nil, store.ErrNotFound
}

func (f *fakeRunStore) ListRuns(ctx context.Context, limit int) ([]model.QueryRun, error) {
	return nil, nil
}

func (f *fakeRunStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	return 0, nil
}

func (f *fakeRunStore) SearchListings(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	return nil, nil
}

func (f *fakeRunStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeRunStore) Close() error                      { return nil }

var _ store.Store = (*fakeRunStore)(nil)

const happyRecommendation = `{
  "user_analysis": "Intermediate blues player, Budget: $1,200 - $1,800",
  "recommendations": [
    {
      "rank": 1,
      "guitar_title": "Fender Vintera '60s Stratocaster - Olympic White",
      "price": 1149,
      "match_score": 0.92,
      "why_recommended": "Vintage-voiced single coils nail the blues tone in this budget.",
      "pros": ["classic tone", "great value"],
      "cons": ["vintage radius not for everyone"],
      "best_for": "Warm blues leads"
    }
  ],
  "market_insights": "Strong mid-range supply right now.",
  "alternative_suggestions": "A Player Stratocaster if the budget tightens."
}`

func happyLLM() *mockLLM {
	llm := &mockLLM{}
	llm.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "fast-model"
	})).Return(textResponse(pointBudgetExtraction), nil)
	llm.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "full-model"
	})).Return(textResponse(happyRecommendation), nil)
	return llm
}

func TestRunEndToEnd(t *testing.T) {
	llm := happyLLM()
	primary := &stubSource{name: "fixture", listings: fixtureBatch()}
	p := newTestPipeline(llm, primary, nil)

	run := p.Run(context.Background(), "warm blues tone around $1500")

	assert.Equal(t, model.QueryRunComplete, run.Status)
	require.NotNil(t, run.Result)
	require.Len(t, run.Result.Recommendations, 1)

	rec := run.Result.Recommendations[0]
	assert.True(t, rec.Reconciled)
	assert.Equal(t, "Fender Vintera '60s Stratocaster - Olympic White", rec.Title)
	assert.Equal(t, 1149.0, rec.Price)

	require.NotNil(t, run.Trace)
	assert.True(t, run.Trace.Complete)
	assert.Equal(t, 3, run.Trace.CandidatesFound)
	assert.NotEmpty(t, run.Trace.ReasoningSteps)
	assert.NotEmpty(t, run.Trace.ToolsUsed)
	require.NotNil(t, run.Trace.Requirements)
	assert.Equal(t, 1200.0, run.Trace.Requirements.BudgetMin)
	assert.Equal(t, 1800.0, run.Trace.Requirements.BudgetMax)
	require.NotNil(t, run.Trace.SearchFilter)
}

func TestRunIsDeterministicWithFixedCollaborators(t *testing.T) {
	llm := happyLLM()
	primary := &stubSource{name: "fixture", listings: fixtureBatch()}
	p := newTestPipeline(llm, primary, nil)

	first := p.Run(context.Background(), "warm blues tone around $1500")
	second := p.Run(context.Background(), "warm blues tone around $1500")

	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Status, second.Status)
}

func TestRunDegradedWhenRetrievalFails(t *testing.T) {
	llm := &mockLLM{}
	llm.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "fast-model"
	})).Return(textResponse(pointBudgetExtraction), nil)

	primary := &stubSource{name: "reverb", err: eris.New("down")}
	fallback := &stubSource{name: "store", err: eris.New("also down")}
	p := newTestPipeline(llm, primary, fallback)

	run := p.Run(context.Background(), "blues guitar around $1500")

	// No listings is an answer, not an error.
	assert.Equal(t, model.QueryRunDegraded, run.Status)
	require.NotNil(t, run.Result)
	assert.Empty(t, run.Result.Recommendations)
	assert.NotEmpty(t, run.Result.MarketInsights)

	// The ranking model is never consulted with zero candidates.
	for _, call := range llm.Calls {
		req := call.Arguments.Get(1).(anthropic.MessageRequest)
		assert.NotEqual(t, "full-model", req.Model)
	}
}

func TestRunPersistsOutcome(t *testing.T) {
	llm := happyLLM()
	primary := &stubSource{name: "fixture", listings: fixtureBatch()}
	runs := newFakeRunStore()

	p := newTestPipeline(llm, primary, nil)
	p.runs = runs

	run := p.Run(context.Background(), "warm blues tone around $1500")

	require.Len(t, runs.created, 1)
	assert.Equal(t, run.ID, runs.created[0])
	assert.Equal(t, model.QueryRunComplete, runs.completed[run.ID])
}

func TestRunSurvivesWithoutStore(t *testing.T) {
	llm := happyLLM()
	primary := &stubSource{name: "fixture", listings: fixtureBatch()}
	p := newTestPipeline(llm, primary, nil)

	run := p.Run(context.Background(), "warm blues tone around $1500")

	assert.Empty(t, run.ID)
	assert.Equal(t, model.QueryRunComplete, run.Status)
}
