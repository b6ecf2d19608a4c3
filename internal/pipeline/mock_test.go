package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fretsource/guitar-scout/internal/config"
	"github.com/fretsource/guitar-scout/internal/knowledge"
	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/pkg/anthropic"
)

// mockLLM is a testify mock for the Anthropic client.
type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:         "msg_test",
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
}

// stubSource is a canned catalog source.
type stubSource struct {
	name     string
	listings []model.Listing
	err      error
	calls    int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Listing, len(s.listings))
	copy(out, s.listings)
	return out, nil
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		BudgetFloor:            100,
		DefaultPriceMin:        300,
		DefaultPriceMax:        2000,
		BeginnerPriceCap:       800,
		ProfessionalPriceFloor: 1000,
		MaxResults:             25,
		CandidateLimit:         15,
		OverlapThreshold:       0.6,
		CustomShopKeywords: []string{
			"custom shop", "ash body", "pau ferro", "quartersawn",
			"hipshot", "graph tech", "gotoh", "seymour duncan",
		},
		PremiumBrands: []string{"fender"},
	}
}

func testAIConfig() config.AnthropicConfig {
	return config.AnthropicConfig{
		FastModel:     "fast-model",
		FullModel:     "full-model",
		FastMaxTokens: 800,
		FullMaxTokens: 2000,
		Temperature:   0.3,
	}
}

func newTestPipeline(llm anthropic.Client, primary, fallback *stubSource) *Pipeline {
	kb, err := knowledge.Load()
	if err != nil {
		panic(err)
	}
	opts := Options{
		LLM:       llm,
		Knowledge: kb,
		Primary:   primary,
		AI:        testAIConfig(),
		Pipeline:  testPipelineConfig(),
	}
	if fallback != nil {
		opts.Fallback = fallback
	}
	return New(opts)
}

func fixtureBatch() []model.Listing {
	return []model.Listing{
		{Title: "Fender Player Stratocaster - 3-Color Sunburst", Price: 899, Condition: "Excellent", Link: "https://example.com/strat", ImageURL: "https://img/strat.jpg", Source: "Fender"},
		{Title: "Fender Vintera '60s Stratocaster - Olympic White", Price: 1149, Condition: "Very Good", Link: "https://example.com/vintera", Source: "Fender"},
		{Title: "Gibson SG Standard - Cherry Red", Price: 1899, Condition: "Excellent", Link: "https://example.com/sg", Source: "Gibson"},
	}
}
