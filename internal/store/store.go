// Package store persists query runs and imported catalog listings.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fretsource/guitar-scout/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the recommendation pipeline.
type Store interface {
	// Query runs
	CreateRun(ctx context.Context, query string) (*model.QueryRun, error)
	CompleteRun(ctx context.Context, runID string, status model.QueryRunStatus, result *model.RecommendationResult, trace *model.ExplanationTrace) error
	GetRun(ctx context.Context, runID string) (*model.QueryRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.QueryRun, error)

	// Imported listings
	UpsertListings(ctx context.Context, listings []model.Listing) (int, error)
	SearchListings(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
