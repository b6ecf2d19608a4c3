package catalog

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fretsource/guitar-scout/internal/model"
)

// ListingSearcher is the slice of the persistence layer this package needs.
type ListingSearcher interface {
	SearchListings(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error)
}

// StoreSource serves listings previously imported into the database.
type StoreSource struct {
	store ListingSearcher
}

// NewStoreSource returns a source backed by imported listings.
func NewStoreSource(store ListingSearcher) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Name() string { return "store" }

func (s *StoreSource) Search(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	listings, err := s.store.SearchListings(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: search store")
	}
	return listings, nil
}
