// Package catalog provides listing sources the pipeline retrieves
// candidate guitars from.
package catalog

import (
	"context"

	"github.com/fretsource/guitar-scout/internal/model"
)

// Source returns listings matching a search filter.
type Source interface {
	// Name identifies the source in logs and traces.
	Name() string

	// Search returns listings matching the filter. Order is stable for
	// identical inputs so downstream ranking is reproducible.
	Search(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error)
}
