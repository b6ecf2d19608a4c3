package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/trace"
)

// retrieve fetches candidate listings. The primary source gets one try;
// on failure the fallback (or the primary again, when no fallback is
// configured) gets one more. Both failing is not an error: the run
// continues with zero candidates and the trace says why. The second
// return reports whether the primary failed.
func (p *Pipeline) retrieve(ctx context.Context, filter model.CatalogFilter, tr *trace.Tracer) ([]model.Listing, bool) {
	tr.AddStep(fmt.Sprintf("Searching for guitars with budget $%.0f-$%.0f", filter.PriceMin, filter.PriceMax))

	listings, err := p.primary.Search(ctx, filter)
	if err == nil {
		listings = sanitize(listings)
		tr.AddToolUse("CatalogSearch", describeFilter(filter),
			fmt.Sprintf("Found %d guitars via %s", len(listings), p.primary.Name()))
		tr.AddStep(fmt.Sprintf("Retrieved %d guitars for analysis", len(listings)))
		tr.SetCandidates(len(listings))
		return listings, false
	}

	zap.L().Warn("pipeline: primary catalog search failed",
		zap.String("source", p.primary.Name()),
		zap.Error(err),
	)

	second := p.fallback
	if second == nil {
		second = p.primary
	}
	tr.AddStep(fmt.Sprintf("Primary search unavailable, retrying via %s", second.Name()))

	listings, err = second.Search(ctx, filter)
	if err != nil {
		zap.L().Error("pipeline: fallback catalog search failed",
			zap.String("source", second.Name()),
			zap.Error(err),
		)
		tr.AddStep("Both primary and fallback search failed")
		tr.SetCandidates(0)
		return nil, true
	}

	listings = sanitize(listings)
	tr.AddToolUse("CatalogSearch", describeFilter(filter),
		fmt.Sprintf("Found %d guitars via fallback %s", len(listings), second.Name()))
	tr.AddStep(fmt.Sprintf("Retrieved %d guitars for analysis", len(listings)))
	tr.SetCandidates(len(listings))
	return listings, true
}

// sanitize normalizes listings and drops invalid records while keeping
// the source's order. The input slice is left untouched; cached sources
// hand out entries shared across queries.
func sanitize(listings []model.Listing) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		l.Normalize()
		if l.Valid() {
			out = append(out, l)
		}
	}
	return out
}

func describeFilter(f model.CatalogFilter) string {
	return fmt.Sprintf("price $%.0f-$%.0f brands=%v terms=%v limit=%d",
		f.PriceMin, f.PriceMax, f.Brands, f.SearchTerms, f.MaxResults)
}
