package pipeline

import (
	"fmt"
	"strings"

	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/trace"
)

// planStrategy derives the catalog filter from the requirement spec.
// Deterministic: no model calls, same spec always yields the same filter.
func (p *Pipeline) planStrategy(spec model.RequirementSpec, tr *trace.Tracer) model.CatalogFilter {
	tr.AddStep("Determining search strategy from user analysis")

	filter := model.CatalogFilter{
		PriceMin:   spec.BudgetMin,
		PriceMax:   spec.BudgetMax,
		MaxResults: p.cfg.MaxResults,
	}
	if filter.PriceMin <= 0 {
		filter.PriceMin = p.cfg.DefaultPriceMin
	}
	if filter.PriceMax <= 0 {
		filter.PriceMax = p.cfg.DefaultPriceMax
	}

	switch {
	case p.wantsCustomShopQuality(spec.RequiredFeatures):
		filter.Brands = append([]string(nil), p.cfg.PremiumBrands...)
		tr.AddStep("Detected custom shop quality request - prioritizing high-end premium-tier guitars")

	case spec.ArtistReference != "":
		if _, info, ok := p.kb.LookupArtist(spec.ArtistReference); ok {
			filter.Brands = topN(info.Brands, 3)
			tr.AddStep(fmt.Sprintf("Targeting brands based on %s: %s",
				spec.ArtistReference, strings.Join(filter.Brands, ", ")))
		}
	}

	if spec.MusicalStyle != "" && len(filter.Brands) == 0 {
		if _, info, ok := p.kb.LookupGenre(spec.MusicalStyle); ok {
			filter.Brands = topN(info.Brands, 3)
			filter.SearchTerms = topN(info.RecommendedTypes, 2)
			tr.AddStep(fmt.Sprintf("Applied %s genre targeting: %s",
				spec.MusicalStyle, strings.Join(filter.SearchTerms, ", ")))
		}
	}

	// Skill clamps run last so they bound whatever the budget produced.
	if spec.SkillLevel != "" {
		if _, _, ok := p.kb.LookupSkillLevel(string(spec.SkillLevel)); ok {
			switch spec.SkillLevel {
			case model.SkillBeginner:
				if filter.PriceMax > p.cfg.BeginnerPriceCap {
					filter.PriceMax = p.cfg.BeginnerPriceCap
				}
			case model.SkillProfessional:
				if filter.PriceMin < p.cfg.ProfessionalPriceFloor {
					filter.PriceMin = p.cfg.ProfessionalPriceFloor
				}
			}
			tr.AddStep(fmt.Sprintf("Adjusted search for %s level player", spec.SkillLevel))
		}
	}
	if filter.PriceMin > filter.PriceMax {
		filter.PriceMin = filter.PriceMax
	}

	tr.SetFilter(filter)
	tr.AddToolUse("SearchStrategy",
		fmt.Sprintf("style=%s skill=%s artist=%s", spec.MusicalStyle, spec.SkillLevel, spec.ArtistReference),
		fmt.Sprintf("Strategy: $%.0f-$%.0f, brands: %v", filter.PriceMin, filter.PriceMax, filter.Brands))

	return filter
}

// wantsCustomShopQuality reports whether the required features name
// boutique appointments (woods, hardware, pickup brands) that signal a
// high-end build request.
func (p *Pipeline) wantsCustomShopQuality(features []string) bool {
	if len(features) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(features, " "))
	for _, kw := range p.cfg.CustomShopKeywords {
		if strings.Contains(joined, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func topN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string(nil), items...)
}
