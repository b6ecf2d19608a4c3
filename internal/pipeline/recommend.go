package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/trace"
)

// unreconciledScoreCap bounds the match score of a recommendation that
// could not be bound to a real listing.
const unreconciledScoreCap = 0.5

const recommendPromptTemplate = `You are making personalized guitar recommendations.

Original User Request: "%s"

User Analysis:
%s

Expert Knowledge Applied:
%s

Available Guitars:
%s

Generate detailed recommendations considering:
1. How well each guitar matches the user's specific technical requirements (body wood, neck wood, fretboard, pickups, bridge type, etc.)
2. Value for money given condition and market prices
3. Long-term satisfaction for their musical goals
4. Integration of expert knowledge about artists/genres
5. Skill level appropriateness

IMPORTANT: When the user mentions specific technical specifications (like "ash body", "pau ferro fretboard", "Gotoh tremolo", "Seymour Duncan pickups"), focus on guitars that actually have these features. Do NOT default to blues or generic analysis if the request is clearly technical.

Provide response in JSON format:
{
    "user_analysis": "Clear summary of what the user is looking for, including specific technical requirements and budget range. Format budget as 'Budget: $X,XXX - $X,XXX'",
    "recommendations": [
        {
            "rank": 1,
            "guitar_title": "exact title from list",
            "price": <number>,
            "match_score": <0.75-0.95>,
            "why_recommended": "Comprehensive 3-4 sentence explanation covering how it matches the specific technical requirements, why it suits the musical style, how it fits the skill level, and budget considerations.",
            "pros": ["<pro1>", "<pro2>"],
            "cons": ["<con1>"],
            "best_for": "What this guitar excels at for this user"
        }
    ],
    "market_insights": "Observations about current guitar availability and pricing",
    "alternative_suggestions": "Other options to consider if primary recommendations don't work"
}

Focus on quality recommendations (3-5 max) rather than quantity.`

// rankedEntry is the model's view of one recommendation before it is
// reconciled against the retrieval batch.
type rankedEntry struct {
	Rank           int      `json:"rank"`
	GuitarTitle    string   `json:"guitar_title"`
	Price          float64  `json:"price"`
	MatchScore     float64  `json:"match_score"`
	WhyRecommended string   `json:"why_recommended"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	BestFor        string   `json:"best_for"`
}

type rankedResponse struct {
	UserAnalysis           string        `json:"user_analysis"`
	Recommendations        []rankedEntry `json:"recommendations"`
	MarketInsights         string        `json:"market_insights"`
	AlternativeSuggestions string        `json:"alternative_suggestions"`
}

// recommend ranks the candidates and binds every recommendation back to a
// real listing. The second return reports whether the degraded path ran.
func (p *Pipeline) recommend(ctx context.Context, query string, spec model.RequirementSpec, listings []model.Listing, tr *trace.Tracer) (model.RecommendationResult, bool) {
	tr.AddStep("Analyzing guitars and generating personalized recommendations")

	// No candidates means no ranking call. The fixed answer is honest
	// about the empty market instead of inventing guitars.
	if len(listings) == 0 {
		return model.RecommendationResult{
			UserAnalysis:           "I understood your requirements but couldn't find matching guitars in the current market.",
			Recommendations:        []model.Recommendation{},
			MarketInsights:         "No suitable guitars found. This could be due to very specific requirements or temporary market conditions.",
			AlternativeSuggestions: "Consider broadening your search criteria or checking back later for new listings.",
		}, false
	}

	candidates := listings
	if limit := p.cfg.CandidateLimit; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	prompt := p.buildRecommendPrompt(query, spec, candidates, tr.Knowledge())
	text, err := p.complete(ctx, p.aiCfg.FullModel, p.aiCfg.FullMaxTokens, prompt)
	if err != nil {
		zap.L().Error("pipeline: recommendation generation failed", zap.Error(err))
		return p.degradedResult(spec, candidates, tr), true
	}

	var ranked rankedResponse
	if err := json.Unmarshal([]byte(cleanJSON(text)), &ranked); err != nil {
		zap.L().Error("pipeline: recommendation parse failed", zap.Error(err))
		return p.degradedResult(spec, candidates, tr), true
	}

	recs := p.reconcile(ranked.Recommendations, candidates)

	tr.AddToolUse("RecommendationGeneration",
		fmt.Sprintf("%d guitars analyzed", len(candidates)),
		fmt.Sprintf("Generated %d recommendations", len(recs)))
	tr.AddStep(fmt.Sprintf("Created %d detailed recommendations with expert reasoning", len(recs)))

	return model.RecommendationResult{
		UserAnalysis:           ranked.UserAnalysis,
		Recommendations:        recs,
		MarketInsights:         ranked.MarketInsights,
		AlternativeSuggestions: ranked.AlternativeSuggestions,
	}, false
}

func (p *Pipeline) buildRecommendPrompt(query string, spec model.RequirementSpec, candidates []model.Listing, knowledge []string) string {
	lines := make([]string, len(candidates))
	for i, l := range candidates {
		lines[i] = fmt.Sprintf("%d. %s - $%.0f (%s condition)", i+1, l.Title, l.Price, l.Condition)
	}

	summary := "• No specific expert knowledge applied"
	if len(knowledge) > 0 {
		bullets := make([]string, len(knowledge))
		for i, k := range knowledge {
			bullets[i] = "• " + k
		}
		summary = strings.Join(bullets, "\n")
	}

	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		specJSON = []byte("{}")
	}

	return fmt.Sprintf(recommendPromptTemplate, query, string(specJSON), summary, strings.Join(lines, "\n"))
}

// reconcile binds each ranked entry to the listing whose title it names.
// A bound entry gets the listing's authoritative fields; an unbound one
// keeps the model's text but is flagged and its score capped.
func (p *Pipeline) reconcile(entries []rankedEntry, candidates []model.Listing) []model.Recommendation {
	recs := make([]model.Recommendation, 0, len(entries))
	for _, e := range entries {
		rec := model.Recommendation{
			Rank:           e.Rank,
			Title:          e.GuitarTitle,
			Price:          e.Price,
			MatchScore:     e.MatchScore,
			WhyRecommended: e.WhyRecommended,
			Pros:           e.Pros,
			Cons:           e.Cons,
			BestFor:        e.BestFor,
		}

		if listing, ok := p.matchListing(e.GuitarTitle, candidates); ok {
			rec.Title = listing.Title
			rec.Price = listing.Price
			rec.Link = listing.Link
			rec.ImageURL = listing.ImageURL
			rec.Condition = listing.Condition
			rec.Source = listing.Source
			rec.Reconciled = true
		} else if rec.MatchScore > unreconciledScoreCap {
			rec.MatchScore = unreconciledScoreCap
		}

		recs = append(recs, rec)
	}
	return recs
}

func (p *Pipeline) matchListing(title string, candidates []model.Listing) (model.Listing, bool) {
	for _, l := range candidates {
		if titlesMatch(title, l.Title, p.cfg.OverlapThreshold) {
			return l, true
		}
	}
	return model.Listing{}, false
}

// titlesMatch reports whether enough of the recommendation title's
// distinct words appear in the listing title. Word-set overlap tolerates
// the model abbreviating or reordering a title without letting it invent
// a different guitar.
func titlesMatch(recTitle, listingTitle string, threshold float64) bool {
	recWords := wordSet(recTitle)
	if len(recWords) == 0 {
		return false
	}
	listingWords := wordSet(listingTitle)

	overlap := 0
	for w := range recWords {
		if listingWords[w] {
			overlap++
		}
	}
	return float64(overlap) >= float64(len(recWords))*threshold
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// degradedResult builds a single recommendation from the top candidate
// when ranking fails. Every field comes from the listing, so it is
// reconciled by construction.
func (p *Pipeline) degradedResult(spec model.RequirementSpec, candidates []model.Listing, tr *trace.Tracer) model.RecommendationResult {
	tr.AddStep("Recommendation ranking unavailable, returning top candidate directly")

	first := candidates[0]
	style := spec.MusicalStyle
	if style == "" {
		style = "your musical style"
	}

	rec := model.Recommendation{
		Rank:       1,
		Title:      first.Title,
		Price:      first.Price,
		Link:       first.Link,
		ImageURL:   first.ImageURL,
		Condition:  first.Condition,
		Source:     first.Source,
		MatchScore: 0.85,
		WhyRecommended: fmt.Sprintf(
			"This %s matches your requirements with its professional build quality and suitable price point of $%.0f. It's an excellent choice for your musical needs.",
			first.Title, first.Price),
		Pros:       []string{"Professional build quality", "Suitable for your genre", "Good value for money", "Reliable brand"},
		Cons:       []string{"May require professional setup", "Regular maintenance needed"},
		BestFor:    fmt.Sprintf("Perfect for %s", style),
		Reconciled: true,
	}

	return model.RecommendationResult{
		UserAnalysis: fmt.Sprintf("Looking for a %s guitar within Budget: $%.0f - $%.0f budget range.",
			style, spec.BudgetMin, spec.BudgetMax),
		Recommendations:        []model.Recommendation{rec},
		MarketInsights:         "Using curated guitar database for reliable recommendations.",
		AlternativeSuggestions: "Consider exploring different brands or adjusting your budget for more options.",
	}
}
