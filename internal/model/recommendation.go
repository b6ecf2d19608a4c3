package model

// Recommendation is one ranked suggestion, traceable to exactly one
// listing from the retrieval batch. When Reconciled is true the listing
// fields (title, price, link, image, condition, source) were overwritten
// with the matched listing's authoritative values; when false the entry
// could not be bound to a real listing and callers should treat the
// listing fields as unverified.
type Recommendation struct {
	Rank           int      `json:"rank"`
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	Link           string   `json:"link,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Condition      string   `json:"condition,omitempty"`
	Source         string   `json:"source,omitempty"`
	MatchScore     float64  `json:"match_score"`
	WhyRecommended string   `json:"why_recommended"`
	Pros           []string `json:"pros,omitempty"`
	Cons           []string `json:"cons,omitempty"`
	BestFor        string   `json:"best_for,omitempty"`
	Reconciled     bool     `json:"reconciled"`
}

// RecommendationResult is the top-level pipeline response.
type RecommendationResult struct {
	UserAnalysis           string           `json:"user_analysis"`
	Recommendations        []Recommendation `json:"recommendations"`
	MarketInsights         string           `json:"market_insights,omitempty"`
	AlternativeSuggestions string           `json:"alternative_suggestions,omitempty"`
}
