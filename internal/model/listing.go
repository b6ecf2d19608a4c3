package model

// Listing is a single catalog item returned by a listing source. The
// pipeline treats listings as read-only: recommendation fields are copied
// from the matched listing, never written back.
type Listing struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Condition string  `json:"condition"`
	ImageURL  string  `json:"image_url,omitempty"`
	Link      string  `json:"link,omitempty"`
	Source    string  `json:"source"`
}

// Normalize fills defaulted fields on a listing.
func (l *Listing) Normalize() {
	if l.Condition == "" {
		l.Condition = "Unknown"
	}
	if l.Source == "" {
		l.Source = "Unknown"
	}
}

// Valid reports whether the listing carries the minimum fields the
// pipeline requires (non-empty title, positive price).
func (l Listing) Valid() bool {
	return l.Title != "" && l.Price > 0
}

// CatalogFilter is the concrete query sent to a listing source.
// Brands is a priority list, not an exclusivity constraint; empty means
// no brand restriction.
type CatalogFilter struct {
	PriceMin    float64  `json:"price_min"`
	PriceMax    float64  `json:"price_max"`
	Brands      []string `json:"brands,omitempty"`
	SearchTerms []string `json:"search_terms,omitempty"`
	MaxResults  int      `json:"max_results"`
}
