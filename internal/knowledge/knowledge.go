// Package knowledge holds the static guitar expertise tables: artist gear,
// genre conventions, skill-level guidance, and technical taxonomies. Tables
// ship as embedded YAML and are read-only after load, so one Base is safe
// to share across concurrent queries.
package knowledge

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/knowledge.yaml
var rawTables []byte

// ArtistInfo describes an artist's known gear and tone.
type ArtistInfo struct {
	Primary         []string `yaml:"primary"`
	AlsoUsed        []string `yaml:"also_used"`
	Brands          []string `yaml:"brands"`
	Characteristics []string `yaml:"characteristics"`
}

// GenreInfo describes conventional guitar choices for a musical style.
type GenreInfo struct {
	RecommendedTypes []string `yaml:"recommended_types"`
	Pickups          []string `yaml:"pickups"`
	Brands           []string `yaml:"brands"`
	Characteristics  []string `yaml:"characteristics"`
	PriceMin         float64  `yaml:"price_min"`
	PriceMax         float64  `yaml:"price_max"`
}

// SkillInfo describes guidance for a player skill level.
type SkillInfo struct {
	Considerations   []string `yaml:"considerations"`
	RecommendedTypes []string `yaml:"recommended_types"`
	Brands           []string `yaml:"brands"`
	PriceMin         float64  `yaml:"price_min"`
	PriceMax         float64  `yaml:"price_max"`
	Avoid            []string `yaml:"avoid"`
	Features         []string `yaml:"features"`
}

// FeatureInfo explains a technical feature (bridge, pickup, wood, neck join).
type FeatureInfo struct {
	Description     string   `yaml:"description"`
	Characteristics []string `yaml:"characteristics"`
	Genres          []string `yaml:"genres"`
}

// TierInfo describes a brand quality tier.
type TierInfo struct {
	Brands   []string `yaml:"brands"`
	PriceMin float64  `yaml:"price_min"`
	PriceMax float64  `yaml:"price_max"`
	Quality  string   `yaml:"quality"`
}

type tables struct {
	Artists     map[string]ArtistInfo             `yaml:"artists"`
	Genres      map[string]GenreInfo              `yaml:"genres"`
	SkillLevels map[string]SkillInfo              `yaml:"skill_levels"`
	Technical   map[string]map[string]FeatureInfo `yaml:"technical"`
	BrandTiers  map[string]TierInfo               `yaml:"brand_tiers"`
}

// Base is the loaded knowledge base.
type Base struct {
	t tables
}

// Load parses the embedded tables.
func Load() (*Base, error) {
	var t tables
	if err := yaml.Unmarshal(rawTables, &t); err != nil {
		return nil, eris.Wrap(err, "knowledge: unmarshal tables")
	}
	if len(t.Artists) == 0 || len(t.Genres) == 0 || len(t.SkillLevels) == 0 {
		return nil, eris.New("knowledge: embedded tables incomplete")
	}
	return &Base{t: t}, nil
}

// contains implements the matching policy for all lookups: case-insensitive
// bidirectional substring containment (key in query OR query in key). This
// trades precision for recall, which is what we want from a free-text query.
func contains(key, query string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	query = strings.ToLower(strings.TrimSpace(query))
	if key == "" || query == "" {
		return false
	}
	return strings.Contains(query, key) || strings.Contains(key, query)
}

// LookupArtist finds artist gear info by permissive name match. A miss
// returns ok=false, never an error; callers proceed without the knowledge.
func (b *Base) LookupArtist(name string) (string, ArtistInfo, bool) {
	return matchTable(b.t.Artists, name)
}

// LookupGenre finds genre conventions by permissive style match.
func (b *Base) LookupGenre(style string) (string, GenreInfo, bool) {
	return matchTable(b.t.Genres, style)
}

// LookupSkillLevel finds guidance for a skill level.
func (b *Base) LookupSkillLevel(level string) (string, SkillInfo, bool) {
	return matchTable(b.t.SkillLevels, level)
}

// ExplainFeature looks up a technical feature within a taxonomy
// ("bridge_types", "pickup_types", "body_woods", "neck_construction").
func (b *Base) ExplainFeature(taxonomy, name string) (FeatureInfo, bool) {
	features, ok := b.t.Technical[taxonomy]
	if !ok {
		return FeatureInfo{}, false
	}
	_, info, ok := matchTable(features, name)
	return info, ok
}

// BrandTier returns the quality tier a brand belongs to.
func (b *Base) BrandTier(brand string) (string, TierInfo, bool) {
	for tier, info := range b.t.BrandTiers {
		for _, bn := range info.Brands {
			if contains(bn, brand) {
				return tier, info, true
			}
		}
	}
	return "", TierInfo{}, false
}

// ArtistsMentioned returns every artist whose name (or any word of it)
// appears in the query, in deterministic order.
func (b *Base) ArtistsMentioned(query string) []string {
	lower := strings.ToLower(query)
	var names []string
	for name := range b.t.Artists {
		if strings.Contains(lower, name) || anyWordIn(name, lower) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GenresMentioned returns every genre key contained in the query, in
// deterministic order.
func (b *Base) GenresMentioned(query string) []string {
	lower := strings.ToLower(query)
	var names []string
	for name := range b.t.Genres {
		if strings.Contains(lower, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FeatureMention is one technical feature found in a query.
type FeatureMention struct {
	Taxonomy string
	Name     string
	Info     FeatureInfo
}

// Context renders the feature's knowledge as prompt context.
func (m FeatureMention) Context() string {
	return fmt.Sprintf(
		"TECHNICAL EXPERTISE - %s:\n  %s\n  Characteristics: %s",
		title(m.Name),
		m.Info.Description,
		strings.Join(m.Info.Characteristics, ", "),
	)
}

// FeaturesMentioned returns every technical feature named in the query,
// in deterministic taxonomy/key order. Keys must appear as whole words so
// short wood names do not fire inside unrelated text.
func (b *Base) FeaturesMentioned(query string) []FeatureMention {
	lower := strings.ToLower(query)

	taxonomies := make([]string, 0, len(b.t.Technical))
	for tax := range b.t.Technical {
		taxonomies = append(taxonomies, tax)
	}
	sort.Strings(taxonomies)

	var mentions []FeatureMention
	for _, tax := range taxonomies {
		features := b.t.Technical[tax]
		keys := make([]string, 0, len(features))
		for k := range features {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if wholeMatch(k, lower) {
				mentions = append(mentions, FeatureMention{Taxonomy: tax, Name: k, Info: features[k]})
			}
		}
	}
	return mentions
}

func wholeMatch(key, lowerQuery string) bool {
	for start := 0; ; {
		idx := strings.Index(lowerQuery[start:], key)
		if idx < 0 {
			return false
		}
		idx += start
		before := idx == 0 || !isLetter(lowerQuery[idx-1])
		after := idx+len(key) == len(lowerQuery) || !isLetter(lowerQuery[idx+len(key)])
		if before && after {
			return true
		}
		start = idx + 1
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ArtistContext renders an artist's knowledge as prompt context.
func (b *Base) ArtistContext(name string) (string, bool) {
	key, info, ok := b.LookupArtist(name)
	if !ok {
		return "", false
	}
	return fmt.Sprintf(
		"ARTIST EXPERTISE - %s:\n  Primary guitars: %s\n  Tone characteristics: %s\n  Recommended brands: %s",
		title(key),
		strings.Join(info.Primary, ", "),
		strings.Join(info.Characteristics, ", "),
		strings.Join(info.Brands, ", "),
	), true
}

// GenreContext renders a genre's knowledge as prompt context.
func (b *Base) GenreContext(style string) (string, bool) {
	key, info, ok := b.LookupGenre(style)
	if !ok {
		return "", false
	}
	return fmt.Sprintf(
		"GENRE EXPERTISE - %s:\n  Recommended types: %s\n  Typical pickups: %s\n  Key brands: %s\n  Price range: $%.0f-$%.0f",
		title(key),
		strings.Join(info.RecommendedTypes, ", "),
		strings.Join(info.Pickups, ", "),
		strings.Join(info.Brands, ", "),
		info.PriceMin, info.PriceMax,
	), true
}

func matchTable[V any](table map[string]V, query string) (string, V, bool) {
	var zero V
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", zero, false
	}
	// Exact key first, then permissive containment in sorted order so
	// results are deterministic.
	if v, ok := table[q]; ok {
		return q, v, true
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if contains(k, q) {
			return k, table[k], true
		}
	}
	return "", zero, false
}

func anyWordIn(name, lowerQuery string) bool {
	for _, w := range strings.Fields(name) {
		if len(w) > 2 && strings.Contains(lowerQuery, w) {
			return true
		}
	}
	return false
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
