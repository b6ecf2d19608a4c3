package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T) *Base {
	t.Helper()
	b, err := Load()
	require.NoError(t, err)
	return b
}

func TestLookupArtist(t *testing.T) {
	b := mustLoad(t)

	tests := []struct {
		name    string
		query   string
		wantKey string
		wantOK  bool
	}{
		{"exact", "jimmy page", "jimmy page", true},
		{"case insensitive", "Jimmy Page", "jimmy page", true},
		{"key in query", "something like jimmy page plays", "jimmy page", true},
		{"query in key", "gilmour", "david gilmour", true},
		{"whitespace", "  slash  ", "slash", true},
		{"miss", "yngwie malmsteen", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, info, ok := b.LookupArtist(tc.query)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantKey, key)
			if ok {
				assert.NotEmpty(t, info.Brands)
			}
		})
	}
}

func TestLookupGenre(t *testing.T) {
	b := mustLoad(t)

	_, info, ok := b.LookupGenre("blues")
	require.True(t, ok)
	assert.Contains(t, info.Brands, "Fender")
	assert.Equal(t, 500.0, info.PriceMin)
	assert.Equal(t, 3000.0, info.PriceMax)

	// Bidirectional containment: "blues rock fusion" contains the key "blues".
	key, _, ok := b.LookupGenre("blues rock fusion")
	require.True(t, ok)
	assert.Equal(t, "blues", key)

	_, _, ok = b.LookupGenre("polka")
	assert.False(t, ok)
}

func TestLookupSkillLevel(t *testing.T) {
	b := mustLoad(t)

	_, info, ok := b.LookupSkillLevel("beginner")
	require.True(t, ok)
	assert.Equal(t, 700.0, info.PriceMax)
	assert.Contains(t, info.Brands, "Squier")

	_, info, ok = b.LookupSkillLevel("professional")
	require.True(t, ok)
	assert.Equal(t, 3000.0, info.PriceMin)

	_, _, ok = b.LookupSkillLevel("wizard")
	assert.False(t, ok)
}

func TestExplainFeature(t *testing.T) {
	b := mustLoad(t)

	info, ok := b.ExplainFeature("bridge_types", "floyd rose")
	require.True(t, ok)
	assert.Contains(t, info.Characteristics, "locking nut")

	info, ok = b.ExplainFeature("body_woods", "ash")
	require.True(t, ok)
	assert.NotEmpty(t, info.Description)

	_, ok = b.ExplainFeature("bridge_types", "kazoo")
	assert.False(t, ok)

	_, ok = b.ExplainFeature("no_such_taxonomy", "ash")
	assert.False(t, ok)
}

func TestBrandTier(t *testing.T) {
	b := mustLoad(t)

	tier, info, ok := b.BrandTier("Squier")
	require.True(t, ok)
	assert.Equal(t, "budget", tier)
	assert.Equal(t, 500.0, info.PriceMax)

	_, _, ok = b.BrandTier("NoName Guitars")
	assert.False(t, ok)
}

func TestMentioned(t *testing.T) {
	b := mustLoad(t)

	artists := b.ArtistsMentioned("I want to sound like David Gilmour and BB King")
	assert.Equal(t, []string{"bb king", "david gilmour"}, artists)

	genres := b.GenresMentioned("a metal guitar that can also do jazz")
	assert.Equal(t, []string{"jazz", "metal"}, genres)

	assert.Empty(t, b.GenresMentioned("ash body, pau ferro fretboard"))
}

func TestFeaturesMentioned(t *testing.T) {
	b := mustLoad(t)

	mentions := b.FeaturesMentioned("Strat with an ash body and a floyd rose")
	require.Len(t, mentions, 2)
	assert.Equal(t, "body_woods", mentions[0].Taxonomy)
	assert.Equal(t, "ash", mentions[0].Name)
	assert.Equal(t, "bridge_types", mentions[1].Taxonomy)
	assert.Equal(t, "floyd rose", mentions[1].Name)

	ctx := mentions[1].Context()
	assert.Contains(t, ctx, "TECHNICAL EXPERTISE - Floyd Rose")
	assert.Contains(t, ctx, "locking nut")

	// Whole-word matching: "ash" must not fire inside other words.
	assert.Empty(t, b.FeaturesMentioned("a guitar for playing in Nashville"))
	assert.Empty(t, b.FeaturesMentioned("something with flashy looks"))
}

func TestContextRendering(t *testing.T) {
	b := mustLoad(t)

	ctx, ok := b.ArtistContext("david gilmour")
	require.True(t, ok)
	assert.Contains(t, ctx, "ARTIST EXPERTISE - David Gilmour")
	assert.Contains(t, ctx, "Fender Stratocaster")

	ctx, ok = b.GenreContext("metal")
	require.True(t, ok)
	assert.Contains(t, ctx, "GENRE EXPERTISE - Metal")
	assert.Contains(t, ctx, "$700-$3500")

	_, ok = b.ArtistContext("nobody")
	assert.False(t, ok)
}
