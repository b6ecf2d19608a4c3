package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/fretsource/guitar-scout/internal/model"
)

const defaultMaxResults = 20

// FixtureSource serves a built-in catalog of listings. It backs demos and
// tests, and acts as the retrieval fallback when live sources are down.
type FixtureSource struct {
	byBrand map[string][]model.Listing
}

// NewFixtureSource returns a source over the built-in catalog.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{byBrand: fixtureListings}
}

func (s *FixtureSource) Name() string { return "fixture" }

// Search filters the built-in catalog by brand and price. Results are
// ordered by brand name then catalog position, so identical filters
// always return identical slices.
func (s *FixtureSource) Search(_ context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	brands := make([]string, 0, len(s.byBrand))
	if len(filter.Brands) > 0 {
		for _, b := range filter.Brands {
			key := strings.ToLower(strings.TrimSpace(b))
			if _, ok := s.byBrand[key]; ok {
				brands = append(brands, key)
			}
		}
	} else {
		for b := range s.byBrand {
			brands = append(brands, b)
		}
	}
	sort.Strings(brands)

	limit := filter.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	var out []model.Listing
	for _, brand := range brands {
		for _, l := range s.byBrand[brand] {
			if filter.PriceMin > 0 && l.Price < filter.PriceMin {
				continue
			}
			if filter.PriceMax > 0 && l.Price > filter.PriceMax {
				continue
			}
			out = append(out, l)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

var fixtureListings = map[string][]model.Listing{
	"fender": {
		{
			Title:     "Fender American Ultra Stratocaster - Ash Body Natural",
			Price:     2399,
			Condition: "Mint",
			ImageURL:  "https://www.fender.com/cdn/assets/models/instruments/carousel/0118012747_fen_ins_crl_frt_1_rr.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/stratocaster/american-ultra-stratocaster/",
			Source:    "Fender",
		},
		{
			Title:     "Fender Player Stratocaster - 3-Color Sunburst",
			Price:     899,
			Condition: "Excellent",
			ImageURL:  "https://www.fender.com/cdn/assets/models/instruments/carousel/0144502500_fen_ins_crl_frt_1_rr.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/stratocaster/player-stratocaster/",
			Source:    "Fender",
		},
		{
			Title:     "Fender American Professional II Stratocaster - Miami Blue",
			Price:     1699,
			Condition: "Mint",
			ImageURL:  "https://www.fender.com/cdn/assets/models/instruments/carousel/0113902719_fen_ins_crl_frt_1_rr.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/stratocaster/american-professional-ii-stratocaster/",
			Source:    "Fender",
		},
		{
			Title:     "Fender Player Telecaster - Butterscotch Blonde",
			Price:     849,
			Condition: "Excellent",
			ImageURL:  "https://images.reverb.com/image/upload/s--def456--/f_auto,t_large/v9101/fender-tele.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/telecaster/player-telecaster/",
			Source:    "Fender",
		},
		{
			Title:     "Fender Vintera '60s Stratocaster - Olympic White",
			Price:     1149,
			Condition: "Very Good",
			ImageURL:  "https://images.reverb.com/image/upload/s--ghi789--/f_auto,t_large/v1112/fender-vintera.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/stratocaster/vintera-60s-stratocaster/",
			Source:    "Fender",
		},
		{
			Title:     "Fender American Ultra Stratocaster - Texas Tea",
			Price:     2199,
			Condition: "Mint",
			ImageURL:  "https://images.reverb.com/image/upload/s--jkl012--/f_auto,t_large/v1314/fender-ultra.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/stratocaster/american-ultra-stratocaster/",
			Source:    "Fender",
		},
		{
			Title:     "Fender American Ultra Stratocaster HSS - Ash Body, Pau Ferro Fretboard, Quartersawn Maple Neck",
			Price:     2299,
			Condition: "Mint",
			ImageURL:  "https://images.reverb.com/image/upload/s--fender-custom--/f_auto,t_large/v2024/fender-ultra-hss-ash.jpg",
			Link:      "https://www.fender.com/en-US/electric-guitars/stratocaster/american-ultra-stratocaster-hss/",
			Source:    "Fender",
		},
	},
	"gibson": {
		{
			Title:     "Gibson Les Paul Standard 50s - Heritage Cherry Sunburst",
			Price:     2699,
			Condition: "Excellent",
			ImageURL:  "https://www.gibson.com/media/catalog/product/l/p/lps5p00hcnh_main_01.png",
			Link:      "https://www.gibson.com/en-US/Guitar/Les-Paul-Standard-50s",
			Source:    "Gibson",
		},
		{
			Title:     "Gibson Les Paul Studio - Ebony",
			Price:     1599,
			Condition: "Very Good",
			ImageURL:  "https://www.gibson.com/media/catalog/product/l/p/lpst00ebch_main_01.png",
			Link:      "https://www.gibson.com/en-US/Guitar/Les-Paul-Studio",
			Source:    "Gibson",
		},
		{
			Title:     "Gibson SG Standard - Cherry Red",
			Price:     1899,
			Condition: "Excellent",
			ImageURL:  "https://www.gibson.com/media/catalog/product/s/g/sgs00hcch_main_01.png",
			Link:      "https://www.gibson.com/en-US/Guitar/SG-Standard",
			Source:    "Gibson",
		},
	},
	"epiphone": {
		{
			Title:     "Epiphone Les Paul Standard 50s - Heritage Cherry Sunburst",
			Price:     649,
			Condition: "Excellent",
			ImageURL:  "https://images.reverb.com/image/upload/s--vwx234--/f_auto,t_large/v2122/epi-lp-std.jpg",
			Link:      "https://reverb.com/item/90123-epiphone-les-paul-standard",
			Source:    "Reverb",
		},
		{
			Title:     "Epiphone Casino - Natural",
			Price:     849,
			Condition: "Very Good",
			ImageURL:  "https://images.reverb.com/image/upload/s--yz567--/f_auto,t_large/v2324/epi-casino.jpg",
			Link:      "https://reverb.com/item/01234-epiphone-casino",
			Source:    "Reverb",
		},
	},
	"prs": {
		{
			Title:     "PRS SE Custom 24 - Vintage Sunburst",
			Price:     929,
			Condition: "Excellent",
			ImageURL:  "https://images.reverb.com/image/upload/s--abc890--/f_auto,t_large/v2526/prs-se-24.jpg",
			Link:      "https://reverb.com/item/12345-prs-se-custom-24",
			Source:    "Reverb",
		},
		{
			Title:     "PRS S2 Custom 24 - Frost Blue Metallic",
			Price:     1599,
			Condition: "Mint",
			ImageURL:  "https://images.reverb.com/image/upload/s--def123--/f_auto,t_large/v2728/prs-s2.jpg",
			Link:      "https://reverb.com/item/23456-prs-s2-custom-24",
			Source:    "Reverb",
		},
	},
	"ibanez": {
		{
			Title:     "Ibanez RG550 - Desert Sun Yellow",
			Price:     1099,
			Condition: "Excellent",
			ImageURL:  "https://images.reverb.com/image/upload/s--ghi456--/f_auto,t_large/v2930/ibanez-rg550.jpg",
			Link:      "https://reverb.com/item/34567-ibanez-rg550",
			Source:    "Reverb",
		},
		{
			Title:     "Ibanez RG7321 7-String - Black",
			Price:     1599,
			Condition: "Excellent",
			ImageURL:  "https://images.reverb.com/image/upload/s--metal123--/f_auto,t_large/v4567/ibanez-rg7321.jpg",
			Link:      "https://reverb.com/item/56789-ibanez-rg7321",
			Source:    "Reverb",
		},
		{
			Title:     "Ibanez Artcore AS73 - Tobacco Brown",
			Price:     449,
			Condition: "Very Good",
			ImageURL:  "https://images.reverb.com/image/upload/s--jkl789--/f_auto,t_large/v3132/ibanez-as73.jpg",
			Link:      "https://www.ibanez.com/usa/products/detail/as73_00_01.html",
			Source:    "Reverb",
		},
	},
	"schecter": {
		{
			Title:     "Schecter Hellraiser C-1 - Satin Black",
			Price:     1749,
			Condition: "Mint",
			ImageURL:  "https://images.reverb.com/image/upload/s--schecter01--/f_auto,t_large/v5678/schecter-hellraiser.jpg",
			Link:      "https://www.schecterguitars.com/guitars/hellraiser-c-1",
			Source:    "Reverb",
		},
		{
			Title:     "Schecter Omen Extreme-6 FR - See Thru Black Cherry",
			Price:     1299,
			Condition: "Excellent",
			ImageURL:  "https://images.reverb.com/image/upload/s--schecter02--/f_auto,t_large/v6789/schecter-omen.jpg",
			Link:      "https://www.schecterguitars.com/guitars/omen-extreme-6-fr",
			Source:    "Reverb",
		},
	},
	"esp": {
		{
			Title:     "ESP LTD EC-1000 - Black",
			Price:     1799,
			Condition: "Excellent",
			ImageURL:  "https://www.espguitars.com/sites/default/files/products/guitars/EC-1000_Black_Front.jpg",
			Link:      "https://www.espguitars.com/products/22748-ec-1000",
			Source:    "ESP Guitars",
		},
		{
			Title:     "ESP LTD MH-1000 Floyd Rose - Violet Andromeda",
			Price:     900,
			Condition: "Mint",
			ImageURL:  "https://www.espguitars.com/sites/default/files/products/guitars/MH-1000_Violet_Andromeda_Front.jpg",
			Link:      "https://www.espguitars.com/products/22751-mh-1000",
			Source:    "ESP Guitars",
		},
	},
}

// FixtureListings returns a flat copy of the built-in catalog, used by the
// catalog seed command.
func FixtureListings() []model.Listing {
	brands := make([]string, 0, len(fixtureListings))
	for b := range fixtureListings {
		brands = append(brands, b)
	}
	sort.Strings(brands)

	var out []model.Listing
	for _, b := range brands {
		out = append(out, fixtureListings[b]...)
	}
	return out
}
