package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestFile(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "listings.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadListings(t *testing.T) {
	path := writeTestFile(t, "Listings", [][]string{
		{"title", "price", "condition", "link", "image_url", "source"},
		{"Fender Player Stratocaster - 3-Color Sunburst", "$899.00", "Excellent", "https://example.com/strat", "https://img/strat.jpg", "Reverb"},
		{"Gibson SG Standard - Cherry Red", "1,699", "", "", "", ""},
		{"", "500", "", "", "", ""},
		{"Free guitar", "not a number", "", "", "", ""},
	})

	listings, err := ReadListings(path, Options{})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Fender Player Stratocaster - 3-Color Sunburst", listings[0].Title)
	assert.Equal(t, 899.0, listings[0].Price)
	assert.Equal(t, "Excellent", listings[0].Condition)
	assert.Equal(t, "Reverb", listings[0].Source)

	// Missing condition and source are normalized, not dropped.
	assert.Equal(t, 1699.0, listings[1].Price)
	assert.Equal(t, "Unknown", listings[1].Condition)
	assert.Equal(t, "Unknown", listings[1].Source)
}

func TestReadListingsColumnOrderIndependent(t *testing.T) {
	path := writeTestFile(t, "Sheet1", [][]string{
		{"price", "source", "title"},
		{"849", "Sweetwater", "Fender Player Telecaster - Butterscotch Blonde"},
	})

	listings, err := ReadListings(path, Options{})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Fender Player Telecaster - Butterscotch Blonde", listings[0].Title)
	assert.Equal(t, 849.0, listings[0].Price)
	assert.Equal(t, "Sweetwater", listings[0].Source)
}

func TestReadListingsSheetByName(t *testing.T) {
	path := writeTestFile(t, "Inventory", [][]string{
		{"title", "price"},
		{"PRS SE Custom 24 - Vintage Sunburst", "829"},
	})

	listings, err := ReadListings(path, Options{SheetName: "Inventory"})
	require.NoError(t, err)
	assert.Len(t, listings, 1)

	_, err = ReadListings(path, Options{SheetName: "Missing"})
	assert.Error(t, err)
}

func TestReadListingsRejectsMissingHeader(t *testing.T) {
	path := writeTestFile(t, "Sheet1", [][]string{
		{"name", "cost"},
		{"Some Guitar", "500"},
	})

	_, err := ReadListings(path, Options{})
	assert.Error(t, err)
}
