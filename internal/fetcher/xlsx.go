// Package fetcher parses external listing files into catalog listings.
package fetcher

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/model"
)

// Options configures the listing file parser. The sheet fields apply to
// XLSX files only; CSV files have a single implicit sheet.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// Recognized header names, lowercased. The header row decides column
// positions; column order in the file does not matter.
const (
	colTitle     = "title"
	colPrice     = "price"
	colCondition = "condition"
	colLink      = "link"
	colImageURL  = "image_url"
	colSource    = "source"
)

// ReadListings reads an XLSX or CSV file whose first row is a header
// naming the listing columns. The format is chosen by file extension.
// Rows that do not form a valid listing are skipped and counted, not
// fatal.
func ReadListings(path string, opts Options) ([]model.Listing, error) {
	var rows [][]string
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		rows, err = readCSVRows(path)
	} else {
		rows, err = readXLSXRows(path, opts)
	}
	if err != nil {
		return nil, err
	}
	return listingsFromRows(path, rows)
}

func readXLSXRows(path string, opts Options) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// listingsFromRows maps header-indexed rows into listings. rows[0] is the
// header.
func listingsFromRows(path string, rows [][]string) ([]model.Listing, error) {
	if len(rows) == 0 {
		return nil, eris.New("fetcher: file is empty")
	}

	cols := headerIndex(rows[0])
	if _, ok := cols[colTitle]; !ok {
		return nil, eris.New("fetcher: header row has no title column")
	}
	if _, ok := cols[colPrice]; !ok {
		return nil, eris.New("fetcher: header row has no price column")
	}

	var listings []model.Listing
	skipped := 0
	for _, cells := range rows[1:] {
		l := model.Listing{
			Title:     cellAt(cells, cols, colTitle),
			Price:     parsePrice(cellAt(cells, cols, colPrice)),
			Condition: cellAt(cells, cols, colCondition),
			Link:      cellAt(cells, cols, colLink),
			ImageURL:  cellAt(cells, cols, colImageURL),
			Source:    cellAt(cells, cols, colSource),
		}
		l.Normalize()
		if !l.Valid() {
			skipped++
			continue
		}
		listings = append(listings, l)
	}

	if skipped > 0 {
		zap.L().Warn("skipped invalid listing rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return listings, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func headerIndex(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}
	return cols
}

func cellAt(cells []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// parsePrice tolerates currency formatting like "$1,149.00".
func parsePrice(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}
