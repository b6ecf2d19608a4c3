package fetcher

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Exported listing files sometimes have ragged rows; header mapping
	// handles short rows.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read file")
	}

	for _, record := range records {
		for j, cell := range record {
			record[j] = strings.TrimSpace(cell)
		}
	}
	return records, nil
}
