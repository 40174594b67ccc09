package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"siren/internal/incident/model"
)

// ReadCSV reads a headered tabular file into raw records, preserving row
// order. Every cell stays a string; typed interpretation is the feature
// parsers' job.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}

	var rows []model.Record
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read row %d: %w", len(rows)+1, err)
		}
		row := make(model.Record, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCSVFile reads the historical dataset from a file path.
func ReadCSVFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
