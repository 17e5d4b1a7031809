package sitetable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadCSV loads a delimited site-attribute table from disk. The first row
// is the header. Numeric cells are parsed into float64, booleans into
// bool, everything else is kept as string. The result is unindexed; use
// SetIndex to promote the site-identity column.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open site data csv: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
	}

	columns := make([][]any, len(headers))
	nrows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read error: %w", err)
		}
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv row %d has %d fields, header has %d", nrows+1, len(record), len(headers))
		}
		for i, cell := range record {
			columns[i] = append(columns[i], parseValue(cell))
		}
		nrows++
	}

	t := New(nrows)
	for i, h := range headers {
		if err := t.AddColumn(h, columns[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseValue converts a csv cell into its most specific Go type.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
