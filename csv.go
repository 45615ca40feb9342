package ciplot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadCSV reads a data frame from comma separated values. The first record
// names the columns. A column whose values all parse as numbers becomes a
// Float field; empty cells and "NA" are missing values (NaN) there.
// Every other column is a String field.
func ReadCSV(r io.Reader, name string) (*DataFrame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading %s: no header", name)
	}

	header, rows := records[0], records[1:]
	df := NewDataFrame(name, nil)
	df.N = len(rows)
	for j, col := range header {
		col = strings.TrimSpace(col)
		if col == "" {
			return nil, fmt.Errorf("reading %s: empty name for column %d", name, j+1)
		}
		if df.Has(col) {
			return nil, fmt.Errorf("reading %s: duplicate column %q", name, col)
		}
		cells := make([]string, len(rows))
		for i, row := range rows {
			cells[i] = strings.TrimSpace(row[j])
		}
		df.Columns[col] = parseColumn(cells, df.Pool)
	}
	return df, nil
}

func isMissing(s string) bool {
	return s == "" || s == "NA"
}

func parseColumn(cells []string, pool *StringPool) Field {
	numbers := NewField(len(cells), Float, pool)
	numeric := true
	for i, s := range cells {
		if isMissing(s) {
			numbers.Data[i] = math.NaN()
			continue
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			numeric = false
			break
		}
		numbers.Data[i] = x
	}
	if numeric {
		return numbers
	}

	strs := NewField(len(cells), String, pool)
	for i, s := range cells {
		strs.Data[i] = float64(pool.Add(s))
	}
	return strs
}
