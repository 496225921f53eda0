package ml

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Dataset is a parsed CSV table with a header row.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// ReadCSV parses r as CSV; the first record names the columns.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	ds := &Dataset{
		columns: header,
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, dup := ds.index[name]; !dup {
			ds.index[name] = i
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv rows: %w", err)
	}
	ds.rows = rows
	return ds, nil
}

// Columns returns the header names in file order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Len is the number of data rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// MissingColumns lists the names in want that are absent, preserving want's order.
func (d *Dataset) MissingColumns(want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := d.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Matrix projects the dataset onto cols, in that order, as float64 values.
func (d *Dataset) Matrix(cols []string) ([][]float64, error) {
	idx, err := d.positions(cols)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(d.rows))
	for i, row := range d.rows {
		vals := make([]float64, len(idx))
		for j, p := range idx {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[p]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, cols[j], err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d column %q: %v is not a finite value", i+1, cols[j], v)
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out, nil
}

// Labels reads col as integral class values. "3" and "3.0" are both accepted.
func (d *Dataset) Labels(col string) ([]Label, error) {
	idx, err := d.positions([]string{col})
	if err != nil {
		return nil, err
	}
	out := make([]Label, len(d.rows))
	for i, row := range d.rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[0]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", i+1, col, err)
		}
		if v != math.Trunc(v) || v >= float64(math.MaxInt) || v < float64(math.MinInt) {
			return nil, fmt.Errorf("row %d column %q: %v is not an integer class", i+1, col, v)
		}
		out[i] = Label(v)
	}
	return out, nil
}

func (d *Dataset) positions(cols []string) ([]int, error) {
	idx := make([]int, len(cols))
	for i, name := range cols {
		p, ok := d.index[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		idx[i] = p
	}
	return idx, nil
}
