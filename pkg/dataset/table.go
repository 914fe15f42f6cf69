// Package dataset loads row-oriented CSV data into an in-memory table and
// applies the per-column fill rules used before feature derivation.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/hotelops/bookingrisk/pkg/schema"
)

// Table is a row-oriented view of a CSV file. Cells are kept as raw strings;
// numeric coercion happens during feature derivation.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Load reads a CSV file from disk into a Table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV content with a header row into a Table. Short records are
// padded with empty cells so every row exposes the full column set.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := &Table{Columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(t.Rows)+1, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FillMissing applies the registry's per-column fill values to empty cells
// and fills remaining empty categorical cells with the "Unknown" sentinel.
// Empty numeric cells are left for coercion to handle. The month column is
// exempt: an empty month stays empty so derivation can skip it, since the
// month table is exact-match and would reject the sentinel.
func (t *Table) FillMissing() {
	for _, row := range t.Rows {
		for col, fill := range schema.FillValues {
			if v, ok := row[col]; ok && v == "" {
				row[col] = fill
			}
		}
		for _, col := range schema.CategoricalColumns() {
			if col == schema.ColumnArrivalMonth {
				continue
			}
			if v, ok := row[col]; ok && v == "" {
				row[col] = "Unknown"
			}
		}
	}
}

// Clone returns a deep copy of the table. Mutating helpers like FillMissing
// can then run without touching the caller's data.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string{}, t.Columns...),
		Rows:    make([]map[string]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		copied := make(map[string]string, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows[i] = copied
	}
	return out
}

// MissingColumns returns the names from want that the table does not carry.
func (t *Table) MissingColumns(want []string) []string {
	var missing []string
	for _, col := range want {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Labels extracts the binary target column. Values must parse as 0 or 1.
func (t *Table) Labels() ([]int, error) {
	if !t.HasColumn(schema.TargetColumn) {
		return nil, fmt.Errorf("target column %q not found in dataset", schema.TargetColumn)
	}

	labels := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		switch row[schema.TargetColumn] {
		case "0":
			labels[i] = 0
		case "1":
			labels[i] = 1
		default:
			return nil, fmt.Errorf("row %d: target column %q has non-binary value %q", i, schema.TargetColumn, row[schema.TargetColumn])
		}
	}
	return labels, nil
}
