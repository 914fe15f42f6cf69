// Package encoding turns derived booking rows into numeric feature
// matrices. Two strategies exist: indicator (one-hot, drop-first) expansion
// and label-index encoding against a fitted vocabulary. A trained contract
// is produced by exactly one strategy; the two are never mixed.
package encoding

// Strategy identifies which categorical encoding produced a feature matrix.
type Strategy string

const (
	// StrategyIndicator expands each categorical column into one 0/1
	// column per observed value, named "column=value", dropping the first
	// value in sorted order as the baseline.
	StrategyIndicator Strategy = "indicator"
	// StrategyLabel maps each categorical column to a single integer
	// column through a persisted vocabulary.
	StrategyLabel Strategy = "label"
)

// Matrix is a numeric-only feature matrix with named, ordered columns.
// No cell is ever NaN: unresolved values are zero-filled at build time.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// ColumnIndex returns the position of the named column, or -1.
func (m *Matrix) ColumnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{Columns: make([]string, len(m.Columns)), Rows: make([][]float64, len(m.Rows))}
	copy(out.Columns, m.Columns)
	for i, r := range m.Rows {
		out.Rows[i] = make([]float64, len(r))
		copy(out.Rows[i], r)
	}
	return out
}
