// Package align reconciles an encoded feature matrix against the exact
// ordered column list a trained classifier expects. Contract columns absent
// from the input are zero-filled, extra input columns are dropped, and the
// output order is always the contract's order. This is the guard that keeps
// skewed uploads from producing misaligned feature vectors.
package align

import "github.com/hotelops/bookingrisk/pkg/encoding"

// Result is an aligned feature matrix plus diagnostics about how far the
// input deviated from the contract.
type Result struct {
	Matrix *encoding.Matrix
	// Degraded is set when no contract was available and the input's own
	// columns were used as-is. Scores produced from a degraded alignment
	// carry lower confidence and callers must surface that.
	Degraded bool
	// ZeroFilled lists contract columns absent from the input.
	ZeroFilled []string
	// Dropped lists input columns absent from the contract.
	Dropped []string
}

// Align produces a matrix with exactly the contract's columns in the
// contract's order. The output is well-formed for any input column set:
// superset, subset, or fully disjoint.
func Align(in *encoding.Matrix, contractColumns []string) *Result {
	res := &Result{
		Matrix: &encoding.Matrix{
			Columns: append([]string{}, contractColumns...),
			Rows:    make([][]float64, len(in.Rows)),
		},
	}

	src := make([]int, len(contractColumns))
	want := make(map[string]bool, len(contractColumns))
	for i, col := range contractColumns {
		want[col] = true
		src[i] = in.ColumnIndex(col)
		if src[i] < 0 {
			res.ZeroFilled = append(res.ZeroFilled, col)
		}
	}
	for _, col := range in.Columns {
		if !want[col] {
			res.Dropped = append(res.Dropped, col)
		}
	}

	for r, row := range in.Rows {
		vec := make([]float64, len(contractColumns))
		for i, j := range src {
			if j >= 0 {
				vec[i] = row[j]
			}
		}
		res.Matrix.Rows[r] = vec
	}
	return res
}

// AlignDegraded is the fallback for when no trained contract is available:
// the input's own columns pass through unchanged and the result is flagged
// as degraded.
func AlignDegraded(in *encoding.Matrix) *Result {
	return &Result{Matrix: in.Clone(), Degraded: true}
}
