package encoding

import (
	"fmt"
	"sort"

	"github.com/hotelops/bookingrisk/pkg/features"
)

// EncodeIndicator builds an indicator-encoded feature matrix from derived
// rows. Numeric columns come first in sorted name order, followed by the
// "column=value" indicator columns, also sorted. Distinct value sets are
// batch-local: reconciliation against the trained contract is the column
// aligner's job, not the encoder's.
func EncodeIndicator(rows []features.Row) *Matrix {
	numericSet := make(map[string]bool)
	valueSets := make(map[string]map[string]bool)

	for _, row := range rows {
		for name := range row.Numeric {
			numericSet[name] = true
		}
		for col, val := range row.Categorical {
			if valueSets[col] == nil {
				valueSets[col] = make(map[string]bool)
			}
			valueSets[col][val] = true
		}
	}

	numericCols := sortedKeys(numericSet)

	// Drop-first convention: the lexicographically first value of each
	// column is the implicit baseline and gets no indicator column.
	var indicatorCols []string
	baseline := make(map[string]string)
	for col, vals := range valueSets {
		ordered := sortedKeys(vals)
		baseline[col] = ordered[0]
		for _, v := range ordered[1:] {
			indicatorCols = append(indicatorCols, IndicatorName(col, v))
		}
	}
	sort.Strings(indicatorCols)

	columns := append(append([]string{}, numericCols...), indicatorCols...)
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	m := &Matrix{Columns: columns, Rows: make([][]float64, len(rows))}
	for i, row := range rows {
		vec := make([]float64, len(columns))
		for name, v := range row.Numeric {
			vec[index[name]] = v
		}
		for col, val := range row.Categorical {
			if val == baseline[col] {
				continue
			}
			if j, ok := index[IndicatorName(col, val)]; ok {
				vec[j] = 1
			}
		}
		m.Rows[i] = vec
	}
	return m
}

// IndicatorName returns the feature column name for one category value.
func IndicatorName(column, value string) string {
	return fmt.Sprintf("%s=%s", column, value)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
