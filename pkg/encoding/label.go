package encoding

import (
	"sort"

	"github.com/hotelops/bookingrisk/pkg/features"
	"github.com/hotelops/bookingrisk/pkg/schema"
)

// Vocabulary maps category strings to integer indices for one column.
// Indices are assigned in sorted lexicographic order at fit time; this rule
// is fixed because it determines index values and therefore model
// compatibility across runs.
type Vocabulary map[string]int

// ReservedIndex is the index assigned to categories outside the vocabulary
// when unknown coercion is enabled. It is always len(vocab), one past the
// largest fitted index.
func (v Vocabulary) ReservedIndex() int {
	return len(v)
}

// LabelEncoder encodes categorical columns as integer indices through
// per-column vocabularies fitted once on the training set.
type LabelEncoder struct {
	Vocabularies map[string]Vocabulary `json:"vocabularies"`
	// CoerceUnknown maps out-of-vocabulary values to the reserved index
	// instead of failing. Recommended for inference robustness.
	CoerceUnknown bool `json:"coerce_unknown"`
}

// FitLabelEncoder builds vocabularies from the categorical values observed
// in the given rows.
func FitLabelEncoder(rows []features.Row) *LabelEncoder {
	valueSets := make(map[string]map[string]bool)
	for _, row := range rows {
		for col, val := range row.Categorical {
			if valueSets[col] == nil {
				valueSets[col] = make(map[string]bool)
			}
			valueSets[col][val] = true
		}
	}

	enc := &LabelEncoder{Vocabularies: make(map[string]Vocabulary)}
	for col, vals := range valueSets {
		ordered := sortedKeys(vals)
		vocab := make(Vocabulary, len(ordered))
		for i, v := range ordered {
			vocab[v] = i
		}
		enc.Vocabularies[col] = vocab
	}
	return enc
}

// Encode builds a label-indexed feature matrix. Numeric columns come first
// in sorted name order, then one integer column per categorical column in
// sorted column-name order. A value outside the vocabulary coerces to the
// reserved index when CoerceUnknown is set, and fails with
// UnknownCategoryError otherwise.
func (e *LabelEncoder) Encode(rows []features.Row) (*Matrix, error) {
	numericSet := make(map[string]bool)
	for _, row := range rows {
		for name := range row.Numeric {
			numericSet[name] = true
		}
	}
	numericCols := sortedKeys(numericSet)

	catCols := make([]string, 0, len(e.Vocabularies))
	for col := range e.Vocabularies {
		catCols = append(catCols, col)
	}
	sort.Strings(catCols)

	columns := append(append([]string{}, numericCols...), catCols...)
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	m := &Matrix{Columns: columns, Rows: make([][]float64, len(rows))}
	for i, row := range rows {
		vec := make([]float64, len(columns))
		for name, v := range row.Numeric {
			if j, ok := index[name]; ok {
				vec[j] = v
			}
		}
		for _, col := range catCols {
			val, ok := row.Categorical[col]
			if !ok {
				val = "Unknown"
			}
			vocab := e.Vocabularies[col]
			idx, known := vocab[val]
			if !known {
				if !e.CoerceUnknown {
					return nil, &schema.UnknownCategoryError{Column: col, Value: val, Row: i}
				}
				idx = vocab.ReservedIndex()
			}
			vec[index[col]] = float64(idx)
		}
		m.Rows[i] = vec
	}
	return m, nil
}
