// Package explore produces descriptive statistics for a booking dataset.
// It consumes the cleaned table and emits a report; nothing here feeds back
// into the training pipeline.
package explore

import (
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/hotelops/bookingrisk/pkg/dataset"
	"github.com/hotelops/bookingrisk/pkg/schema"
)

// NumericSummary holds descriptive statistics for one numeric column.
type NumericSummary struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// CategoryCount is one category value with its frequency.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalSummary holds the distinct-value profile of one categorical column.
type CategoricalSummary struct {
	Column   string          `json:"column"`
	Distinct int             `json:"distinct"`
	Top      []CategoryCount `json:"top"`
}

// Report is the full descriptive profile of a dataset.
type Report struct {
	Rows             int                  `json:"rows"`
	Columns          int                  `json:"columns"`
	CancellationRate float64              `json:"cancellation_rate"`
	Numeric          []NumericSummary     `json:"numeric"`
	Categorical      []CategoricalSummary `json:"categorical"`
}

// topN caps the reported category values per column.
const topN = 10

// Summarize profiles the table's registry-known columns.
func Summarize(t *dataset.Table) *Report {
	report := &Report{Rows: len(t.Rows), Columns: len(t.Columns)}

	for _, col := range schema.NumericColumns() {
		if !t.HasColumn(col) {
			continue
		}
		report.Numeric = append(report.Numeric, summarizeNumeric(t, col))
	}
	for _, col := range schema.CategoricalColumns() {
		if !t.HasColumn(col) {
			continue
		}
		report.Categorical = append(report.Categorical, summarizeCategorical(t, col))
	}

	if t.HasColumn(schema.TargetColumn) {
		canceled := 0
		for _, row := range t.Rows {
			if row[schema.TargetColumn] == "1" {
				canceled++
			}
		}
		if len(t.Rows) > 0 {
			report.CancellationRate = float64(canceled) / float64(len(t.Rows))
		}
	}
	return report
}

func summarizeNumeric(t *dataset.Table, col string) NumericSummary {
	s := NumericSummary{Column: col}

	var values []float64
	for _, row := range t.Rows {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			s.Missing++
			continue
		}
		values = append(values, v)
	}
	s.Count = len(values)
	if len(values) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(values)
	s.Median, _ = stats.Median(values)
	s.StdDev, _ = stats.StandardDeviation(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	return s
}

func summarizeCategorical(t *dataset.Table, col string) CategoricalSummary {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		v := row[col]
		if v == "" {
			v = "Unknown"
		}
		counts[v]++
	}

	all := make([]CategoryCount, 0, len(counts))
	for v, c := range counts {
		all = append(all, CategoryCount{Value: v, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Value < all[j].Value
	})

	top := all
	if len(top) > topN {
		top = top[:topN]
	}
	return CategoricalSummary{Column: col, Distinct: len(counts), Top: top}
}
