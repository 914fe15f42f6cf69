// Package features computes the derived numeric features of a booking
// record. Derivation is a pure function of the raw cells: numeric cells that
// fail to parse become missing and later fill to zero, while an unrecognised
// arrival month is a hard failure.
package features

import (
	"strconv"

	"github.com/hotelops/bookingrisk/pkg/dataset"
	"github.com/hotelops/bookingrisk/pkg/schema"
)

// Row is one booking after derivation. Numeric holds raw numeric columns
// plus derived features; Categorical holds raw string columns plus the
// derived season. Missing numeric values are simply absent from the map and
// fill to zero when the feature matrix is built.
type Row struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Batch is the derived form of an input table plus batch-level warnings.
type Batch struct {
	Rows []Row
	// MissingColumns lists expected raw columns absent from the input.
	// Non-empty means alignment will have to zero-fill; callers should
	// surface this as a schema mismatch warning.
	MissingColumns []string
}

// Derive converts a raw table into derived rows. It fails only on an
// unknown arrival month string; every other data-quality problem is
// recovered locally.
func Derive(t *dataset.Table) (*Batch, error) {
	var expected []string
	expected = append(expected, schema.NumericColumns()...)
	expected = append(expected, schema.CategoricalColumns()...)

	batch := &Batch{
		Rows:           make([]Row, 0, len(t.Rows)),
		MissingColumns: t.MissingColumns(expected),
	}

	for i, raw := range t.Rows {
		row, err := deriveRow(raw, i)
		if err != nil {
			return nil, err
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

func deriveRow(raw map[string]string, rowIdx int) (Row, error) {
	row := Row{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}

	for _, col := range schema.NumericColumns() {
		cell, ok := raw[col]
		if !ok || cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			// Numeric coercion failures are never fatal; the value
			// stays missing and fills to zero downstream.
			continue
		}
		row.Numeric[col] = v
	}

	for _, col := range schema.CategoricalColumns() {
		cell, ok := raw[col]
		if !ok {
			continue
		}
		if cell == "" {
			cell = "Unknown"
		}
		row.Categorical[col] = cell
	}

	// total_guests: nulls in children and babies count as zero.
	row.Numeric[schema.FeatureTotalGuests] = row.Numeric["adults"] +
		row.Numeric["children"] + row.Numeric["babies"]

	// total_nights
	row.Numeric[schema.FeatureTotalNights] = row.Numeric["stays_in_weekend_nights"] +
		row.Numeric["stays_in_week_nights"]

	// Temporal decomposition. A missing month column or empty cell skips
	// derivation for the row; a present but unrecognised month name fails.
	if month, ok := raw[schema.ColumnArrivalMonth]; ok && month != "" {
		num, err := schema.MonthNumber(month)
		if err != nil {
			if uc, isUC := err.(*schema.UnknownCategoryError); isUC {
				uc.Row = rowIdx
			}
			return Row{}, err
		}
		row.Numeric[schema.FeatureArrivalMonthNum] = float64(num)

		season, err := schema.Season(num)
		if err != nil {
			return Row{}, err
		}
		row.Categorical[schema.FeatureSeason] = season
	}

	row.Numeric[schema.FeatureHasChildren] = thresholdFlag(row.Numeric["children"])
	row.Numeric[schema.FeatureHasBabies] = thresholdFlag(row.Numeric["babies"])
	row.Numeric[schema.FeatureHasSpecialRequests] = thresholdFlag(row.Numeric["total_of_special_requests"])

	return row, nil
}

func thresholdFlag(v float64) float64 {
	if v > 0 {
		return 1
	}
	return 0
}
