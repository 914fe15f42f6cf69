// Package schema is the canonical registry of raw booking columns, their
// semantic types, and the fixed set of derived features. Training and
// inference both resolve column types here so the two paths cannot drift.
package schema

import "fmt"

// TargetColumn is the label column predicted by the classifier.
const TargetColumn = "is_canceled"

// ColumnArrivalMonth is the raw month-name column. It gets special handling
// throughout: month parsing is exact-match, so the "Unknown" fill sentinel
// must never be written into it.
const ColumnArrivalMonth = "arrival_date_month"

// Derived feature names.
const (
	FeatureTotalGuests        = "total_guests"
	FeatureTotalNights        = "total_nights"
	FeatureArrivalMonthNum    = "arrival_month_num"
	FeatureSeason             = "season"
	FeatureHasChildren        = "has_children"
	FeatureHasBabies          = "has_babies"
	FeatureHasSpecialRequests = "has_special_requests"
)

// numericColumns lists the raw columns expected to hold numeric values.
var numericColumns = []string{
	"lead_time",
	"arrival_date_year",
	"arrival_date_week_number",
	"arrival_date_day_of_month",
	"stays_in_weekend_nights",
	"stays_in_week_nights",
	"adults",
	"children",
	"babies",
	"is_repeated_guest",
	"previous_cancellations",
	"previous_bookings_not_canceled",
	"booking_changes",
	"agent",
	"company",
	"days_in_waiting_list",
	"adr",
	"required_car_parking_spaces",
	"total_of_special_requests",
}

// categoricalColumns lists the raw columns expected to hold string categories.
var categoricalColumns = []string{
	"hotel",
	ColumnArrivalMonth,
	"meal",
	"country",
	"market_segment",
	"distribution_channel",
	"reserved_room_type",
	"assigned_room_type",
	"deposit_type",
	"customer_type",
}

// derivedNumericFeatures lists features computed from raw columns. Once
// computed they are treated exactly like raw numeric columns downstream.
var derivedNumericFeatures = []string{
	FeatureTotalGuests,
	FeatureTotalNights,
	FeatureArrivalMonthNum,
	FeatureHasChildren,
	FeatureHasBabies,
	FeatureHasSpecialRequests,
}

// derivedCategoricalFeatures lists derived string-valued features.
var derivedCategoricalFeatures = []string{
	FeatureSeason,
}

// FillValues are the per-column defaults applied to missing cells before
// derivation. Columns not listed here fall back to 0 (numeric) or the
// "Unknown" sentinel (categorical) at encoding time.
var FillValues = map[string]string{
	"children": "0",
	"country":  "Unknown",
	"agent":    "0",
	"company":  "0",
}

var monthNumbers = map[string]int{
	"January":   1,
	"February":  2,
	"March":     3,
	"April":     4,
	"May":       5,
	"June":      6,
	"July":      7,
	"August":    8,
	"September": 9,
	"October":   10,
	"November":  11,
	"December":  12,
}

// NumericColumns returns the ordered raw numeric column names.
func NumericColumns() []string {
	out := make([]string, len(numericColumns))
	copy(out, numericColumns)
	return out
}

// CategoricalColumns returns the ordered raw categorical column names.
func CategoricalColumns() []string {
	out := make([]string, len(categoricalColumns))
	copy(out, categoricalColumns)
	return out
}

// DerivedNumericFeatures returns the ordered derived numeric feature names.
func DerivedNumericFeatures() []string {
	out := make([]string, len(derivedNumericFeatures))
	copy(out, derivedNumericFeatures)
	return out
}

// DerivedCategoricalFeatures returns the ordered derived categorical feature names.
func DerivedCategoricalFeatures() []string {
	out := make([]string, len(derivedCategoricalFeatures))
	copy(out, derivedCategoricalFeatures)
	return out
}

// IsNumeric reports whether col is a raw numeric column.
func IsNumeric(col string) bool {
	for _, c := range numericColumns {
		if c == col {
			return true
		}
	}
	return false
}

// IsCategorical reports whether col is a raw categorical column.
func IsCategorical(col string) bool {
	for _, c := range categoricalColumns {
		if c == col {
			return true
		}
	}
	return false
}

// MonthNumber maps a canonical English month name to 1-12. The match is
// exact: there is no case-insensitive fallback, so any other string fails
// with an UnknownCategoryError.
func MonthNumber(name string) (int, error) {
	n, ok := monthNumbers[name]
	if !ok {
		return 0, &UnknownCategoryError{Column: ColumnArrivalMonth, Value: name, Row: -1}
	}
	return n, nil
}

// Season maps an arrival month number to its season bucket.
func Season(month int) (string, error) {
	switch month {
	case 12, 1, 2:
		return "Winter", nil
	case 3, 4, 5:
		return "Spring", nil
	case 6, 7, 8:
		return "Summer", nil
	case 9, 10, 11:
		return "Fall", nil
	default:
		return "", fmt.Errorf("month number out of range: %d", month)
	}
}
