package schema

import "fmt"

// UnknownCategoryError reports a categorical value that is not covered by a
// fixed vocabulary or the month table.
type UnknownCategoryError struct {
	Column string
	Value  string
	Row    int // -1 when the row is not known
}

func (e *UnknownCategoryError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("unknown category %q in column %q (row %d)", e.Value, e.Column, e.Row)
	}
	return fmt.Sprintf("unknown category %q in column %q", e.Value, e.Column)
}

// SchemaMismatchError reports raw columns that are entirely absent from an
// input batch. It is surfaced as a warning: the pipeline proceeds with
// degraded alignment rather than aborting.
type SchemaMismatchError struct {
	MissingColumns []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("input batch is missing %d expected columns: %v", len(e.MissingColumns), e.MissingColumns)
}
