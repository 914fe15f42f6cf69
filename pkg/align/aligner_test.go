package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/bookingrisk/pkg/encoding"
)

func matrix(columns []string, rows ...[]float64) *encoding.Matrix {
	return &encoding.Matrix{Columns: columns, Rows: rows}
}

func TestAlignExactMatchIsIdentity(t *testing.T) {
	contract := []string{"lead_time", "adr", "hotel=Resort Hotel"}
	in := matrix(contract, []float64{10, 85.5, 1})

	res := Align(in, contract)

	assert.Equal(t, contract, res.Matrix.Columns)
	assert.Equal(t, []float64{10, 85.5, 1}, res.Matrix.Rows[0])
	assert.Empty(t, res.ZeroFilled)
	assert.Empty(t, res.Dropped)
	assert.False(t, res.Degraded)
}

func TestAlignZeroFillsMissingContractColumns(t *testing.T) {
	contract := []string{"lead_time", "hotel=Resort Hotel", "meal=HB"}
	in := matrix([]string{"lead_time"}, []float64{42})

	res := Align(in, contract)

	assert.Equal(t, []float64{42, 0, 0}, res.Matrix.Rows[0])
	assert.Equal(t, []string{"hotel=Resort Hotel", "meal=HB"}, res.ZeroFilled)
}

func TestAlignDropsExtraColumns(t *testing.T) {
	contract := []string{"lead_time"}
	in := matrix([]string{"lead_time", "reservation_id"}, []float64{42, 9999})

	res := Align(in, contract)

	assert.Equal(t, []string{"lead_time"}, res.Matrix.Columns)
	assert.Equal(t, []float64{42}, res.Matrix.Rows[0])
	assert.Equal(t, []string{"reservation_id"}, res.Dropped)
}

func TestAlignReorders(t *testing.T) {
	contract := []string{"b", "a", "c"}
	in := matrix([]string{"a", "b", "c"}, []float64{1, 2, 3})

	res := Align(in, contract)
	assert.Equal(t, []float64{2, 1, 3}, res.Matrix.Rows[0])
}

func TestAlignDisjointColumns(t *testing.T) {
	contract := []string{"x", "y"}
	in := matrix([]string{"a"}, []float64{7}, []float64{8})

	res := Align(in, contract)

	require.Len(t, res.Matrix.Rows, 2)
	assert.Equal(t, []float64{0, 0}, res.Matrix.Rows[0])
	assert.Equal(t, []float64{0, 0}, res.Matrix.Rows[1])
	assert.Equal(t, []string{"x", "y"}, res.ZeroFilled)
	assert.Equal(t, []string{"a"}, res.Dropped)
}

func TestAlignIsIdempotent(t *testing.T) {
	contract := []string{"b", "a"}
	in := matrix([]string{"a", "c"}, []float64{1, 5})

	once := Align(in, contract)
	twice := Align(once.Matrix, contract)

	assert.Equal(t, once.Matrix, twice.Matrix)
	assert.Empty(t, twice.ZeroFilled)
	assert.Empty(t, twice.Dropped)
}

func TestAlignDegraded(t *testing.T) {
	in := matrix([]string{"a"}, []float64{1})

	res := AlignDegraded(in)

	assert.True(t, res.Degraded)
	assert.Equal(t, in.Columns, res.Matrix.Columns)
	assert.Equal(t, in.Rows, res.Matrix.Rows)

	// The degraded result is a copy, not an alias.
	res.Matrix.Rows[0][0] = 99
	assert.Equal(t, 1.0, in.Rows[0][0])
}
