package mlmodel

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler normalizes each column to zero mean and unit standard
// deviation. It is fitted on the training partition only and its parameters
// are persisted as part of the trained feature contract.
type StandardScaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// FitScaler computes per-column mean and standard deviation from X.
// Zero-variance columns get scale 1 so transformed values stay finite.
func FitScaler(X [][]float64, columns []string) (*StandardScaler, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("empty data")
	}
	if len(columns) != len(X[0]) {
		return nil, fmt.Errorf("column names must match number of features")
	}

	n := len(X)
	cols := len(columns)
	s := &StandardScaler{
		Columns: append([]string{}, columns...),
		Mean:    make([]float64, cols),
		Scale:   make([]float64, cols),
	}

	buf := make([]float64, n)
	for j := 0; j < cols; j++ {
		for i := 0; i < n; i++ {
			buf[i] = X[i][j]
		}
		s.Mean[j] = stat.Mean(buf, nil)
		sd := stat.StdDev(buf, nil)
		if sd == 0 || n == 1 {
			sd = 1
		}
		s.Scale[j] = sd
	}
	return s, nil
}

// Transform returns a scaled copy of X. The column count must match the
// fitted parameters.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if len(X) > 0 && len(X[0]) != len(s.Mean) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(s.Mean), len(X[0]))
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}
