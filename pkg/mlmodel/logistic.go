package mlmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is a binary logistic classifier trained with batch
// gradient descent on weighted log loss. Class weights are balanced the way
// the training data is skewed, so the minority (canceled) class is not
// drowned out.
type LogisticRegression struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Features     []string  `json:"feature_names"`
	LearningRate float64   `json:"learning_rate"`
	Iterations   int       `json:"iterations"`
}

// NewLogisticRegression creates an untrained logistic regression model with
// default hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		Iterations:   500,
	}
}

// Fit trains the model. Inputs are expected to be scaled; gradient descent
// on raw booking magnitudes (lead_time up to ~700) would not converge.
func (lr *LogisticRegression) Fit(X [][]float64, y []int, featureNames []string) error {
	if err := checkFitInput(X, y, featureNames); err != nil {
		return err
	}

	n := len(X)
	cols := len(X[0])
	lr.Features = append([]string{}, featureNames...)
	lr.Weights = make([]float64, cols)
	lr.Bias = 0

	// Balanced class weights: n / (2 * class count).
	pos := 0
	for _, label := range y {
		pos += label
	}
	neg := n - pos
	if pos == 0 || neg == 0 {
		return fmt.Errorf("training data contains a single class")
	}
	wPos := float64(n) / (2 * float64(pos))
	wNeg := float64(n) / (2 * float64(neg))

	grad := make([]float64, cols)
	for iter := 0; iter < lr.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, row := range X {
			p := sigmoid(floats.Dot(lr.Weights, row) + lr.Bias)
			w := wNeg
			if y[i] == 1 {
				w = wPos
			}
			residual := w * (p - float64(y[i]))
			floats.AddScaled(grad, residual, row)
			gradBias += residual
		}

		step := lr.LearningRate / float64(n)
		floats.AddScaled(lr.Weights, -step, grad)
		lr.Bias -= step * gradBias
	}
	return nil
}

// Predict returns 0/1 indicators thresholded at probability 0.5.
func (lr *LogisticRegression) Predict(X [][]float64) ([]int, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	preds := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			preds[i] = 1
		}
	}
	return preds, nil
}

// PredictProba returns the positive-class probability per row.
func (lr *LogisticRegression) PredictProba(X [][]float64) ([]float64, error) {
	if lr.Weights == nil {
		return nil, fmt.Errorf("model not trained")
	}
	probs := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(lr.Weights) {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, len(lr.Weights), len(row))
		}
		probs[i] = sigmoid(floats.Dot(lr.Weights, row) + lr.Bias)
	}
	return probs, nil
}

// FeatureNames returns the ordered training-time feature columns.
func (lr *LogisticRegression) FeatureNames() []string {
	return lr.Features
}

// Type returns the model type identifier.
func (lr *LogisticRegression) Type() string {
	return TypeLogisticRegression
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
