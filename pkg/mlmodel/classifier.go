// Package mlmodel provides the classifier capability behind the booking
// risk pipeline: a common Classifier interface, the candidate
// implementations (logistic regression, random forest, k-nearest
// neighbours), the numeric scaler, and binary evaluation metrics.
package mlmodel

import (
	"encoding/json"
	"fmt"
)

// Model type identifiers used in persisted artifacts and the run registry.
const (
	TypeLogisticRegression = "logistic_regression"
	TypeRandomForest       = "random_forest"
	TypeKNN                = "knn"
)

// Classifier is the pluggable classification capability. X rows must match
// the ordered feature list the classifier was fitted on; classifiers are
// order-sensitive.
type Classifier interface {
	// Fit trains the classifier on a feature matrix and binary labels.
	Fit(X [][]float64, y []int, featureNames []string) error
	// Predict returns one 0/1 indicator per row.
	Predict(X [][]float64) ([]int, error)
	// PredictProba returns the probability of the positive class
	// (cancellation) per row, each in [0,1].
	PredictProba(X [][]float64) ([]float64, error)
	// FeatureNames returns the ordered training-time feature columns.
	FeatureNames() []string
	// Type returns the model type identifier.
	Type() string
}

// New returns an untrained classifier of the given type.
func New(modelType string) (Classifier, error) {
	switch modelType {
	case TypeLogisticRegression:
		return NewLogisticRegression(), nil
	case TypeRandomForest:
		return NewRandomForest(0, 0, 0, 0), nil
	case TypeKNN:
		return NewKNN(0), nil
	default:
		return nil, fmt.Errorf("unknown model type: %s", modelType)
	}
}

// Marshal serializes a trained classifier to JSON.
func Marshal(c Classifier) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s model: %w", c.Type(), err)
	}
	return data, nil
}

// Unmarshal reconstructs a trained classifier from its type identifier and
// JSON payload.
func Unmarshal(modelType string, data []byte) (Classifier, error) {
	c, err := New(modelType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s model: %w", modelType, err)
	}
	if r, ok := c.(interface{ restore() error }); ok {
		if err := r.restore(); err != nil {
			return nil, fmt.Errorf("failed to restore %s model: %w", modelType, err)
		}
	}
	return c, nil
}

func checkFitInput(X [][]float64, y []int, featureNames []string) error {
	if len(X) == 0 || len(y) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("X and y must have same number of samples")
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features")
	}
	return nil
}
