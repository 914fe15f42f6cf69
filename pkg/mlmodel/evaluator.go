package mlmodel

import "fmt"

// Metrics holds binary classification metrics for the positive
// (cancellation) class.
type Metrics struct {
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	TruePositives  int     `json:"true_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	TotalSamples   int     `json:"total_samples"`
}

// Evaluate runs the classifier on X and scores predictions against yTrue.
func Evaluate(c Classifier, X [][]float64, yTrue []int) (*Metrics, error) {
	if len(X) == 0 || len(yTrue) == 0 {
		return nil, fmt.Errorf("empty evaluation data")
	}
	if len(X) != len(yTrue) {
		return nil, fmt.Errorf("X and yTrue must have same length")
	}

	yPred, err := c.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("prediction failed during evaluation: %w", err)
	}
	return CalculateMetrics(yTrue, yPred)
}

// CalculateMetrics computes accuracy, precision, recall and F1 from binary
// labels, with 1 as the positive class.
func CalculateMetrics(yTrue, yPred []int) (*Metrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("yTrue and yPred must have same length")
	}

	m := &Metrics{TotalSamples: len(yTrue)}
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			m.TruePositives++
		case yTrue[i] == 0 && yPred[i] == 0:
			m.TrueNegatives++
		case yTrue[i] == 0 && yPred[i] == 1:
			m.FalsePositives++
		default:
			m.FalseNegatives++
		}
	}

	m.Accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(m.TotalSamples)
	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m, nil
}
