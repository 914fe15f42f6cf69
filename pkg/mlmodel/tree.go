package mlmodel

import (
	"fmt"
	"sort"
)

// treeNode is one node of a binary classification tree. Leaves keep the
// label distribution so probability estimates fall out of the leaf counts.
type treeNode struct {
	IsLeaf       bool      `json:"is_leaf"`
	FeatureIndex int       `json:"feature_index,omitempty"`
	Threshold    float64   `json:"threshold,omitempty"`
	Left         *treeNode `json:"left,omitempty"`
	Right        *treeNode `json:"right,omitempty"`
	Positives    int       `json:"positives"`
	Samples      int       `json:"samples"`
}

func (n *treeNode) proba() float64 {
	if n.Samples == 0 {
		return 0
	}
	return float64(n.Positives) / float64(n.Samples)
}

// DecisionTree is a CART-style binary classifier splitting on Gini impurity.
// It is the building block of RandomForest but usable standalone.
type DecisionTree struct {
	Root            *treeNode `json:"root"`
	MaxDepth        int       `json:"max_depth"`
	MinSamplesSplit int       `json:"min_samples_split"`
	MinSamplesLeaf  int       `json:"min_samples_leaf"`
	Features        []string  `json:"feature_names"`
	NumFeatures     int       `json:"num_features"`
}

// NewDecisionTree creates a tree with the given hyperparameters; zero or
// negative values fall back to defaults.
func NewDecisionTree(maxDepth, minSamplesSplit, minSamplesLeaf int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}
	if minSamplesLeaf <= 0 {
		minSamplesLeaf = 1
	}
	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
	}
}

// Fit builds the tree from a feature matrix and binary labels.
func (dt *DecisionTree) Fit(X [][]float64, y []int, featureNames []string) error {
	if err := checkFitInput(X, y, featureNames); err != nil {
		return err
	}

	dt.Features = append([]string{}, featureNames...)
	dt.NumFeatures = len(X[0])

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	dt.Root = dt.build(X, y, indices, 0)
	return nil
}

func (dt *DecisionTree) build(X [][]float64, y []int, indices []int, depth int) *treeNode {
	node := &treeNode{Samples: len(indices)}
	for _, idx := range indices {
		node.Positives += y[idx]
	}

	pure := node.Positives == 0 || node.Positives == node.Samples
	if depth >= dt.MaxDepth || len(indices) < dt.MinSamplesSplit || pure {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := dt.bestSplit(X, y, indices)
	if gain <= 0 {
		node.IsLeaf = true
		return node
	}

	left, right := partition(X, indices, feature, threshold)
	if len(left) < dt.MinSamplesLeaf || len(right) < dt.MinSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.FeatureIndex = feature
	node.Threshold = threshold
	node.Left = dt.build(X, y, left, depth+1)
	node.Right = dt.build(X, y, right, depth+1)
	return node
}

func (dt *DecisionTree) bestSplit(X [][]float64, y []int, indices []int) (int, float64, float64) {
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	parent := giniBinary(y, indices)
	n := float64(len(indices))

	for feature := 0; feature < dt.NumFeatures; feature++ {
		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = X[idx][feature]
		}

		for _, threshold := range midpointThresholds(values) {
			left, right := partition(X, indices, feature, threshold)
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			weighted := (float64(len(left))/n)*giniBinary(y, left) +
				(float64(len(right))/n)*giniBinary(y, right)
			if gain := parent - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// Predict returns 0/1 indicators thresholded at probability 0.5.
func (dt *DecisionTree) Predict(X [][]float64) ([]int, error) {
	probs, err := dt.PredictProba(X)
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

// PredictProba returns the positive-class fraction of the matched leaf.
func (dt *DecisionTree) PredictProba(X [][]float64) ([]float64, error) {
	if dt.Root == nil {
		return nil, fmt.Errorf("model not trained")
	}
	probs := make([]float64, len(X))
	for i, row := range X {
		if len(row) != dt.NumFeatures {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, dt.NumFeatures, len(row))
		}
		probs[i] = dt.leaf(dt.Root, row).proba()
	}
	return probs, nil
}

func (dt *DecisionTree) leaf(node *treeNode, x []float64) *treeNode {
	if node.IsLeaf {
		return node
	}
	if x[node.FeatureIndex] <= node.Threshold {
		return dt.leaf(node.Left, x)
	}
	return dt.leaf(node.Right, x)
}

// FeatureNames returns the ordered training-time feature columns.
func (dt *DecisionTree) FeatureNames() []string {
	return dt.Features
}

// Type returns the model type identifier.
func (dt *DecisionTree) Type() string {
	return "decision_tree"
}

// FeatureImportance scores each feature by the sample-weighted number of
// splits it participates in, normalized to sum to 1.
func (dt *DecisionTree) FeatureImportance() map[string]float64 {
	importance := make(map[string]float64, len(dt.Features))
	for _, name := range dt.Features {
		importance[name] = 0
	}
	var walk func(*treeNode)
	walk = func(n *treeNode) {
		if n == nil || n.IsLeaf {
			return
		}
		importance[dt.Features[n.FeatureIndex]] += float64(n.Samples)
		walk(n.Left)
		walk(n.Right)
	}
	walk(dt.Root)

	total := 0.0
	for _, v := range importance {
		total += v
	}
	if total > 0 {
		for name := range importance {
			importance[name] /= total
		}
	}
	return importance
}

func giniBinary(y []int, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	pos := 0
	for _, idx := range indices {
		pos += y[idx]
	}
	p := float64(pos) / float64(len(indices))
	return 2 * p * (1 - p)
}

func partition(X [][]float64, indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

func midpointThresholds(values []float64) []float64 {
	unique := make([]float64, 0, len(values))
	seen := make(map[float64]bool)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	if len(unique) < 2 {
		return nil
	}
	sort.Float64s(unique)

	thresholds := make([]float64, len(unique)-1)
	for i := 0; i < len(unique)-1; i++ {
		thresholds[i] = (unique[i] + unique[i+1]) / 2
	}
	return thresholds
}
