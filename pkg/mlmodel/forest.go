package mlmodel

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// RandomForest is a bagged ensemble of decision trees with per-tree random
// feature subsets. Probability estimates are the mean of the member trees'
// leaf probabilities.
type RandomForest struct {
	Trees           []*DecisionTree `json:"trees"`
	TreeFeatures    [][]int         `json:"tree_features"`
	NumTrees        int             `json:"num_trees"`
	MaxDepth        int             `json:"max_depth"`
	MinSamplesSplit int             `json:"min_samples_split"`
	MinSamplesLeaf  int             `json:"min_samples_leaf"`
	MaxFeatures     int             `json:"max_features"`
	Seed            int64           `json:"seed"`
	Features        []string        `json:"feature_names"`
	NumFeatures     int             `json:"num_features"`
}

// NewRandomForest creates a forest with the given hyperparameters; zero or
// negative values fall back to defaults matching the trained baseline
// (100 trees, depth 15, min split 10, min leaf 5).
func NewRandomForest(numTrees, maxDepth, minSamplesSplit, minSamplesLeaf int) *RandomForest {
	if numTrees <= 0 {
		numTrees = 100
	}
	if maxDepth <= 0 {
		maxDepth = 15
	}
	if minSamplesSplit <= 0 {
		minSamplesSplit = 10
	}
	if minSamplesLeaf <= 0 {
		minSamplesLeaf = 5
	}
	return &RandomForest{
		NumTrees:        numTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
		Seed:            42,
	}
}

// Fit trains the forest. Member trees fit concurrently; each gets its own
// deterministic RNG derived from the forest seed so runs are reproducible.
func (rf *RandomForest) Fit(X [][]float64, y []int, featureNames []string) error {
	if err := checkFitInput(X, y, featureNames); err != nil {
		return err
	}

	rf.Features = append([]string{}, featureNames...)
	rf.NumFeatures = len(X[0])
	rf.MaxFeatures = int(math.Sqrt(float64(rf.NumFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NumTrees)
	rf.TreeFeatures = make([][]int, rf.NumTrees)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var fitErrs []error

	for i := 0; i < rf.NumTrees; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(rf.Seed + int64(treeIdx)))

			bootX, bootY := bootstrapSample(X, y, rng)
			selected := sampleFeatures(rf.NumFeatures, rf.MaxFeatures, rng)
			subX, subNames := projectFeatures(bootX, rf.Features, selected)

			tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit, rf.MinSamplesLeaf)
			if err := tree.Fit(subX, bootY, subNames); err != nil {
				mu.Lock()
				fitErrs = append(fitErrs, fmt.Errorf("tree %d training failed: %w", treeIdx, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			rf.Trees[treeIdx] = tree
			rf.TreeFeatures[treeIdx] = selected
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if len(fitErrs) > 0 {
		return fitErrs[0]
	}
	return nil
}

// Predict returns 0/1 indicators thresholded at probability 0.5.
func (rf *RandomForest) Predict(X [][]float64) ([]int, error) {
	probs, err := rf.PredictProba(X)
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

// PredictProba averages positive-class probabilities across member trees.
func (rf *RandomForest) PredictProba(X [][]float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, fmt.Errorf("model not trained")
	}

	probs := make([]float64, len(X))
	for i, row := range X {
		if len(row) != rf.NumFeatures {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, rf.NumFeatures, len(row))
		}
		sum := 0.0
		for t, tree := range rf.Trees {
			sub := make([]float64, len(rf.TreeFeatures[t]))
			for k, fi := range rf.TreeFeatures[t] {
				sub[k] = row[fi]
			}
			p, err := tree.PredictProba([][]float64{sub})
			if err != nil {
				return nil, fmt.Errorf("tree %d prediction failed: %w", t, err)
			}
			sum += p[0]
		}
		probs[i] = sum / float64(len(rf.Trees))
	}
	return probs, nil
}

// FeatureNames returns the ordered training-time feature columns.
func (rf *RandomForest) FeatureNames() []string {
	return rf.Features
}

// Type returns the model type identifier.
func (rf *RandomForest) Type() string {
	return TypeRandomForest
}

// FeatureImportance aggregates per-tree split importance back onto the
// full feature set, normalized to sum to 1.
func (rf *RandomForest) FeatureImportance() map[string]float64 {
	importance := make(map[string]float64, len(rf.Features))
	for _, name := range rf.Features {
		importance[name] = 0
	}
	for _, tree := range rf.Trees {
		for name, v := range tree.FeatureImportance() {
			importance[name] += v
		}
	}

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

func bootstrapSample(X [][]float64, y []int, rng *rand.Rand) ([][]float64, []int) {
	n := len(X)
	bootX := make([][]float64, n)
	bootY := make([]int, n)
	for i := 0; i < n; i++ {
		idx := rng.Intn(n)
		bootX[i] = X[idx]
		bootY[i] = y[idx]
	}
	return bootX, bootY
}

func sampleFeatures(total, k int, rng *rand.Rand) []int {
	perm := rng.Perm(total)
	selected := append([]int{}, perm[:k]...)
	sort.Ints(selected)
	return selected
}

func projectFeatures(X [][]float64, names []string, selected []int) ([][]float64, []string) {
	subX := make([][]float64, len(X))
	for i, row := range X {
		sub := make([]float64, len(selected))
		for k, fi := range selected {
			sub[k] = row[fi]
		}
		subX[i] = sub
	}
	subNames := make([]string, len(selected))
	for k, fi := range selected {
		subNames[k] = names[fi]
	}
	return subX, subNames
}
