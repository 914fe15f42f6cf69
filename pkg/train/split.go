package train

import (
	"fmt"
	"math/rand"
)

// Split holds the train/test partitions of a feature matrix.
type Split struct {
	TrainX [][]float64
	TrainY []int
	TestX  [][]float64
	TestY  []int
}

// StratifiedSplit shuffles and partitions the data so each class keeps its
// share of the train/test ratio. The seed fixes the shuffle for
// reproducibility. Every class with at least two samples keeps one on each
// side; a single-sample class lands entirely in the test partition.
func StratifiedSplit(X [][]float64, y []int, testSize float64, seed int64) (*Split, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("empty data")
	}
	if len(y) != n {
		return nil, fmt.Errorf("X and y must have same number of samples")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, fmt.Errorf("test size must be in (0,1), got %v", testSize)
	}

	rng := rand.New(rand.NewSource(seed))

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	byClass := make(map[int][]int)
	for _, idx := range indices {
		byClass[y[idx]] = append(byClass[y[idx]], idx)
	}

	var trainIdx, testIdx []int
	for _, samples := range byClass {
		cut := int(float64(len(samples)) * (1 - testSize))
		if cut == 0 && len(samples) > 0 {
			cut = 1
		}
		if cut >= len(samples) {
			cut = len(samples) - 1
		}
		trainIdx = append(trainIdx, samples[:cut]...)
		testIdx = append(testIdx, samples[cut:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) {
		trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
	})
	rng.Shuffle(len(testIdx), func(i, j int) {
		testIdx[i], testIdx[j] = testIdx[j], testIdx[i]
	})

	split := &Split{}
	split.TrainX, split.TrainY = selectByIndices(X, y, trainIdx)
	split.TestX, split.TestY = selectByIndices(X, y, testIdx)
	return split, nil
}

func selectByIndices(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		outX[i] = X[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}
