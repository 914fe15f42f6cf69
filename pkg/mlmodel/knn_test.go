package mlmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knnTrainingData() ([][]float64, []int, []string) {
	X := [][]float64{
		{0, 0}, {0.2, 0.1}, {0.1, 0.3}, {0.3, 0.2},
		{5, 5}, {5.2, 4.9}, {4.8, 5.1}, {5.1, 5.3},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y, []string{"lead_time", "total_guests"}
}

func TestKNNFitAndPredict(t *testing.T) {
	X, y, names := knnTrainingData()

	c := NewKNN(3)
	require.NoError(t, c.Fit(X, y, names))

	preds, err := c.Predict([][]float64{{0.1, 0.1}, {5, 5.1}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, preds)
}

func TestKNNProbabilitiesAreHardVotes(t *testing.T) {
	X, y, names := knnTrainingData()
	c := NewKNN(3)
	require.NoError(t, c.Fit(X, y, names))

	probs, err := c.PredictProba([][]float64{{0, 0.1}, {5.1, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, probs)
}

func TestKNNDefaults(t *testing.T) {
	assert.Equal(t, 5, NewKNN(0).K)
	assert.Equal(t, 7, NewKNN(7).K)
}

func TestKNNUntrainedPredictFails(t *testing.T) {
	c := NewKNN(3)
	_, err := c.Predict([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestKNNSerializationRefitsOnLoad(t *testing.T) {
	X, y, names := knnTrainingData()
	c := NewKNN(3)
	require.NoError(t, c.Fit(X, y, names))

	data, err := Marshal(c)
	require.NoError(t, err)

	restored, err := Unmarshal(TypeKNN, data)
	require.NoError(t, err)
	assert.Equal(t, names, restored.FeatureNames())

	probe := [][]float64{{0.2, 0.2}, {4.9, 5}}
	want, err := c.Predict(probe)
	require.NoError(t, err)
	got, err := restored.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
