package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/bookingrisk/pkg/encoding"
	"github.com/hotelops/bookingrisk/pkg/mlmodel"
)

func trainedBundle(t *testing.T) *Bundle {
	t.Helper()

	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []int{0, 0, 1, 1}
	cols := []string{"lead_time", "total_guests"}

	lr := mlmodel.NewLogisticRegression()
	require.NoError(t, lr.Fit(X, y, cols))

	raw, err := mlmodel.Marshal(lr)
	require.NoError(t, err)

	return &Bundle{
		RunID:     "run-test",
		TrainedAt: time.Now().UTC(),
		ModelType: mlmodel.TypeLogisticRegression,
		Contract: FeatureContract{
			Columns:  cols,
			Strategy: encoding.StrategyIndicator,
			Scaler: &mlmodel.StandardScaler{
				Columns: cols,
				Mean:    []float64{0.5, 0.5},
				Scale:   []float64{0.5, 0.5},
			},
		},
		Model: raw,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := trainedBundle(t)
	path := filepath.Join(t.TempDir(), "artifacts", "model.json")

	require.NoError(t, Save(b, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, b.RunID, loaded.RunID)
	assert.Equal(t, b.ModelType, loaded.ModelType)
	assert.Equal(t, b.Contract.Columns, loaded.Contract.Columns)
	assert.Equal(t, b.Contract.Scaler.Mean, loaded.Contract.Scaler.Mean)

	c, err := loaded.Classifier()
	require.NoError(t, err)
	assert.Equal(t, b.Contract.Columns, c.FeatureNames())

	probs, err := c.PredictProba([][]float64{{1, 1}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0], 0.5)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, Save(trainedBundle(t), path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "model.json", entries[0].Name())
}

func TestLoadMissingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	_, err := Load(path)
	require.Error(t, err)

	var ae *ArtifactError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, path, ae.Path)
}

func TestLoadMalformedArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	var ae *ArtifactError
	require.ErrorAs(t, err, &ae)
}

func TestValidateSkew(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Bundle)
	}{
		{"no columns", func(b *Bundle) { b.Contract.Columns = nil }},
		{"no scaler", func(b *Bundle) { b.Contract.Scaler = nil }},
		{"scaler column mismatch", func(b *Bundle) { b.Contract.Scaler.Mean = []float64{0.5} }},
		{"mean scale mismatch", func(b *Bundle) { b.Contract.Scaler.Scale = append(b.Contract.Scaler.Scale, 1) }},
		{"bad strategy", func(b *Bundle) { b.Contract.Strategy = "ordinal" }},
		{"label without vocabularies", func(b *Bundle) { b.Contract.Strategy = encoding.StrategyLabel }},
		{"indicator with vocabularies", func(b *Bundle) {
			b.Contract.Vocabularies = map[string]encoding.Vocabulary{"hotel": {"City Hotel": 0}}
		}},
		{"no model", func(b *Bundle) { b.Model = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := trainedBundle(t)
			tt.mutate(b)

			err := b.Validate()
			var se *SkewError
			require.ErrorAs(t, err, &se, "expected skew rejection")
		})
	}
}

func TestClassifierFeatureMismatchIsSkew(t *testing.T) {
	b := trainedBundle(t)
	b.Contract.Columns = []string{"lead_time", "adr"}
	b.Contract.Scaler.Columns = b.Contract.Columns

	_, err := b.Classifier()
	var se *SkewError
	require.ErrorAs(t, err, &se)
}

func TestSaveRejectsInvalidBundle(t *testing.T) {
	b := trainedBundle(t)
	b.Model = nil

	err := Save(b, filepath.Join(t.TempDir(), "model.json"))
	var se *SkewError
	require.ErrorAs(t, err, &se)
}
