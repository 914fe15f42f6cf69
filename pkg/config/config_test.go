package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "artifacts/model_bundle.json", cfg.ArtifactPath)
	assert.Equal(t, "", cfg.RetrainSchedule)
	assert.Equal(t, 32<<20, cfg.MaxUploadBytes)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ARTIFACT_PATH", "/tmp/bundle.json")
	t.Setenv("RETRAIN_SCHEDULE", "0 3 * * *")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "/tmp/bundle.json", cfg.ArtifactPath)
	assert.Equal(t, "0 3 * * *", cfg.RetrainSchedule)
	assert.Equal(t, 1024, cfg.MaxUploadBytes)
}

func TestLoadConfigBadIntFallsBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 32<<20, cfg.MaxUploadBytes)
}

func TestDefaultTrainingConfig(t *testing.T) {
	cfg := DefaultTrainingConfig()

	assert.Equal(t, "indicator", cfg.Encoding)
	assert.Equal(t, 0.2, cfg.TestSize)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, []string{"logistic_regression", "random_forest", "knn"}, cfg.Candidates)
	assert.Equal(t, 100, cfg.Forest.NumTrees)
	assert.Equal(t, 15, cfg.Forest.MaxDepth)
	assert.Equal(t, 10, cfg.Forest.MinSamplesSplit)
	assert.Equal(t, 5, cfg.Forest.MinSamplesLeaf)
	assert.Equal(t, 5, cfg.KNN.K)
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "training.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTrainingConfig(t *testing.T) {
	path := writeYAML(t, `
data_path: data/bookings.csv
encoding: label
test_size: 0.3
seed: 7
candidates:
  - logistic_regression
forest:
  num_trees: 50
`)

	cfg, err := LoadTrainingConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "data/bookings.csv", cfg.DataPath)
	assert.Equal(t, "label", cfg.Encoding)
	assert.Equal(t, 0.3, cfg.TestSize)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, []string{"logistic_regression"}, cfg.Candidates)
	assert.Equal(t, 50, cfg.Forest.NumTrees)

	// Unset fields keep defaults.
	assert.Equal(t, 15, cfg.Forest.MaxDepth)
	assert.Equal(t, "artifacts/model_bundle.json", cfg.ArtifactPath)
}

func TestLoadTrainingConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad test size", "test_size: 1.5"},
		{"bad encoding", "encoding: ordinal"},
		{"no candidates", "candidates: []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrainingConfig(writeYAML(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadTrainingConfigMissingFile(t *testing.T) {
	_, err := LoadTrainingConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
