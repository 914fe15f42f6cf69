// Package config holds the server configuration (environment variables, the
// way the rest of the deployment is configured) and the training pipeline
// configuration (a YAML file checked in next to the dataset).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the scoring server configuration.
type Config struct {
	Environment     string
	LogLevel        string
	Port            string
	ArtifactPath    string
	TrainingConfig  string
	RetrainSchedule string // cron spec; empty disables scheduled retraining
	MaxUploadBytes  int
}

// LoadConfig loads server configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
		ArtifactPath:    getEnv("ARTIFACT_PATH", "artifacts/model_bundle.json"),
		TrainingConfig:  getEnv("TRAINING_CONFIG", "training.yaml"),
		RetrainSchedule: getEnv("RETRAIN_SCHEDULE", ""),
		MaxUploadBytes:  getEnvAsInt("MAX_UPLOAD_BYTES", 32<<20),
	}

	if config.ArtifactPath == "" {
		return nil, fmt.Errorf("ARTIFACT_PATH is required")
	}
	return config, nil
}

// TrainingConfig drives one offline training run.
type TrainingConfig struct {
	DataPath     string  `yaml:"data_path"`
	ArtifactPath string  `yaml:"artifact_path"`
	RunDBPath    string  `yaml:"run_db_path"`
	Encoding     string  `yaml:"encoding"` // "indicator" (default) or "label"
	TestSize     float64 `yaml:"test_size"`
	Seed         int64   `yaml:"seed"`
	// Candidates lists the model types to fit and compare. Defaults to
	// logistic_regression, random_forest and knn.
	Candidates []string `yaml:"candidates"`

	Forest struct {
		NumTrees        int `yaml:"num_trees"`
		MaxDepth        int `yaml:"max_depth"`
		MinSamplesSplit int `yaml:"min_samples_split"`
		MinSamplesLeaf  int `yaml:"min_samples_leaf"`
	} `yaml:"forest"`

	KNN struct {
		K int `yaml:"k"`
	} `yaml:"knn"`
}

// DefaultTrainingConfig returns the training defaults used when a field is
// unset: 80/20 stratified split, seed 42, indicator encoding.
func DefaultTrainingConfig() *TrainingConfig {
	cfg := &TrainingConfig{
		DataPath:     "data/hotel_bookings.csv",
		ArtifactPath: "artifacts/model_bundle.json",
		RunDBPath:    "artifacts/runs.db",
		Encoding:     "indicator",
		TestSize:     0.2,
		Seed:         42,
		Candidates:   []string{"logistic_regression", "random_forest", "knn"},
	}
	cfg.Forest.NumTrees = 100
	cfg.Forest.MaxDepth = 15
	cfg.Forest.MinSamplesSplit = 10
	cfg.Forest.MinSamplesLeaf = 5
	cfg.KNN.K = 5
	return cfg
}

// LoadTrainingConfig reads a YAML training config, applying defaults for
// unset fields.
func LoadTrainingConfig(path string) (*TrainingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read training config %s: %w", path, err)
	}

	cfg := DefaultTrainingConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse training config %s: %w", path, err)
	}

	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return nil, fmt.Errorf("test_size must be in (0,1), got %v", cfg.TestSize)
	}
	if cfg.Encoding != "indicator" && cfg.Encoding != "label" {
		return nil, fmt.Errorf("encoding must be %q or %q, got %q", "indicator", "label", cfg.Encoding)
	}
	if len(cfg.Candidates) == 0 {
		return nil, fmt.Errorf("at least one candidate model is required")
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a
// default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
