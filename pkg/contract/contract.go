// Package contract defines the persisted trained feature contract: the
// exact ordered feature column list, the categorical vocabularies (label
// path), the fitted scaler parameters, and the serialized classifier. The
// four parts are written and loaded together; shape disagreement between
// them is version skew and is rejected rather than silently misscoring.
package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hotelops/bookingrisk/pkg/encoding"
	"github.com/hotelops/bookingrisk/pkg/mlmodel"
)

// FeatureContract is the sole source of truth for what inference must
// reproduce. Immutable once training completes; versioned by overwrite.
type FeatureContract struct {
	// Columns is the exact ordered feature list the classifier was
	// trained on.
	Columns []string `json:"columns"`
	// Strategy records which categorical encoding produced Columns.
	Strategy encoding.Strategy `json:"strategy"`
	// Vocabularies carries the per-column category vocabularies when
	// Strategy is label-index; nil for the indicator path.
	Vocabularies map[string]encoding.Vocabulary `json:"vocabularies,omitempty"`
	// Scaler holds the fitted per-column mean and scale.
	Scaler *mlmodel.StandardScaler `json:"scaler"`
}

// Bundle is the complete persisted artifact: contract plus classifier.
type Bundle struct {
	RunID     string          `json:"run_id"`
	TrainedAt time.Time       `json:"trained_at"`
	ModelType string          `json:"model_type"`
	Contract  FeatureContract `json:"contract"`
	Model     json.RawMessage `json:"model"`
}

// Validate checks the bundle's parts agree in shape.
func (b *Bundle) Validate() error {
	if len(b.Contract.Columns) == 0 {
		return &SkewError{Reason: "contract has no feature columns"}
	}
	if b.Contract.Scaler == nil {
		return &SkewError{Reason: "contract has no scaler parameters"}
	}
	if got, want := len(b.Contract.Scaler.Mean), len(b.Contract.Columns); got != want {
		return &SkewError{Reason: fmt.Sprintf("scaler has %d columns, contract has %d", got, want)}
	}
	if len(b.Contract.Scaler.Scale) != len(b.Contract.Scaler.Mean) {
		return &SkewError{Reason: "scaler mean and scale lengths disagree"}
	}
	switch b.Contract.Strategy {
	case encoding.StrategyIndicator, encoding.StrategyLabel:
	default:
		return &SkewError{Reason: fmt.Sprintf("unknown encoding strategy %q", b.Contract.Strategy)}
	}
	if b.Contract.Strategy == encoding.StrategyLabel && len(b.Contract.Vocabularies) == 0 {
		return &SkewError{Reason: "label-encoded contract has no vocabularies"}
	}
	if b.Contract.Strategy == encoding.StrategyIndicator && len(b.Contract.Vocabularies) > 0 {
		return &SkewError{Reason: "indicator-encoded contract must not carry vocabularies"}
	}
	if b.ModelType == "" || len(b.Model) == 0 {
		return &SkewError{Reason: "bundle has no serialized model"}
	}
	return nil
}

// Classifier deserializes the bundle's model and checks its feature list
// matches the contract.
func (b *Bundle) Classifier() (mlmodel.Classifier, error) {
	c, err := mlmodel.Unmarshal(b.ModelType, b.Model)
	if err != nil {
		return nil, err
	}
	names := c.FeatureNames()
	if len(names) != len(b.Contract.Columns) {
		return nil, &SkewError{Reason: fmt.Sprintf("model trained on %d features, contract lists %d", len(names), len(b.Contract.Columns))}
	}
	for i, name := range names {
		if name != b.Contract.Columns[i] {
			return nil, &SkewError{Reason: fmt.Sprintf("feature %d: model has %q, contract has %q", i, name, b.Contract.Columns[i])}
		}
	}
	return c, nil
}

// Save writes the bundle atomically: the JSON goes to a temporary file in
// the target directory and is renamed into place, so a failure mid-write
// can never leave a half-written artifact interpretable as valid.
func Save(b *Bundle, path string) error {
	if err := b.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}

// Load reads and validates a bundle from disk. A missing or unreadable
// artifact is fatal for inference and reports the expected path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactError{Path: path, Err: err}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &ArtifactError{Path: path, Err: fmt.Errorf("malformed artifact: %w", err)}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
