// Package predict scores new bookings against a persisted artifact bundle.
// The bundle is loaded once and cached for the process lifetime; it is
// read-only after load, so concurrent batches share it without locking.
package predict

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/hotelops/bookingrisk/pkg/align"
	"github.com/hotelops/bookingrisk/pkg/contract"
	"github.com/hotelops/bookingrisk/pkg/dataset"
	"github.com/hotelops/bookingrisk/pkg/encoding"
	"github.com/hotelops/bookingrisk/pkg/features"
	"github.com/hotelops/bookingrisk/pkg/mlmodel"
)

// Scored columns appended to each input row.
const (
	ColumnPrediction  = "cancellation_prediction"
	ColumnProbability = "cancellation_probability"
	ColumnRiskLevel   = "risk_level"
)

// ScoredBatch is the outcome of scoring one upload: the original rows with
// the three scored columns appended, plus data-quality diagnostics.
type ScoredBatch struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`

	Predictions   []int     `json:"predictions"`
	Probabilities []float64 `json:"probabilities"`
	RiskLevels    []string  `json:"risk_levels"`

	// MissingColumns lists expected raw columns absent from the upload;
	// their features were zero-filled during alignment.
	MissingColumns []string `json:"missing_columns,omitempty"`
	// ZeroFilled lists contract feature columns the upload could not
	// produce.
	ZeroFilled []string `json:"zero_filled,omitempty"`
}

// PredictedCancellations counts rows predicted as canceled.
func (b *ScoredBatch) PredictedCancellations() int {
	n := 0
	for _, p := range b.Predictions {
		n += p
	}
	return n
}

type loaded struct {
	bundle     *contract.Bundle
	classifier mlmodel.Classifier
}

// Service scores booking batches against a cached artifact bundle. Create
// it with NewService; the zero value is unusable.
type Service struct {
	artifactPath string
	state        atomic.Pointer[loaded]
}

// NewService loads the artifact bundle from disk and caches it. Loading
// failure is fatal for inference and reports the expected path.
func NewService(artifactPath string) (*Service, error) {
	s := &Service{artifactPath: artifactPath}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewServiceFromBundle builds a service around an already-loaded bundle.
func NewServiceFromBundle(b *contract.Bundle) (*Service, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	c, err := b.Classifier()
	if err != nil {
		return nil, err
	}
	s := &Service{}
	s.state.Store(&loaded{bundle: b, classifier: c})
	return s, nil
}

// Reload re-reads the artifact from disk and swaps it in atomically.
// In-flight batches keep scoring against the bundle they started with.
func (s *Service) Reload() error {
	b, err := contract.Load(s.artifactPath)
	if err != nil {
		return err
	}
	c, err := b.Classifier()
	if err != nil {
		return err
	}
	s.state.Store(&loaded{bundle: b, classifier: c})
	log.Printf("Loaded %s model from run %s (%d features)", b.ModelType, b.RunID, len(b.Contract.Columns))
	return nil
}

// Bundle returns the currently cached artifact bundle.
func (s *Service) Bundle() *contract.Bundle {
	return s.state.Load().bundle
}

// ScoreTable scores every row of an uploaded table. Per-row data-quality
// problems degrade gracefully (coercion, zero-fill); batch-level failures
// surface with the original row count preserved in the error context. The
// caller's table is not modified: fills are applied to a copy.
func (s *Service) ScoreTable(t *dataset.Table) (*ScoredBatch, error) {
	st := s.state.Load()
	rowCount := len(t.Rows)

	work := t.Clone()
	work.FillMissing()

	batch, err := features.Derive(work)
	if err != nil {
		return nil, fmt.Errorf("failed to derive features for batch of %d rows: %w", rowCount, err)
	}

	matrix, err := s.encode(st.bundle, batch.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch of %d rows: %w", rowCount, err)
	}

	aligned := align.Align(matrix, st.bundle.Contract.Columns)

	scaled, err := st.bundle.Contract.Scaler.Transform(aligned.Matrix.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scale batch of %d rows: %w", rowCount, err)
	}

	preds, err := st.classifier.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("classifier failed on batch of %d rows: %w", rowCount, err)
	}
	probs, err := st.classifier.PredictProba(scaled)
	if err != nil {
		return nil, fmt.Errorf("classifier failed on batch of %d rows: %w", rowCount, err)
	}

	out := &ScoredBatch{
		Columns:        append(append([]string{}, work.Columns...), ColumnPrediction, ColumnProbability, ColumnRiskLevel),
		Rows:           make([]map[string]string, rowCount),
		Predictions:    preds,
		Probabilities:  probs,
		RiskLevels:     make([]string, rowCount),
		MissingColumns: batch.MissingColumns,
		ZeroFilled:     aligned.ZeroFilled,
	}

	for i, raw := range work.Rows {
		row := make(map[string]string, len(raw)+3)
		for k, v := range raw {
			row[k] = v
		}
		risk := RiskLevel(probs[i])
		out.RiskLevels[i] = risk
		row[ColumnPrediction] = fmt.Sprintf("%d", preds[i])
		row[ColumnProbability] = fmt.Sprintf("%.6f", probs[i])
		row[ColumnRiskLevel] = risk
		out.Rows[i] = row
	}

	if len(batch.MissingColumns) > 0 {
		log.Printf("Upload missing %d expected columns: %v", len(batch.MissingColumns), batch.MissingColumns)
	}
	return out, nil
}

// encode reproduces the encoding strategy recorded in the contract. The
// indicator path encodes batch-locally and relies on alignment; the label
// path reuses the persisted vocabularies with unknown values coerced to
// the reserved index.
func (s *Service) encode(b *contract.Bundle, rows []features.Row) (*encoding.Matrix, error) {
	switch b.Contract.Strategy {
	case encoding.StrategyIndicator:
		return encoding.EncodeIndicator(rows), nil
	case encoding.StrategyLabel:
		enc := &encoding.LabelEncoder{
			Vocabularies:  b.Contract.Vocabularies,
			CoerceUnknown: true,
		}
		return enc.Encode(rows)
	default:
		return nil, &contract.SkewError{Reason: fmt.Sprintf("unknown encoding strategy %q", b.Contract.Strategy)}
	}
}
