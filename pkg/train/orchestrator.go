// Package train drives the offline training sequence: load, clean, derive,
// encode, split, scale, fit candidates, evaluate, select by F1, persist.
// Any step failure aborts the run; the artifact bundle is only ever
// published whole.
package train

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hotelops/bookingrisk/pkg/config"
	"github.com/hotelops/bookingrisk/pkg/contract"
	"github.com/hotelops/bookingrisk/pkg/dataset"
	"github.com/hotelops/bookingrisk/pkg/encoding"
	"github.com/hotelops/bookingrisk/pkg/explore"
	"github.com/hotelops/bookingrisk/pkg/features"
	"github.com/hotelops/bookingrisk/pkg/mlmodel"
	"github.com/hotelops/bookingrisk/pkg/schema"
)

// Result summarizes a completed training run.
type Result struct {
	RunID        string
	Selected     string
	Metrics      map[string]*mlmodel.Metrics
	FeatureCount int
	TrainRows    int
	TestRows     int
	ArtifactPath string
	Report       *explore.Report
}

// Orchestrator runs the offline training pipeline.
type Orchestrator struct {
	cfg *config.TrainingConfig
}

// NewOrchestrator creates an orchestrator for the given training config.
func NewOrchestrator(cfg *config.TrainingConfig) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultTrainingConfig()
	}
	return &Orchestrator{cfg: cfg}
}

// Run executes the full training sequence and publishes the artifact
// bundle. There is no recovery or retry: the first failing step aborts and
// nothing is persisted.
func (o *Orchestrator) Run() (*Result, error) {
	runID := uuid.New().String()
	startedAt := time.Now()
	log.Printf("Training run %s starting (data=%s)", runID, o.cfg.DataPath)

	table, err := dataset.Load(o.cfg.DataPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d rows, %d columns", len(table.Rows), len(table.Columns))

	report := explore.Summarize(table)
	log.Printf("Cancellation rate: %.2f%%", report.CancellationRate*100)

	table.FillMissing()

	labels, err := table.Labels()
	if err != nil {
		return nil, err
	}

	batch, err := features.Derive(table)
	if err != nil {
		return nil, fmt.Errorf("feature derivation failed: %w", err)
	}
	if len(batch.MissingColumns) > 0 {
		return nil, fmt.Errorf("training data incomplete: %w", &schema.SchemaMismatchError{MissingColumns: batch.MissingColumns})
	}

	matrix, vocabs, err := o.encode(batch.Rows)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	log.Printf("Encoded %d feature columns (%s strategy)", len(matrix.Columns), o.cfg.Encoding)

	split, err := StratifiedSplit(matrix.Rows, labels, o.cfg.TestSize, o.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("train-test split failed: %w", err)
	}
	log.Printf("Split: %d training rows, %d test rows", len(split.TrainX), len(split.TestX))

	// The scaler is fitted on the training partition only and applied to
	// both partitions.
	scaler, err := mlmodel.FitScaler(split.TrainX, matrix.Columns)
	if err != nil {
		return nil, fmt.Errorf("scaler fit failed: %w", err)
	}
	trainX, err := scaler.Transform(split.TrainX)
	if err != nil {
		return nil, err
	}
	testX, err := scaler.Transform(split.TestX)
	if err != nil {
		return nil, err
	}

	metrics := make(map[string]*mlmodel.Metrics, len(o.cfg.Candidates))
	fitted := make(map[string]mlmodel.Classifier, len(o.cfg.Candidates))
	for _, modelType := range o.cfg.Candidates {
		c, err := o.newCandidate(modelType)
		if err != nil {
			return nil, err
		}

		log.Printf("Fitting %s...", modelType)
		if err := c.Fit(trainX, split.TrainY, matrix.Columns); err != nil {
			return nil, fmt.Errorf("fitting %s failed: %w", modelType, err)
		}

		m, err := mlmodel.Evaluate(c, testX, split.TestY)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s failed: %w", modelType, err)
		}
		log.Printf("%s: accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f",
			modelType, m.Accuracy, m.Precision, m.Recall, m.F1)

		metrics[modelType] = m
		fitted[modelType] = c
	}

	selected := selectByF1(o.cfg.Candidates, metrics)
	log.Printf("Selected model: %s (f1=%.4f)", selected, metrics[selected].F1)

	modelData, err := mlmodel.Marshal(fitted[selected])
	if err != nil {
		return nil, err
	}

	bundle := &contract.Bundle{
		RunID:     runID,
		TrainedAt: time.Now(),
		ModelType: selected,
		Contract: contract.FeatureContract{
			Columns:      matrix.Columns,
			Strategy:     encoding.Strategy(o.cfg.Encoding),
			Vocabularies: vocabs,
			Scaler:       scaler,
		},
		Model: modelData,
	}
	if err := contract.Save(bundle, o.cfg.ArtifactPath); err != nil {
		return nil, err
	}
	log.Printf("Artifact bundle published to %s", o.cfg.ArtifactPath)

	if o.cfg.RunDBPath != "" {
		registry, err := OpenRegistry(o.cfg.RunDBPath)
		if err != nil {
			return nil, err
		}
		defer registry.Close()

		err = registry.RecordRun(runID, startedAt, time.Now(), o.cfg.DataPath,
			len(table.Rows), len(matrix.Columns), o.cfg.Encoding, selected, metrics)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		RunID:        runID,
		Selected:     selected,
		Metrics:      metrics,
		FeatureCount: len(matrix.Columns),
		TrainRows:    len(split.TrainX),
		TestRows:     len(split.TestX),
		ArtifactPath: o.cfg.ArtifactPath,
		Report:       report,
	}, nil
}

// encode applies the configured canonical encoding strategy. The label path
// also returns the fitted vocabularies for the contract.
func (o *Orchestrator) encode(rows []features.Row) (*encoding.Matrix, map[string]encoding.Vocabulary, error) {
	switch encoding.Strategy(o.cfg.Encoding) {
	case encoding.StrategyIndicator:
		return encoding.EncodeIndicator(rows), nil, nil
	case encoding.StrategyLabel:
		enc := encoding.FitLabelEncoder(rows)
		m, err := enc.Encode(rows)
		if err != nil {
			return nil, nil, err
		}
		return m, enc.Vocabularies, nil
	default:
		return nil, nil, fmt.Errorf("unknown encoding strategy %q", o.cfg.Encoding)
	}
}

func (o *Orchestrator) newCandidate(modelType string) (mlmodel.Classifier, error) {
	switch modelType {
	case mlmodel.TypeLogisticRegression:
		return mlmodel.NewLogisticRegression(), nil
	case mlmodel.TypeRandomForest:
		f := o.cfg.Forest
		rf := mlmodel.NewRandomForest(f.NumTrees, f.MaxDepth, f.MinSamplesSplit, f.MinSamplesLeaf)
		rf.Seed = o.cfg.Seed
		return rf, nil
	case mlmodel.TypeKNN:
		return mlmodel.NewKNN(o.cfg.KNN.K), nil
	default:
		return nil, fmt.Errorf("unknown candidate model type: %s", modelType)
	}
}

// selectByF1 picks the candidate with the highest F1; ties go to the
// earlier candidate in config order, so selection is deterministic.
func selectByF1(order []string, metrics map[string]*mlmodel.Metrics) string {
	best := ""
	bestF1 := -1.0
	for _, modelType := range order {
		if m, ok := metrics[modelType]; ok && m.F1 > bestF1 {
			best = modelType
			bestF1 = m.F1
		}
	}
	return best
}
