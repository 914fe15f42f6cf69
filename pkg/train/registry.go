package train

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hotelops/bookingrisk/pkg/mlmodel"
)

// RunRegistry records training runs and per-candidate metrics in a local
// SQLite database so runs can be compared after the fact.
type RunRegistry struct {
	db *sql.DB
}

// OpenRegistry opens (and if needed initializes) the run database.
func OpenRegistry(path string) (*RunRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run registry %s: %w", path, err)
	}

	ddl := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id       TEXT PRIMARY KEY,
		started_at   TIMESTAMP NOT NULL,
		finished_at  TIMESTAMP NOT NULL,
		data_path    TEXT NOT NULL,
		rows         INTEGER NOT NULL,
		features     INTEGER NOT NULL,
		encoding     TEXT NOT NULL,
		selected     TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS candidate_metrics (
		run_id     TEXT NOT NULL REFERENCES runs(run_id),
		model_type TEXT NOT NULL,
		accuracy   REAL NOT NULL,
		precision  REAL NOT NULL,
		recall     REAL NOT NULL,
		f1         REAL NOT NULL,
		PRIMARY KEY (run_id, model_type)
	);`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run registry schema: %w", err)
	}
	return &RunRegistry{db: db}, nil
}

// Close releases the underlying database handle.
func (r *RunRegistry) Close() error {
	return r.db.Close()
}

// RecordRun persists one completed training run with its candidate metrics
// in a single transaction.
func (r *RunRegistry) RecordRun(runID string, startedAt, finishedAt time.Time, dataPath string, rows, featureCount int, encoding, selected string, metrics map[string]*mlmodel.Metrics) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin registry transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, started_at, finished_at, data_path, rows, features, encoding, selected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, startedAt, finishedAt, dataPath, rows, featureCount, encoding, selected,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", runID, err)
	}

	for modelType, m := range metrics {
		_, err = tx.Exec(
			`INSERT INTO candidate_metrics (run_id, model_type, accuracy, precision, recall, f1)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, modelType, m.Accuracy, m.Precision, m.Recall, m.F1,
		)
		if err != nil {
			return fmt.Errorf("failed to record metrics for %s: %w", modelType, err)
		}
	}
	return tx.Commit()
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID      string
	FinishedAt time.Time
	Rows       int
	Selected   string
	BestF1     float64
}

// History returns the most recent runs, newest first.
func (r *RunRegistry) History(limit int) ([]RunSummary, error) {
	rows, err := r.db.Query(
		`SELECT r.run_id, r.finished_at, r.rows, r.selected, m.f1
		 FROM runs r
		 JOIN candidate_metrics m ON m.run_id = r.run_id AND m.model_type = r.selected
		 ORDER BY r.finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.FinishedAt, &s.Rows, &s.Selected, &s.BestF1); err != nil {
			return nil, fmt.Errorf("failed to scan run history row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
