// Package api exposes the scoring pipeline over HTTP: a CSV upload endpoint
// that returns scored rows, model metadata, and health checks. It is a thin
// shell over the predict service.
package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/robfig/cron/v3"

	"github.com/hotelops/bookingrisk/pkg/config"
	"github.com/hotelops/bookingrisk/pkg/dataset"
	"github.com/hotelops/bookingrisk/pkg/predict"
	"github.com/hotelops/bookingrisk/pkg/train"
)

// Server provides HTTP API endpoints for booking scoring.
type Server struct {
	svc  *predict.Service
	cfg  *config.Config
	mux  *http.ServeMux
	cron *cron.Cron
}

// NewServer creates a new API server around a loaded predict service.
func NewServer(svc *predict.Service, cfg *config.Config) *Server {
	s := &Server{
		svc: svc,
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.HandleFunc("/api/predictions", s.handlePredictions)
	s.mux.HandleFunc("/api/model", s.handleModel)
}

// Start starts the HTTP server and, when configured, the retraining
// schedule.
func (s *Server) Start() error {
	if s.cfg.RetrainSchedule != "" {
		if err := s.startRetrainSchedule(); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf(":%s", s.cfg.Port)
	log.Printf("Starting API server on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// startRetrainSchedule runs the training orchestrator on a cron schedule
// and reloads the cached artifact after each successful run.
func (s *Server) startRetrainSchedule() error {
	trainCfg, err := config.LoadTrainingConfig(s.cfg.TrainingConfig)
	if err != nil {
		return fmt.Errorf("retraining schedule requires a training config: %w", err)
	}

	s.cron = cron.New()
	_, err = s.cron.AddFunc(s.cfg.RetrainSchedule, func() {
		log.Printf("Scheduled retraining starting")
		result, err := train.NewOrchestrator(trainCfg).Run()
		if err != nil {
			log.Printf("Scheduled retraining failed: %v", err)
			return
		}
		if err := s.svc.Reload(); err != nil {
			log.Printf("Failed to reload artifact after retraining: %v", err)
			return
		}
		log.Printf("Scheduled retraining complete: run %s selected %s", result.RunID, result.Selected)
	})
	if err != nil {
		return fmt.Errorf("invalid retrain schedule %q: %w", s.cfg.RetrainSchedule, err)
	}

	s.cron.Start()
	log.Printf("Retraining scheduled: %s", s.cfg.RetrainSchedule)
	return nil
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// handleReady reports readiness: the artifact bundle must be loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	b := s.svc.Bundle()
	if b == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ready", "model_type": b.ModelType})
}

// handleModel returns metadata about the cached model.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	b := s.svc.Bundle()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":        b.RunID,
		"trained_at":    b.TrainedAt,
		"model_type":    b.ModelType,
		"strategy":      b.Contract.Strategy,
		"feature_count": len(b.Contract.Columns),
	})
}

// handlePredictions accepts a CSV upload and returns scored rows. The
// response format follows the Accept header: text/csv streams the original
// columns plus the three scored columns; anything else gets JSON with a
// summary and per-row scores.
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body := http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadBytes))
	defer body.Close()

	table, err := dataset.Read(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid CSV upload: %v", err), http.StatusBadRequest)
		return
	}
	if len(table.Rows) == 0 {
		http.Error(w, "Upload contains no data rows", http.StatusBadRequest)
		return
	}

	scored, err := s.svc.ScoreTable(table)
	if err != nil {
		log.Printf("Scoring failed for %d-row upload: %v", len(table.Rows), err)
		http.Error(w, fmt.Sprintf("Scoring failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		s.writeCSV(w, scored)
		return
	}
	s.writeJSON(w, scored)
}

func (s *Server) writeJSON(w http.ResponseWriter, scored *predict.ScoredBatch) {
	resp := map[string]interface{}{
		"rows":                    scored.Rows,
		"columns":                 scored.Columns,
		"row_count":               len(scored.Rows),
		"predicted_cancellations": scored.PredictedCancellations(),
		"risk_levels":             scored.RiskLevels,
	}
	if len(scored.MissingColumns) > 0 {
		resp["warnings"] = map[string]interface{}{
			"missing_columns": scored.MissingColumns,
			"zero_filled":     scored.ZeroFilled,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeCSV(w http.ResponseWriter, scored *predict.ScoredBatch) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="predictions.csv"`)

	cw := csv.NewWriter(w)
	cw.Write(scored.Columns)
	for _, row := range scored.Rows {
		record := make([]string, len(scored.Columns))
		for i, col := range scored.Columns {
			record[i] = row[col]
		}
		cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Failed to stream CSV response (%d rows): %v", len(scored.Rows), err)
	}
}
