package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/bookingrisk/pkg/config"
	"github.com/hotelops/bookingrisk/pkg/contract"
	"github.com/hotelops/bookingrisk/pkg/encoding"
	"github.com/hotelops/bookingrisk/pkg/mlmodel"
	"github.com/hotelops/bookingrisk/pkg/predict"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cols := []string{"lead_time", "total_guests", "total_nights"}
	X := [][]float64{
		{-1, 0, 0}, {-0.8, 0.5, 0.2}, {-1.2, -0.5, -0.2},
		{1, 0, 0}, {0.8, 0.5, 0.2}, {1.2, -0.5, -0.2},
	}
	y := []int{0, 0, 0, 1, 1, 1}

	lr := mlmodel.NewLogisticRegression()
	require.NoError(t, lr.Fit(X, y, cols))
	raw, err := mlmodel.Marshal(lr)
	require.NoError(t, err)

	bundle := &contract.Bundle{
		RunID:     "run-api-test",
		TrainedAt: time.Now(),
		ModelType: mlmodel.TypeLogisticRegression,
		Contract: contract.FeatureContract{
			Columns:  cols,
			Strategy: encoding.StrategyIndicator,
			Scaler: &mlmodel.StandardScaler{
				Columns: cols,
				Mean:    []float64{155, 2, 5},
				Scale:   []float64{145, 1, 2},
			},
		},
		Model: raw,
	}

	svc, err := predict.NewServiceFromBundle(bundle)
	require.NoError(t, err)

	cfg := &config.Config{Port: "0", MaxUploadBytes: 1 << 20}
	return NewServer(svc, cfg)
}

const uploadCSV = "lead_time,adults,children,babies,stays_in_weekend_nights,stays_in_week_nights\n" +
	"300,2,0,0,2,5\n" +
	"10,2,0,0,2,5\n"

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, mlmodel.TypeLogisticRegression, body["model_type"])
}

func TestModelEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-api-test", body["run_id"])
	assert.Equal(t, mlmodel.TypeLogisticRegression, body["model_type"])
	assert.Equal(t, float64(3), body["feature_count"])
}

func TestPredictionsJSON(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(uploadCSV))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		RowCount               int                 `json:"row_count"`
		PredictedCancellations int                 `json:"predicted_cancellations"`
		RiskLevels             []string            `json:"risk_levels"`
		Rows                   []map[string]string `json:"rows"`
		Warnings               map[string]any      `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 2, body.RowCount)
	assert.Equal(t, 1, body.PredictedCancellations)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "1", body.Rows[0][predict.ColumnPrediction])
	assert.Equal(t, "0", body.Rows[1][predict.ColumnPrediction])

	// The upload omitted most raw columns, so warnings are attached.
	assert.NotNil(t, body.Warnings)
}

func TestPredictionsCSV(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(uploadCSV))
	req.Header.Set("Accept", "text/csv")
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "predictions.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header plus two rows

	header := records[0]
	assert.Equal(t, predict.ColumnRiskLevel, header[len(header)-1])
	assert.Equal(t, "lead_time", header[0])
}

func TestPredictionsRejectsBadRequests(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"empty body", http.MethodPost, "", http.StatusBadRequest},
		{"header only", http.MethodPost, "lead_time,adults\n", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/predictions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.mux.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("client gone") }
func (w *brokenWriter) WriteHeader(int)           {}

func TestWriteCSVLogsStreamFailure(t *testing.T) {
	s := testServer(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	scored := &predict.ScoredBatch{
		Columns: []string{"lead_time"},
		Rows:    []map[string]string{{"lead_time": "10"}},
	}
	s.writeCSV(&brokenWriter{header: http.Header{}}, scored)

	assert.Contains(t, buf.String(), "Failed to stream CSV response")
}

func TestPredictionsUploadLimit(t *testing.T) {
	s := testServer(t)
	s.cfg.MaxUploadBytes = 16

	req := httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(uploadCSV))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
