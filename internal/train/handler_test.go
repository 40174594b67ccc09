package train

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"siren/internal/database"
	"siren/internal/dataset"
	"siren/internal/feature"
	"siren/internal/incident/model"
	"siren/internal/predictor/ridge"
	ridgedb "siren/internal/predictor/ridge/database"
)

func testProvider(rows []model.Record) *dataset.Provider {
	incidents := make([]model.Incident, 0, len(rows))
	now := time.Now()
	for _, fields := range rows {
		incidents = append(incidents, model.NewIncident(fields, now))
	}
	return dataset.NewProvider(func(ctx context.Context) ([]model.Incident, error) {
		return incidents, nil
	})
}

func historicalRows(n int) []model.Record {
	rows := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		severity := byte('1' + i%5)
		rows = append(rows, model.Record{
			feature.FieldSeverity:   string(severity),
			feature.FieldCategory:   "fire",
			feature.FieldCity:       "Oakland",
			feature.FieldEngines:    string(severity),
			feature.FieldAmbulances: "2",
		})
	}
	return rows
}

func newModelDB(t *testing.T) *ridgedb.DB {
	t.Helper()
	sDB, err := database.NewFromEnv(context.Background(), &database.Config{
		FileName: filepath.Join(t.TempDir(), "siren-test.db"),
	})
	if err != nil {
		t.Fatalf("unable to open test db: %v", err)
	}
	t.Cleanup(func() {
		_ = sDB.Close(context.Background())
	})
	return ridgedb.New(sDB)
}

func testConfig() *Config {
	return &Config{RequestTimeout: 60 * time.Second, TrainRatio: 0.8, HoldoutSeed: 1}
}

func TestHandler_Train(t *testing.T) {
	modelDB := newModelDB(t)
	h, err := NewHandler(testConfig(), &ridge.Config{Lambda: 1.0}, testProvider(historicalRows(20)), modelDB)
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}

	req := httptest.NewRequest("POST", "/train", strings.NewReader(`{"holdout":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("response code, got: %v, expected: %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp trainResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if resp.Rows != 20 {
		t.Errorf("trained rows, got: %v, expected: 20", resp.Rows)
	}
	if resp.Lambda != 1.0 {
		t.Errorf("lambda, got: %v, expected: 1.0", resp.Lambda)
	}
	if resp.Holdout == nil {
		t.Errorf("the holdout report must be present when requested")
	}

	artifact, err := modelDB.Latest(context.Background())
	if err != nil {
		t.Fatalf("the trained artifact must be stored: %v", err)
	}
	if artifact.Rows != 20 {
		t.Errorf("artifact rows, got: %v, expected: 20", artifact.Rows)
	}
	if _, err := ridge.Decode(artifact.Payload); err != nil {
		t.Errorf("the stored payload must decode: %v", err)
	}
}

func TestHandler_TrainGuards(t *testing.T) {
	modelDB := newModelDB(t)
	h, err := NewHandler(testConfig(), &ridge.Config{Lambda: 1.0}, testProvider(historicalRows(5)), modelDB)
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}

	tests := []struct {
		name         string
		method       string
		body         string
		expectedCode int
	}{
		{name: "method_not_allowed", method: "GET", expectedCode: http.StatusMethodNotAllowed},
		{name: "negative_lambda", method: "POST", body: `{"lambda":-1}`, expectedCode: http.StatusBadRequest},
		{name: "malformed_json", method: "POST", body: `{"lambda":`, expectedCode: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, "/train", strings.NewReader(test.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != test.expectedCode {
				t.Errorf("response code, got: %v, expected: %v", w.Code, test.expectedCode)
			}
		})
	}
}

func TestHandler_TrainEmptyDataset(t *testing.T) {
	h, err := NewHandler(testConfig(), &ridge.Config{Lambda: 1.0}, testProvider(nil), newModelDB(t))
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}

	req := httptest.NewRequest("POST", "/train", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("response code, got: %v, expected: %v", w.Code, http.StatusServiceUnavailable)
	}
}

func TestPredictHandler_NoModel(t *testing.T) {
	h, err := NewPredictHandler(testConfig(), testProvider(historicalRows(5)), newModelDB(t))
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}

	body := `{"incidents":[{"city":"Oakland","incident_category":"fire"}]}`
	req := httptest.NewRequest("POST", "/model/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("response code, got: %v, expected: %v", w.Code, http.StatusServiceUnavailable)
	}
}

func TestPredictHandler_RoundTrip(t *testing.T) {
	modelDB := newModelDB(t)
	provider := testProvider(historicalRows(20))
	ctx := context.Background()

	trainHandler, err := NewHandler(testConfig(), &ridge.Config{Lambda: 0.01}, provider, modelDB)
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}
	trainReq := httptest.NewRequest("POST", "/train", nil)
	trainW := httptest.NewRecorder()
	trainHandler.ServeHTTP(trainW, trainReq)
	if trainW.Code != http.StatusOK {
		t.Fatalf("training failed, code: %v, body: %s", trainW.Code, trainW.Body.String())
	}
	if _, err := modelDB.Latest(ctx); err != nil {
		t.Fatalf("the trained artifact must be stored: %v", err)
	}

	h, err := NewPredictHandler(testConfig(), provider, modelDB)
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}
	body := `{"incidents":[{"city":"Oakland","incident_category":"fire","structures_threatened":50}]}`
	req := httptest.NewRequest("POST", "/model/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("response code, got: %v, expected: %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp modelPredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("estimates, got: %v, expected: 1", len(resp.Data))
	}
	if resp.Data[0].Engines < 0 || resp.Data[0].Ambulances < 0 {
		t.Errorf("predictions must be non-negative, got: %+v", resp.Data[0])
	}
	if resp.Rows != 20 {
		t.Errorf("model rows, got: %v, expected: 20", resp.Rows)
	}
}
