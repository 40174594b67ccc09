package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"siren/internal/dataset"
	"siren/internal/feature"
	"siren/internal/incident/model"
	"siren/internal/predictor"
	"siren/internal/predictor/knn"
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

func historicalRows() []model.Record {
	return []model.Record{
		{
			feature.FieldCategory:   "fire",
			feature.FieldCity:       "Oakland",
			feature.FieldState:      "CA",
			feature.FieldSeverity:   "3",
			feature.FieldEngines:    "4",
			feature.FieldAmbulances: "2",
		},
		{
			feature.FieldCategory:   "fire",
			feature.FieldCity:       "Oakland",
			feature.FieldState:      "CA",
			feature.FieldSeverity:   "3",
			feature.FieldEngines:    "6",
			feature.FieldAmbulances: "2",
		},
		{
			feature.FieldCategory:   "medical",
			feature.FieldCity:       "Reno",
			feature.FieldState:      "NV",
			feature.FieldSeverity:   "1",
			feature.FieldEngines:    "0",
			feature.FieldAmbulances: "3",
		},
	}
}

func newTestHandler(t *testing.T, rows []model.Record) http.Handler {
	t.Helper()
	cfg := &Config{RequestTimeout: 30 * time.Second, MaxDataItemsLen: 10}
	h, err := NewHandler(cfg, testProvider(rows), knn.New(), 15)
	if err != nil {
		t.Fatalf("unable to create handler: %v", err)
	}
	return h
}

func TestHandler_Predict(t *testing.T) {
	h := newTestHandler(t, historicalRows())

	body := `{"incidents":[{"city":"Oakland","incident_category":"fire","structures_threatened":10,"population_affected_est":500}],"k":2}`
	req := httptest.NewRequest("POST", "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("response code, got: %v, expected: %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Data []*predictor.Estimation `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("estimations, got: %v, expected: 1", len(resp.Data))
	}
	est := resp.Data[0]
	if est.KUsed != 2 {
		t.Errorf("k_used, got: %v, expected: 2", est.KUsed)
	}
	if est.Engines < 0 || est.Ambulances < 0 {
		t.Errorf("predictions must be non-negative, got: (%v, %v)", est.Engines, est.Ambulances)
	}
	if est.Fingerprint == "" {
		t.Errorf("the response must carry the dataset fingerprint")
	}
	if est.Query.State != "CA" {
		t.Errorf("inferred state, got: %v, expected: CA", est.Query.State)
	}
	if len(est.Neighbors) != 2 {
		t.Errorf("explained neighbors, got: %v, expected: 2", len(est.Neighbors))
	}
}

func TestHandler_Guards(t *testing.T) {
	h := newTestHandler(t, historicalRows())
	tests := []struct {
		name         string
		method       string
		contentType  string
		body         string
		expectedCode int
	}{
		{
			name:         "method_not_allowed",
			method:       "GET",
			contentType:  "application/json",
			body:         "",
			expectedCode: http.StatusMethodNotAllowed,
		},
		{
			name:         "wrong_content_type",
			method:       "POST",
			contentType:  "text/plain",
			body:         `{"incidents":[{"city":"Oakland"}]}`,
			expectedCode: http.StatusUnsupportedMediaType,
		},
		{
			name:         "malformed_json",
			method:       "POST",
			contentType:  "application/json",
			body:         `{"incidents":`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "empty_incidents",
			method:       "POST",
			contentType:  "application/json",
			body:         `{"incidents":[]}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "too_many_incidents",
			method:       "POST",
			contentType:  "application/json",
			body:         `{"incidents":[` + strings.Repeat(`{"city":"Oakland"},`, 10) + `{"city":"Oakland"}]}`,
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, "/predict", strings.NewReader(test.body))
			req.Header.Set("Content-Type", test.contentType)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != test.expectedCode {
				t.Errorf("response code, got: %v, expected: %v", w.Code, test.expectedCode)
			}
		})
	}
}

func TestHandler_EmptyDataset(t *testing.T) {
	h := newTestHandler(t, nil)

	body := `{"incidents":[{"city":"Oakland","incident_category":"fire"}]}`
	req := httptest.NewRequest("POST", "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("response code, got: %v, expected: %v", w.Code, http.StatusServiceUnavailable)
	}
}
