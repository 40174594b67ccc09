package train

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opencensus.io/stats"

	"siren/internal/dataset"
	"siren/internal/httputil"
	"siren/internal/incident/model"
	"siren/internal/logging"
	"siren/internal/predictor/eval"
	"siren/internal/predictor/knn"
	"siren/internal/predictor/ridge"
	ridgedb "siren/internal/predictor/ridge/database"
	sstats "siren/internal/stats"
)

const maxBodyBytes = 8 * 1024 * 1024

type trainRequest struct {
	Lambda  *float64 `json:"lambda"`
	Holdout bool     `json:"holdout"`
}

type trainResponse struct {
	Rows        int          `json:"rows"`
	Lambda      float64      `json:"lambda"`
	Fingerprint string       `json:"dataset_fingerprint"`
	Holdout     *eval.Report `json:"holdout,omitempty"`
}

func NewHandler(cfg *Config, ridgeCfg *ridge.Config, provider *dataset.Provider, modelDB *ridgedb.DB) (http.Handler, error) {
	if modelDB == nil {
		return nil, fmt.Errorf("model storage instance is not created")
	}
	return &handler{
		cfg:      cfg,
		ridgeCfg: ridgeCfg,
		provider: provider,
		modelDB:  modelDB,
	}, nil
}

type handler struct {
	cfg      *Config
	ridgeCfg *ridge.Config
	provider *dataset.Provider
	modelDB  *ridgedb.DB
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if r.Body != nil && r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		d := json.NewDecoder(r.Body)
		if err := d.Decode(&req); err != nil {
			httputil.DecodeErr(ctx, w, err)
			return
		}
		defer r.Body.Close()
	}

	lambda := h.ridgeCfg.Lambda
	if req.Lambda != nil {
		lambda = *req.Lambda
	}
	if lambda < 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "lambda must not be negative"}`)
		return
	}

	snap, err := h.provider.Current(ctx)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to load dataset, %v"}`, err)
		return
	}
	if snap.Len() == 0 {
		httputil.RespUnavailable(ctx, w, `{"error": "no historical incidents loaded"}`)
		return
	}

	began := time.Now()
	m, err := ridge.Train(snap.Rows(), lambda)
	if err != nil {
		httputil.RespUnavailable(ctx, w, `{"error": "training failed, %v"}`, err)
		return
	}
	payload, err := m.Encode()
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to encode model, %v"}`, err)
		return
	}
	if err := h.modelDB.Save(ctx, ridgedb.NewArtifact(payload, snap.Len(), lambda)); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to store model, %v"}`, err)
		return
	}

	resp := trainResponse{
		Rows:        snap.Len(),
		Lambda:      lambda,
		Fingerprint: snap.Fingerprint(),
	}
	if req.Holdout {
		report, err := eval.Holdout(snap.Rows(), h.cfg.TrainRatio, lambda, uint32(h.cfg.HoldoutSeed))
		if err != nil {
			logger.Warnf("holdout evaluation failed: %v", err)
		} else {
			resp.Holdout = report
		}
	}

	stats.Record(ctx, sstats.MTrainings.M(1))
	logger.Infof("trained ridge model on %d rows in %s, lambda=%g", snap.Len(), time.Since(began), lambda)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, err := json.Marshal(&resp)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
		return
	}
	_, _ = w.Write(b)
}

type modelQuery struct {
	City                 string  `json:"city"`
	StructuresThreatened float64 `json:"structures_threatened"`
	StructuresDamaged    float64 `json:"structures_damaged"`
	PopulationAffected   float64 `json:"population_affected_est"`
	Category             string  `json:"incident_category"`
	Subtype              string  `json:"incident_subtype"`
}

type modelPredictRequest struct {
	Incidents []modelQuery `json:"incidents"`
}

type modelEstimate struct {
	Engines    float64 `json:"firetrucks_dispatched_engines"`
	Ambulances float64 `json:"ambulances_dispatched"`
}

type modelPredictResponse struct {
	Data      []modelEstimate `json:"data"`
	TrainedAt time.Time       `json:"trained_at"`
	Rows      int             `json:"model_rows"`
}

// NewPredictHandler serves predictions from the latest stored ridge model.
// Unlike the nearest-neighbor path it never touches the dataset snapshot;
// the artifact carries its own feature order and category levels.
func NewPredictHandler(cfg *Config, provider *dataset.Provider, modelDB *ridgedb.DB) (http.Handler, error) {
	if modelDB == nil {
		return nil, fmt.Errorf("model storage instance is not created")
	}
	return &predictHandler{cfg: cfg, provider: provider, modelDB: modelDB}, nil
}

type predictHandler struct {
	cfg      *Config
	provider *dataset.Provider
	modelDB  *ridgedb.DB
}

func (h *predictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req modelPredictRequest
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		logger.Debug(fmt.Sprintf(`{"error": "%v"}`, "content-type is not application/json"))
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}
	if len(req.Incidents) == 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "incidents must not be empty"}`)
		return
	}

	artifact, err := h.modelDB.Latest(ctx)
	if err != nil {
		if errors.Is(err, ridgedb.ErrNoModel) {
			httputil.RespUnavailable(ctx, w, `{"error": "no trained model available"}`)
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "unable to load model, %v"}`, err)
		return
	}
	m, err := ridge.Decode(artifact.Payload)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "stored model is not readable, %v"}`, err)
		return
	}

	var rows []model.Record
	if snap, err := h.provider.Current(ctx); err == nil {
		rows = snap.Rows()
	}

	estimates := make([]modelEstimate, 0, len(req.Incidents))
	for _, q := range req.Incidents {
		query := knn.MakeQuery(knn.QuerySpec{
			City:               q.City,
			BuildingsAffected:  knn.BuildingsAffected(q.StructuresThreatened, q.StructuresDamaged),
			PopulationAffected: q.PopulationAffected,
			Category:           q.Category,
			Subtype:            q.Subtype,
			InferredState:      knn.InferStateForCity(rows, q.City),
		})
		t, err := m.Predict(query)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "prediction failed, %v"}`, err)
			return
		}
		estimates = append(estimates, modelEstimate{Engines: t.Engines, Ambulances: t.Ambulances})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, err := json.Marshal(&modelPredictResponse{
		Data:      estimates,
		TrainedAt: artifact.TrainedAt,
		Rows:      artifact.Rows,
	})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
		return
	}
	_, _ = w.Write(b)
}
