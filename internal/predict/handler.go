package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opencensus.io/stats"
	"golang.org/x/sync/errgroup"

	"siren/internal/dataset"
	"siren/internal/httputil"
	"siren/internal/logging"
	"siren/internal/predictor"
	"siren/internal/predictor/knn"
	sstats "siren/internal/stats"
)

const maxBodyBytes = 64 * 1024 * 1024

type incidentQuery struct {
	City                 string  `json:"city"`
	StructuresThreatened float64 `json:"structures_threatened"`
	StructuresDamaged    float64 `json:"structures_damaged"`
	PopulationAffected   float64 `json:"population_affected_est"`
	Category             string  `json:"incident_category"`
	Subtype              string  `json:"incident_subtype"`
}

type request struct {
	Incidents []incidentQuery `json:"incidents"`
	K         int             `json:"k"`
}

type response struct {
	Data []*predictor.Estimation `json:"data"`
}

func NewHandler(cfg *Config, provider *dataset.Provider, estimator predictor.Estimator, defaultK int) (http.Handler, error) {
	if estimator == nil {
		return nil, fmt.Errorf("estimator instance is not created")
	}
	return &handler{
		cfg:       cfg,
		provider:  provider,
		estimator: estimator,
		defaultK:  defaultK,
	}, nil
}

type handler struct {
	cfg       *Config
	provider  *dataset.Provider
	estimator predictor.Estimator
	defaultK  int
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)
	began := time.Now()

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
	if len(req.Incidents) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	snap, err := h.provider.Current(ctx)
	if err != nil {
		httputil.RespUnavailable(ctx, w, `{"error": "prediction data unavailable"}`)
		return
	}

	k := req.K
	if k <= 0 {
		k = h.defaultK
	}

	respData := make([]*predictor.Estimation, len(req.Incidents))
	errGrp := errgroup.Group{}
	for i, incident := range req.Incidents {
		i, incident := i, incident
		errGrp.Go(func() error {
			buildings := knn.BuildingsAffected(incident.StructuresThreatened, incident.StructuresDamaged)
			query := knn.MakeQuery(knn.QuerySpec{
				City:               incident.City,
				BuildingsAffected:  buildings,
				PopulationAffected: incident.PopulationAffected,
				Category:           incident.Category,
				Subtype:            incident.Subtype,
				InferredState:      knn.InferStateForCity(snap.Rows(), incident.City),
			})
			estimation, err := h.estimator.Estimate(query, snap, k)
			if err != nil {
				return fmt.Errorf("predict error: %w", err)
			}
			respData[i] = estimation
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		if errors.Is(err, dataset.ErrEmpty) {
			httputil.RespUnavailable(ctx, w, `{"error": "prediction data unavailable"}`)
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "predict processing error, %v"}`, err)
		return
	}

	stats.Record(ctx,
		sstats.MPredictions.M(int64(len(respData))),
		sstats.MPredictMs.M(float64(time.Since(began).Milliseconds())),
	)

	bytes, err := json.Marshal(response{Data: respData})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}
