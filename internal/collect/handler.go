package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opencensus.io/stats"

	"siren/internal/dataset"
	"siren/internal/dispatcher"
	"siren/internal/httputil"
	"siren/internal/incident/model"
	"siren/internal/logging"
	sstats "siren/internal/stats"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	Incidents []model.Record `json:"incidents"`
}

func NewHandler(cfg *Config, collector dispatcher.Collector) (http.Handler, error) {
	if collector == nil {
		return nil, fmt.Errorf("collector instance is not created")
	}
	return &handler{
		cfg:       cfg,
		collector: collector,
	}, nil
}

type handler struct {
	cfg       *Config
	collector dispatcher.Collector
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
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
	if len(req.Incidents) > h.cfg.MaxDataItems {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItems)
		return
	}

	now := time.Now()
	incidents := make([]model.Incident, 0, len(req.Incidents))
	for _, fields := range req.Incidents {
		incidents = append(incidents, model.NewIncident(fields, now))
	}
	if err := h.collector.Collect(incidents...); err != nil {
		httputil.RespUnavailable(ctx, w, `{"error": "collect queue is saturated"}`)
		return
	}

	stats.Record(ctx, sstats.MCollectedRows.M(int64(len(incidents))))
	logger.Infof("collected %d historical rows", len(incidents))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprintf(w, `{"status": "ok", "accepted": %d}`, len(incidents))
}

// NewRefreshHandler returns the handler for the explicit dataset refresh
// operation. Replacing the snapshot is never an implicit side effect of
// collection; operators trigger it here once ingestion settles.
func NewRefreshHandler(provider *dataset.Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
			_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
			return
		}
		snap, err := provider.Refresh(ctx)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "dataset refresh failed, %v"}`, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status": "ok", "rows": %d, "fingerprint": %q}`, snap.Len(), snap.Fingerprint())
	})
}
