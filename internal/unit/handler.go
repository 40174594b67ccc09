package unit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"siren/internal/httputil"
	"siren/internal/logging"
	"siren/internal/unit/database"
	"siren/internal/unit/model"
)

const maxBodyBytes = 1 * 1024 * 1024

type registerRequest struct {
	Name string     `json:"name"`
	Type model.Type `json:"unit_type"`
}

type statusRequest struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

type statusResponse struct {
	Unit    model.Unit `json:"unit"`
	Changed bool       `json:"changed"`
}

// NewHandler serves the unit registry: GET lists every unit, POST registers
// a new one. Status transitions live on their own route so the registry and
// the status log keep separate write paths.
func NewHandler(db *database.DB) http.Handler {
	return &handler{db: db}
}

type handler struct {
	db *database.DB
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	switch r.Method {
	case "GET":
		units, err := h.db.FindAll(ctx, nil)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to list units, %v"}`, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, err := json.Marshal(struct {
			Data []model.Unit `json:"data"`
		}{Data: units})
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	case "POST":
		var req registerRequest
		defer r.Body.Close()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.DecodeErr(ctx, w, err)
			return
		}
		if req.Name == "" {
			httputil.RespBadRequest(ctx, w, `{"error": "name must not be empty"}`)
			return
		}
		if req.Type != model.TypeAmbulance && req.Type != model.TypeEngine {
			httputil.RespBadRequest(ctx, w, `{"error": "unknown unit type %q"}`, req.Type)
			return
		}
		u := model.NewUnit(req.Name, req.Type)
		if err := h.db.Save(ctx, u); err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to store unit, %v"}`, err)
			return
		}
		logger.Infof("registered unit %s (%s)", u.Name, u.Type)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		b, err := json.Marshal(&u)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
	}
}

// NewLogsHandler lists status-change log entries, newest first. unit_id
// narrows to one unit, limit caps the result; a malformed limit is
// ignored.
func NewLogsHandler(db *database.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
			_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
			return
		}

		var filter database.LogFilterFn
		if raw := r.URL.Query().Get("unit_id"); raw != "" {
			unitID, err := uuid.Parse(raw)
			if err != nil {
				httputil.RespBadRequest(ctx, w, `{"error": "unit_id is not a valid uuid"}`)
				return
			}
			filter = func(entry model.LogEntry) bool { return entry.UnitID == unitID }
		}

		entries, err := db.Logs(ctx, filter)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to list logs, %v"}`, err)
			return
		}
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if limit, err := strconv.Atoi(raw); err == nil && limit >= 0 && limit < len(entries) {
				entries = entries[:limit]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, err := json.Marshal(struct {
			Data []model.LogEntry `json:"data"`
		}{Data: entries})
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	})
}

// NewStatusHandler applies a status transition to a unit. The registry write
// and the log append happen in one transaction, so a response always
// reflects a logged transition or no change at all.
func NewStatusHandler(db *database.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
			_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
			return
		}

		var req statusRequest
		defer r.Body.Close()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.DecodeErr(ctx, w, err)
			return
		}

		id, err := uuid.Parse(req.ID)
		if err != nil {
			httputil.RespBadRequest(ctx, w, `{"error": "id is not a valid uuid"}`)
			return
		}
		if !model.ValidStatus(req.Status) {
			httputil.RespBadRequest(ctx, w, `{"error": "unknown status %q"}`, req.Status)
			return
		}

		u, changed, err := db.SetStatus(ctx, id, req.Status)
		if err != nil {
			if errors.Is(err, database.ErrUnitNotFound) {
				httputil.RespNotFound(ctx, w, `{"error": "unit %s not found"}`, id)
				return
			}
			httputil.RespInternalError(ctx, w, `{"error": "unable to update status, %v"}`, err)
			return
		}
		if changed {
			logger.Infof("unit %s status: %s", u.Name, u.Status)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, err := json.Marshal(&statusResponse{Unit: u, Changed: changed})
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	})
}
