package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"siren/internal/httputil"
	"siren/internal/logging"
	"siren/internal/request/database"
	"siren/internal/request/model"
	unitdb "siren/internal/unit/database"
	unitmodel "siren/internal/unit/model"
)

const maxBodyBytes = 1 * 1024 * 1024

type createRequest struct {
	UnitType unitmodel.Type `json:"unit_type"`
	Quantity int            `json:"quantity"`
	Note     string         `json:"note"`
}

type dispatchRequest struct {
	RequestID string   `json:"request_id"`
	UnitIDs   []string `json:"unit_ids"`
}

// NewHandler serves the resource-request queue: GET lists requests newest
// first (optionally filtered by unit_type and status), POST files a new
// request for units of one type.
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
		unitType := unitmodel.Type(r.URL.Query().Get("unit_type"))
		status := model.Status(r.URL.Query().Get("status"))
		requests, err := h.db.FindAll(ctx, func(req model.ResourceRequest) bool {
			if unitType != "" && req.UnitType != unitType {
				return false
			}
			if status != "" && req.Status != status {
				return false
			}
			return true
		})
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to list requests, %v"}`, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, err := json.Marshal(struct {
			Data []model.ResourceRequest `json:"data"`
		}{Data: requests})
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	case "POST":
		var req createRequest
		defer r.Body.Close()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.DecodeErr(ctx, w, err)
			return
		}
		if req.UnitType != unitmodel.TypeAmbulance && req.UnitType != unitmodel.TypeEngine {
			httputil.RespBadRequest(ctx, w, `{"error": "unknown unit type %q"}`, req.UnitType)
			return
		}
		if req.Quantity <= 0 {
			httputil.RespBadRequest(ctx, w, `{"error": "quantity must be positive"}`)
			return
		}
		rr := model.NewRequest(req.UnitType, req.Quantity, req.Note)
		if err := h.db.Save(ctx, rr); err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to store request, %v"}`, err)
			return
		}
		logger.Infof("filed request %s for %d %s", rr.ID, rr.Quantity, rr.UnitType)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		b, err := json.Marshal(&rr)
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

// NewDispatchHandler assigns available units to a filed request. Every
// named unit must exist, match the requested type, and be AVAILABLE;
// accepted units transition to DISPATCHED through the status log, so
// dispatches feed the same consumption rate the forecast reads. The
// request lands on COMPLETED once assignments cover the quantity,
// PARTIAL otherwise.
func NewDispatchHandler(db *database.DB, unitDB *unitdb.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
			_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
			return
		}

		var req dispatchRequest
		defer r.Body.Close()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.DecodeErr(ctx, w, err)
			return
		}

		requestID, err := uuid.Parse(req.RequestID)
		if err != nil {
			httputil.RespBadRequest(ctx, w, `{"error": "request_id is not a valid uuid"}`)
			return
		}
		if len(req.UnitIDs) == 0 {
			httputil.RespBadRequest(ctx, w, `{"error": "unit_ids must not be empty"}`)
			return
		}

		rr, err := db.Find(ctx, requestID)
		if err != nil {
			if errors.Is(err, database.ErrRequestNotFound) {
				httputil.RespNotFound(ctx, w, `{"error": "request %s not found"}`, requestID)
				return
			}
			httputil.RespInternalError(ctx, w, `{"error": "unable to load request, %v"}`, err)
			return
		}

		units := make([]unitmodel.Unit, 0, len(req.UnitIDs))
		for _, raw := range req.UnitIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				httputil.RespBadRequest(ctx, w, `{"error": "unit id %q is not a valid uuid"}`, raw)
				return
			}
			u, err := unitDB.Find(ctx, id)
			if err != nil {
				if errors.Is(err, unitdb.ErrUnitNotFound) {
					httputil.RespBadRequest(ctx, w, `{"error": "unit %s not found"}`, id)
					return
				}
				httputil.RespInternalError(ctx, w, `{"error": "unable to load unit, %v"}`, err)
				return
			}
			if u.Type != rr.UnitType {
				httputil.RespBadRequest(ctx, w, `{"error": "unit %s type mismatch"}`, u.ID)
				return
			}
			if u.Status != unitmodel.StatusAvailable {
				httputil.RespBadRequest(ctx, w, `{"error": "unit %s not available"}`, u.ID)
				return
			}
			units = append(units, u)
		}

		for _, u := range units {
			if rr.Assigned(u.ID) {
				continue
			}
			updated, _, err := unitDB.SetStatus(ctx, u.ID, unitmodel.StatusDispatched)
			if err != nil {
				httputil.RespInternalError(ctx, w, `{"error": "unable to dispatch unit, %v"}`, err)
				return
			}
			rr.Assignments = append(rr.Assignments, model.Assignment{
				UnitID:     updated.ID,
				AssignedAt: updated.LastStatusAt,
			})
		}

		if len(rr.Assignments) >= rr.Quantity {
			rr.Status = model.StatusCompleted
		} else {
			rr.Status = model.StatusPartial
		}
		rr.UpdatedAt = time.Now()
		if err := db.Save(ctx, rr); err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to store request, %v"}`, err)
			return
		}
		logger.Infof("request %s: %d/%d assigned, %s", rr.ID, len(rr.Assignments), rr.Quantity, rr.Status)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, err := json.Marshal(&rr)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	})
}
