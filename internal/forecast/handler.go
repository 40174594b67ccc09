package forecast

import (
	"encoding/json"
	"fmt"
	"net/http"

	"siren/internal/httputil"
	"siren/internal/logging"
)

func NewHandler(f *Forecaster) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
			_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
			return
		}

		report, err := f.AmbulanceLow(ctx)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to build forecast, %v"}`, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, err := json.Marshal(report)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to marshal response, %v"}`, err)
			return
		}
		_, _ = w.Write(b)
	})
}
