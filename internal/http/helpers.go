package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// newRequestID creates a unique request ID for tracing.
func newRequestID() string {
	return "req_" + uuid.NewString()
}

const orgHeader = "X-Org-ID"

// orgID extracts the tenant identifier resolved by the upstream proxy.
func orgID(r *http.Request) string {
	return r.Header.Get(orgHeader)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "url", r.URL.Path)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}
