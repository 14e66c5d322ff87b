package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kickzshop/checkout/internal/domain"
	"github.com/kickzshop/checkout/internal/middleware"
)

// Response is the JSON envelope every API endpoint answers with.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON writes the envelope with the given status.
func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// writeError maps a domain error onto the envelope. Internal errors are
// logged with full detail and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := middleware.ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("code", code),
		slog.Int("status", status),
	}
	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	writeJSON(w, status, domain.ErrorMessage(err), nil)
}
