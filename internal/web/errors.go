package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with whatever the service layer returned; the
// named sentinel errors are mapped to HTTP status codes here, in one place,
// and the technical error is logged with the request ID for correlation.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oceandata/cruisedash/internal/check"
	"github.com/oceandata/cruisedash/internal/store"
	"github.com/oceandata/cruisedash/internal/submit"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusForError maps service errors to an HTTP status and a stable
// machine-readable code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "dataset_not_found"
	case errors.Is(err, submit.ErrUnknownDataset):
		return http.StatusNotFound, "unknown_dataset"
	case errors.Is(err, check.ErrUnassignedColumnType):
		return http.StatusUnprocessableEntity, "unassigned_column_type"
	case errors.Is(err, check.ErrUnexpectedColumnType):
		return http.StatusUnprocessableEntity, "unexpected_column_type"
	case errors.Is(err, submit.ErrUnacceptableData):
		return http.StatusUnprocessableEntity, "unacceptable_data"
	case errors.Is(err, submit.ErrGeopositionCheck):
		return http.StatusUnprocessableEntity, "geoposition_check_failed"
	case errors.Is(err, check.ErrCheckEngine):
		return http.StatusBadGateway, "check_engine_failure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError logs the technical error and writes the mapped JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeErrorResponse(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// respondErrorMessage writes an error response with a fixed message and no
// service error behind it.
func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	writeErrorResponse(w, status, ErrorResponse{Error: message})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
