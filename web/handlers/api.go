package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ritualgrammar/navigator/internal/storage"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent.
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// statusFor maps a navigator error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrGraphBoundsExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, storage.ErrInference):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the user-facing summary of a navigator error.
func messageFor(err error) string {
	switch {
	case errors.Is(err, storage.ErrLoad):
		return "ontology could not be loaded"
	case errors.Is(err, storage.ErrInference):
		return "inference failed"
	case errors.Is(err, storage.ErrGraphBoundsExceeded):
		return "tree too large to materialize"
	default:
		return "request failed"
	}
}

// parseBool parses a boolean query parameter, returning defaultValue if it is
// absent or malformed.
func parseBool(s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// inferredParam reads the inferred flag from the query string or form.
func inferredParam(r *http.Request, defaultValue bool) bool {
	return parseBool(r.FormValue("inferred"), defaultValue)
}

// methodNotAllowed rejects requests whose method is not in allowed.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	for _, m := range allowed {
		if r.Method == m {
			return false
		}
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return true
}
