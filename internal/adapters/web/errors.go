package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"liftledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps a domain error onto the HTTP surface. Unknown errors
// become opaque 500s; their detail stays in the server log.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, r, err.Error(), "VALIDATION", http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrForbidden):
		writeError(w, r, "admin role required", "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, core.ErrBadCredentials):
		writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, r, err.Error(), "INVALID_STATE", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicatePayroll):
		writeError(w, r, err.Error(), "DUPLICATE_PAYROLL", http.StatusConflict)
	case errors.Is(err, core.ErrAdvanceOutstanding):
		writeError(w, r, err.Error(), "ADVANCE_OUTSTANDING", http.StatusConflict)
	case errors.Is(err, core.ErrScheduleMismatch):
		writeError(w, r, err.Error(), "SCHEDULE_MISMATCH", http.StatusUnprocessableEntity)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v; on failure it writes the error
// response and returns false. Returns HTTP 413 when the body exceeds the
// limit set by RequestBodyLimit, HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
