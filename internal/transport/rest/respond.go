package rest

import (
	"encoding/json"
	"net/http"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// Validation error codes, one per field/rule so the client can render
// precise inline feedback.
const (
	codeTextEmpty      = "validation_error_text_empty"
	codeTextTooLong    = "validation_error_text_too_long"
	codeContextTooLong = "validation_error_analysis_context_too_long"
	codeInvalidMode    = "validation_error_invalid_mode"
)

// errorResponse is the envelope for every non-2xx reply.
type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Data      any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeErrorCode(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{ErrorCode: code})
}

// statusForKind is the single place a taxonomy kind becomes an HTTP status
// and error_code. Raw internal errors never reach the client; everything
// not explicitly mapped collapses to a coarse 500.
func statusForKind(kind domain.ErrorKind) (int, string) {
	switch kind {
	case domain.KindRateLimit:
		return http.StatusTooManyRequests, "rate_limit_error"
	case domain.KindConfiguration:
		return http.StatusInternalServerError, "configuration_error"
	case domain.KindAuthentication:
		return http.StatusInternalServerError, "authentication_error"
	case domain.KindInvalidRequest:
		return http.StatusInternalServerError, "invalid_request_error"
	case domain.KindResponseValidation:
		return http.StatusInternalServerError, "validation_error"
	case domain.KindNetwork:
		return http.StatusInternalServerError, "network_error"
	default:
		return http.StatusInternalServerError, "unknown_error"
	}
}
