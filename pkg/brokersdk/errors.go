package brokersdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/keybridge-labs/keybridge/pkg/httpx"
)

// ============================================================================
// Broker Error Codes
// ============================================================================

const (
	// Broker failure classes, mirrored from the daemon's error taxonomy.
	ErrorCodeStartupFailure      = "startup_failure"
	ErrorCodeInteractionRequired = "interaction_required"
	ErrorCodeTimeout             = "timeout"
	ErrorCodeProviderError       = "provider_error"

	// Transport-level codes the daemon emits for malformed requests.
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeServerError    = "server_error"
)

// ============================================================================
// APIError - Broker wire error type
// ============================================================================

// APIError represents a broker error response. It implements the error
// interface and is used both by the daemon (to write HTTP responses) and by
// the SDK client (to represent errors).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the broker error code (e.g., "timeout", "interaction_required")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
// This is used by HTTP handlers to return broker error responses.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the request body is malformed or
	// missing required fields.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrServerError is returned when the daemon encountered an unexpected
	// condition that prevented it from fulfilling the request.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates a new APIError with the given status code, error code,
// and description. This is useful when the daemon maps broker failures onto
// the wire while keeping their original diagnostic text.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// StatusForCode maps a broker error code to the HTTP status the daemon
// serves it with. The broker fronts a provider it does not control, hence
// the gateway statuses: a phase deadline is a 504 and a provider diagnostic
// is a 502. Interaction-required is a 409 because the request was valid but
// conflicts with the caller's no-prompt constraint.
func StatusForCode(code string) int {
	switch code {
	case ErrorCodeStartupFailure:
		return http.StatusServiceUnavailable
	case ErrorCodeInteractionRequired:
		return http.StatusConflict
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodeProviderError:
		return http.StatusBadGateway
	case ErrorCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse attempts to parse an HTTP error response into a typed
// APIError. Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	// Success responses
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Try parsing as a broker error
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
