package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// An APIError is an error response returned by the remote API.
//
// The error is surfaced to callers exactly as received; no classification or
// wrapping is added on top of what the API returned.
type APIError struct {
	// Code is the HTTP status code.
	Code int

	// Message is the top level error message.
	Message string

	// Errors contains the individual errors from the response, if any.
	Errors []ErrorItem

	// Raw is the unprocessed response body the error arrived with. May be
	// nil if the body could not be read.
	Raw json.RawMessage
}

// An ErrorItem is a single error within an API error response.
type ErrorItem struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Code, http.StatusText(e.Code))
}

// errorEnvelope is the error body shape returned by the API:
//
//   {"error": {"code": 404, "message": "...", "errors": [...]}}
type errorEnvelope struct {
	Error struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Errors  []ErrorItem `json:"errors"`
	} `json:"error"`
}

// newAPIError builds an APIError from a response status and body. The body is
// kept raw regardless of whether it decodes as an error envelope.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Code: status}
	if len(body) > 0 {
		apiErr.Raw = json.RawMessage(body)
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err == nil {
			apiErr.Message = env.Error.Message
			apiErr.Errors = env.Error.Errors
		}
	}
	return apiErr
}

// IsNotFound reports whether the error is an API error with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.Code == http.StatusNotFound
}
