// Package httpx carries the HTTP status classification shared by the backend
// clients and the API error mapping.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned by the backend clients for non-2xx responses.
// It preserves the status code so callers can map conflicts, validation
// failures and server errors differently.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// NewStatusError builds a StatusError from a response body. JSON bodies with
// a "message" or "error" field surface that field, everything else surfaces
// the raw body.
func NewStatusError(statusCode int, body []byte) *StatusError {
	msg := strings.TrimSpace(string(body))

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			msg = parsed.Message
		} else if parsed.Error != "" {
			msg = parsed.Error
		}
	}

	return &StatusError{StatusCode: statusCode, Message: msg}
}

// StatusCode extracts the HTTP status from an error chain, or 0 if the error
// did not originate from a backend response.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsStatus reports whether the error chain carries the given HTTP status.
func IsStatus(err error, statusCode int) bool {
	return StatusCode(err) == statusCode
}

// IsServerError reports whether the error chain carries a 5xx status.
func IsServerError(err error) bool {
	code := StatusCode(err)
	return code >= http.StatusInternalServerError
}
