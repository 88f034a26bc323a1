package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy, mirrored by every console surface:
//   - validation errors are raised client-side before any request
//   - 404 on a list endpoint means "empty collection", never an error
//   - 401 clears the persisted session and surfaces ErrSessionExpired
//   - everything else becomes an *APIError scoped to the failed call
var (
	// ErrSessionExpired is returned after a 401 response has cleared the
	// persisted session.
	ErrSessionExpired = errors.New("session expired or invalid, run 'apexctl login'")

	// ErrNotLoggedIn is returned when an authenticated call is attempted
	// with no persisted session.
	ErrNotLoggedIn = errors.New("not logged in, run 'apexctl login'")
)

// APIError is a non-2xx response from the backend with whatever detail the
// backend included in the body.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Detail     any    `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// NewAPIError constructs an APIError with the status text as fallback message.
func NewAPIError(statusCode int, message string) *APIError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: message}
}

// IsNotFound reports whether err is an APIError with HTTP 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is an APIError with HTTP 409.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}
