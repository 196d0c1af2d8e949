package platform

import (
	"errors"
	"fmt"
)

// APIError is a Web API response with ok=false. Callers can use errors.As
// to extract it, or IsAPIError to test for a specific code.
type APIError struct {
	// Method is the API method that failed, e.g. "conversations.join".
	Method string
	// Code is the platform's error code, e.g. "channel_not_found".
	Code string
	// Warning is set when the platform attached a warning to the failure.
	Warning string
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform: %s failed: %s", e.Method, e.Code)
}

// Error codes the service reacts to.
const (
	ErrCodeAlreadyInChannel = "already_in_channel"
	ErrCodeChannelNotFound  = "channel_not_found"
	ErrCodeInvalidAuth      = "invalid_auth"
	ErrCodeNotAuthed        = "not_authed"
	ErrCodeRateLimited      = "ratelimited"
)

// IsAPIError checks whether err is an *APIError with the given code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// ErrorCode returns the platform error code carried by err, or the error
// text when err is not an *APIError.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return err.Error()
}
