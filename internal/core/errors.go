// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Input errors
	ErrParse = &Error{Code: "PARSE_FAILED", Message: "malformed time range or hour key"}

	// Export API errors
	ErrFetch            = &Error{Code: "FETCH_FAILED", Message: "export request rejected"}
	ErrFetchServer      = &Error{Code: "FETCH_SERVER", Message: "export server error"}
	ErrFetchRateLimited = &Error{Code: "FETCH_RATE_LIMITED", Message: "export rate limited"}
	ErrMaxAttempts      = &Error{Code: "FETCH_MAX_ATTEMPTS", Message: "fetch retry budget exhausted"}

	// Archive errors
	ErrDecode = &Error{Code: "DECODE_FAILED", Message: "export archive corrupt"}

	// Storage errors
	ErrStore = &Error{Code: "STORE_FAILED", Message: "storage operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
