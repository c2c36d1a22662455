// Package apperr defines the API error taxonomy and the uniform JSON payload
// every failure is rendered with: {message, code, errors?}.  Handlers and
// middleware return *Error values; the echo error handler installed by the
// router turns them into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared with clients.  Clients branch on these, never on message text.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNoToken             = "NO_TOKEN"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeTokenInvalidated    = "TOKEN_INVALIDATED"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeTokenError          = "TOKEN_ERROR"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeAdminNotFound       = "ADMIN_NOT_FOUND"
	CodeUserExists          = "USER_EXISTS"
	CodeAdminExists         = "ADMIN_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeAlreadyCheckedIn    = "ALREADY_CHECKED_IN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodeInternal            = "INTERNAL_ERROR"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an API-facing failure.  Status is the HTTP status; the rest is
// serialized as-is.  Cause is never serialized outside development.
type Error struct {
	Status     int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors,omitempty"`
	RetryAfter int          `json:"retryAfter,omitempty"`
	Cause      error        `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Validation is a 400 with per-field details.
func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg, Errors: fields}
}

// BadRequest is a 400 business-rule rejection.
func BadRequest(code, msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: msg}
}

// Unauthorized is a 401 authentication failure.
func Unauthorized(code, msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: code, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// TooManyRequests is a 429 carrying the seconds until the window resets.
func TooManyRequests(code, msg string, retryAfter int) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: code, Message: msg, RetryAfter: retryAfter}
}

// Internal is a 500.  msg is what clients see; cause is logged.
func Internal(msg string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msg, Cause: cause}
}
