package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match any wrapped instance against its sentinel by code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// WithMessage returns a copy of the domain error carrying a specific
// user-facing message. Validation and not-found messages may be specific;
// token and database messages stay generic.
func WithMessage(domainErr *DomainError, message string) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: message,
	}
}

// Predefined domain errors
var (
	// Authentication errors
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "authentication failed")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid credentials")
	ErrTokenError         = NewDomainError("TOKEN_ERROR", "invalid token")
	ErrTokenNotFound      = NewDomainError("TOKEN_NOT_FOUND", "invalid token")
	ErrRefreshExpired     = NewDomainError("REFRESH_TOKEN_EXPIRED", "refresh token expired")
	// Presenting an already-revoked refresh token. Raising this error has a
	// side effect: every live token in the family has been revoked.
	ErrTokenReuseDetected = NewDomainError("TOKEN_REUSE_DETECTED", "invalid token")

	// Account errors
	ErrEmailExists       = NewDomainError("EMAIL_EXISTS", "email already exists")
	ErrSignupDisabled    = NewDomainError("SIGNUP_DISABLED", "signup is disabled")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")
	ErrForbidden         = NewDomainError("FORBIDDEN", "access denied")

	// Request errors
	ErrValidation = NewDomainError("VALIDATION_ERROR", "invalid input")
	ErrBadRequest = NewDomainError("BAD_REQUEST", "bad request")
	ErrNotFound   = NewDomainError("NOT_FOUND", "not found")

	// System errors
	ErrStorage  = NewDomainError("STORAGE_ERROR", "storage failure")
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "VALIDATION_ERROR", "BAD_REQUEST", "EMAIL_EXISTS":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "TOKEN_ERROR",
		"TOKEN_NOT_FOUND", "REFRESH_TOKEN_EXPIRED", "TOKEN_REUSE_DETECTED",
		"INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "FORBIDDEN", "SIGNUP_DISABLED":
		return http.StatusForbidden

	// 404 Not Found
	case "NOT_FOUND":
		return http.StatusNotFound

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts the user-facing error message.
// Internal and storage failures always read as their generic message,
// never the wrapped cause.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return "internal server error"
}
