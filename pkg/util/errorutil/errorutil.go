package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared across the portal core.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInactive          = "INACTIVE"
	CodeInvalidCredential = "INVALID_CREDENTIAL"
	CodeNotAuthorized     = "NOT_AUTHORIZED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeConnectionError   = "CONNECTION_ERROR"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeSessionActive     = "SESSION_ACTIVE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewInactive signals a record that exists but is disabled for login.
func NewInactive(resource string) error {
	return NewDomainError(CodeInactive, fmt.Sprintf("%s is inactive", resource), http.StatusForbidden, nil)
}

func NewInvalidCredential() error {
	return NewDomainError(CodeInvalidCredential, "invalid credentials", http.StatusUnauthorized, nil)
}

// NewNotAuthorized signals a successfully authenticated identity without a
// matching portal record.
func NewNotAuthorized(message string) error {
	return NewDomainError(CodeNotAuthorized, message, http.StatusForbidden, nil)
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

func NewConnectionError(err error) error {
	return &DomainError{
		Code:       CodeConnectionError,
		Message:    "directory service unreachable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewPermissionDenied signals a live subscription revoked mid-stream.
func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

// NewSessionActive signals a login attempted while another profile is resident.
func NewSessionActive() error {
	return NewDomainError(CodeSessionActive, "a session is already active; log out first", http.StatusConflict, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// CodeOf extracts the domain error code, or CodeInternal for untyped errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	return err != nil && ToDomainError(err).Code == code
}
