package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Routing-specific rejections surfaced by the marking flow.
	ErrNoProfile         = New("NO_EFILING_PROFILE", http.StatusForbidden, "actor has no active e-filing profile")
	ErrNoMarkPermission  = New("NO_MARK_PERMISSION", http.StatusForbidden, "actor may not mark this file")
	ErrSignatureRequired = New("SIGNATURE_REQUIRED", http.StatusPreconditionFailed, "file requires e-signature before forwarding")
	ErrNotEligible       = New("RECIPIENT_NOT_ELIGIBLE", http.StatusForbidden, "Selected user is not allowed based on SLA matrix/location rules")
	ErrTargetInactive    = New("RECIPIENT_INACTIVE", http.StatusForbidden, "selected recipient is not an active e-filing user")
	ErrGeoMismatch       = New("GEO_MISMATCH", http.StatusForbidden, "geographic mismatch")
)

// GeoMismatch builds a geographic validation failure naming the scope that
// was required.
func GeoMismatch(scope string) *Error {
	return Clone(ErrGeoMismatch, fmt.Sprintf("Geographic mismatch: required scope %s", scope))
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
