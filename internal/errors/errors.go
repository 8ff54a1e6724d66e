// Package errors defines the service error taxonomy shared by the rules engine
// and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a ServiceError.
type Code string

const (
	// CodeValidation marks a payload that failed a business rule before any
	// store access.
	CodeValidation Code = "VALIDATION_REJECTED"
	// CodeNotFound marks a store lookup that matched zero rows.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict marks a write refused by a store constraint (duplicate
	// username, unknown author).
	CodeConflict Code = "CONFLICT"
	// CodeUnauthorized marks credentials that matched no account.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeStoreFailure marks connectivity or other unexpected store errors.
	CodeStoreFailure Code = "STORE_FAILURE"
	// CodeInvalidFormat marks transport input that could not be decoded.
	CodeInvalidFormat Code = "INVALID_FORMAT"
)

// ServiceError is the error value returned by every service operation.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a diagnostic key/value and returns the receiver.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(code Code, status int, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// Validation reports a failed business rule.
func Validation(message string, err error) *ServiceError {
	return newError(CodeValidation, http.StatusBadRequest, message, err)
}

// NotFound reports a lookup with no matching row.
func NotFound(resource string, id any) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource), nil).
		WithDetails("id", id)
}

// Conflict reports a store constraint violation.
func Conflict(message string, err error) *ServiceError {
	return newError(CodeConflict, http.StatusBadRequest, message, err)
}

// Unauthorized reports a credential mismatch.
func Unauthorized(message string) *ServiceError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message, nil)
}

// StoreFailure reports an unexpected store error during op.
func StoreFailure(op string, err error) *ServiceError {
	return newError(CodeStoreFailure, http.StatusInternalServerError, op+" failed", err)
}

// InvalidFormat reports undecodable transport input for field.
func InvalidFormat(field, message string) *ServiceError {
	return newError(CodeInvalidFormat, http.StatusBadRequest, message, nil).WithDetails("field", field)
}

// GetServiceError extracts a ServiceError from err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

// CodeOf returns the code carried by err, or "" when err is not a ServiceError.
func CodeOf(err error) Code {
	if se := GetServiceError(err); se != nil {
		return se.Code
	}
	return ""
}

// IsNotFound reports whether err signals absence.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsStoreFailure reports whether err is an unexpected store error.
func IsStoreFailure(err error) bool { return CodeOf(err) == CodeStoreFailure }

// IsRejected reports whether a mutating operation was refused, for any reason:
// bad input, constraint violation, missing target, credential mismatch or store
// failure.
func IsRejected(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeConflict, CodeNotFound, CodeUnauthorized, CodeStoreFailure, CodeInvalidFormat:
		return true
	}
	return false
}
