package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specforge error code.
type ErrorCode string

const (
	ErrValidation       ErrorCode = "VALIDATION"        // 400
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrEmptyResponse    ErrorCode = "EMPTY_RESPONSE"    // 502
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED" // 502
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// ForgeError represents a structured error with code, status, and details.
type ForgeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *ForgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ForgeError) Unwrap() error {
	return e.cause
}

// NewValidation creates a 400 error for input that could not be repaired,
// parsed, or normalized. Caused by the caller or by generated text.
func NewValidation(msg string) *ForgeError {
	return &ForgeError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewValidationWithDetails creates a validation error that carries details.
func NewValidationWithDetails(msg string, details map[string]any) *ForgeError {
	e := NewValidation(msg)
	e.Details = details
	return e
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ForgeError {
	return &ForgeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownStrategy creates a validation error listing the valid strategy keys.
func NewUnknownStrategy(name string, valid []string) *ForgeError {
	return &ForgeError{
		Code:    ErrValidation,
		Status:  400,
		Message: fmt.Sprintf("unknown strategy %q; valid strategies: %s", name, strings.Join(valid, ", ")),
		Details: map[string]any{"strategy": name, "valid": valid},
	}
}

// NewNotFound creates a 404 error for when a project cannot be found.
func NewNotFound(identifier string) *ForgeError {
	return &ForgeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("project not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewEmptyResponse creates a 502 error for a blank generator response.
func NewEmptyResponse(strategy string) *ForgeError {
	return &ForgeError{
		Code:    ErrEmptyResponse,
		Status:  502,
		Message: fmt.Sprintf("generator returned an empty response for %s", strategy),
		Details: map[string]any{"strategy": strategy},
	}
}

// NewGenerationFailed creates a 502 error when the generator call itself fails.
func NewGenerationFailed(err error) *ForgeError {
	msg := "generation failed"
	if err != nil {
		msg = "generation failed: " + err.Error()
	}
	return &ForgeError{
		Code:    ErrGenerationFailed,
		Status:  502,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *ForgeError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &ForgeError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a ForgeError with the given code.
func Is(err error, code ErrorCode) bool {
	var fErr *ForgeError
	if stderrors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}

// As extracts a ForgeError from err.
func As(err error) (*ForgeError, bool) {
	var fErr *ForgeError
	if stderrors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}
