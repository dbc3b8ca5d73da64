// Package errors defines the tagged error taxonomy of the recommendation
// pipeline. Every failure that reaches the HTTP boundary carries one of the
// codes below so handlers can dispatch on it.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error codes for the application.
const (
	CodeUnknown             = "UNKNOWN"
	CodeValidation          = "VALIDATION"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeEmptyShortlist      = "EMPTY_SHORTLIST"
	CodeGenerationFailed    = "GENERATION_FAILED"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is the concrete ApplicationError used by every constructor below.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports a match against another *Error carrying the same code, so
// callers can write errors.Is(err, errors.ErrEmptyShortlist).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.message == "" && t.err == nil && t.code == e.code
}

// Sentinels usable with errors.Is.
var (
	ErrValidation          = &Error{code: CodeValidation}
	ErrUpstreamUnavailable = &Error{code: CodeUpstreamUnavailable}
	ErrEmptyShortlist      = &Error{code: CodeEmptyShortlist}
	ErrGenerationFailed    = &Error{code: CodeGenerationFailed}
)

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if it doesn't have one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// HTTPStatus maps an error code to the status the HTTP layer answers with.
func HTTPStatus(code string) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case CodeEmptyShortlist:
		return http.StatusNotFound
	case CodeGenerationFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, cause error) error {
	return &Error{code: CodeValidation, message: message, err: cause}
}

func NewUpstreamUnavailableError(message string, cause error) error {
	return &Error{code: CodeUpstreamUnavailable, message: message, err: cause}
}

func NewEmptyShortlistError(message string) error {
	return &Error{code: CodeEmptyShortlist, message: message}
}

func NewGenerationFailedError(message string, cause error) error {
	return &Error{code: CodeGenerationFailed, message: message, err: cause}
}
