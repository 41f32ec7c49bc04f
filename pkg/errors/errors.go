// Package errors translates domain failures into the codes and HTTP
// statuses the API answers with.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"backoffice/domain/shared"
)

// ErrorCode machine readable error class returned to clients
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
)

const internalMessage = "internal server error"

var statusByCode = map[ErrorCode]int{
	CodeBadRequest:     http.StatusBadRequest,
	CodeValidation:     http.StatusBadRequest,
	CodeUnauthorized:   http.StatusUnauthorized,
	CodeForbidden:      http.StatusForbidden,
	CodeNotFound:       http.StatusNotFound,
	CodeTooManyRequest: http.StatusTooManyRequests,
}

// Checked in order; the first sentinel found in the chain wins.
var codeBySentinel = []struct {
	sentinel error
	code     ErrorCode
}{
	{shared.ErrInvalidInput, CodeValidation},
	{shared.ErrUnauthenticated, CodeUnauthorized},
	{shared.ErrForbidden, CodeForbidden},
	{shared.ErrNotFound, CodeNotFound},
}

// AppError is what the API layer renders.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Field is set for validation failures raised on a single input field.
	Field string `json:"field,omitempty"`
	Err   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// HTTPStatusCode defaults to 500 for codes without an explicit mapping.
func (e *AppError) HTTPStatusCode() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

func Internal(message string) *AppError { return newAppError(CodeInternal, message, nil) }

func TooManyRequests(message string) *AppError {
	return newAppError(CodeTooManyRequest, message, nil)
}

func Validation(message string) *AppError { return newAppError(CodeValidation, message, nil) }

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// FromDomainError classifies err by the shared domain sentinels. Known
// classes keep the error text; anything else is reported as internal with
// the cause attached for logging only.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	for _, m := range codeBySentinel {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		out := newAppError(m.code, err.Error(), err)
		var de *shared.DomainError
		if errors.As(err, &de) {
			out.Field = de.Field
		}
		return out
	}
	return newAppError(CodeInternal, internalMessage, err)
}
