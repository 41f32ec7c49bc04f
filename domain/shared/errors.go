/*
Package shared holds the building blocks every bounded context of the
back office depends on: sentinel errors, the DomainError carrier, domain
events, the unit of work contract and generic specifications.

Error handling rules:
 1. The domain declares sentinel errors so callers branch with errors.Is().
 2. DomainError captures the call stack on creation and formats it lazily.
 3. Nothing in this package knows about HTTP status codes.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// ErrNotFound the referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput business rule or input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated no principal could be resolved
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden the principal is known but not allowed
	ErrForbidden = errors.New("forbidden")
)

// ============================================================================
// DomainError
// ============================================================================

// DomainError carries the business context of a failure plus the stack of
// the place it was raised. Supports errors.Is() and errors.As().
type DomainError struct {
	// Err the sentinel used for classification
	Err error

	// Entity name of the entity involved ("sale", "order", "staff")
	Entity string

	// Message human readable text returned to clients verbatim
	Message string

	// Field optional field name for validation failures
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured frames. Only called when logging.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack records the current call stack.
// skip is usually 3: Callers, CaptureStack and the NewXxxError constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders at most 10 non-runtime frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// ============================================================================
// Constructors
// ============================================================================

// NewNotFoundError builds a not-found error. An empty message falls back to
// "<entity> not found".
func NewNotFoundError(entity, message string) error {
	if message == "" {
		message = entity + " not found"
	}
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError builds a validation error for a business rule violation.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewUnauthenticatedError is raised when no usable identity was supplied.
func NewUnauthenticatedError(reason string) error {
	return &DomainError{
		Err:     ErrUnauthenticated,
		Entity:  "principal",
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewForbiddenError is raised for role or ownership violations.
func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can report where they were raised.
type Stacker interface {
	Stack() []string
}
