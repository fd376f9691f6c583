// Package apperr defines the error taxonomy shared by stores, the consistency
// coordinator, and HTTP handlers.
//
// Handlers map kinds to HTTP statuses: validation and guard failures are 400,
// missing entities 404, anything infrastructural 500. Integrity races are
// retried once by the layer that detects them; if they still surface they are
// reported as a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation policy and HTTP mapping.
type Kind int

const (
	// KindUnknown is the zero value; treated as infrastructure.
	KindUnknown Kind = iota
	// KindValidation covers malformed input: bad durations, oversized
	// fields, bad identifiers, empty required fields.
	KindValidation
	// KindGuard covers refused destructive operations: section deletion
	// with live references, confirmation email mismatch.
	KindGuard
	// KindNotFound covers references to entities that do not exist.
	KindNotFound
	// KindRace covers collisions detected at a defensive recheck (article
	// id, slug). Bounded retry, never infinite.
	KindRace
	// KindInfra covers store failures; logged, surfaced as 500.
	KindInfra
)

// Error carries a kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf builds a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Guardf builds a guard violation.
func Guardf(format string, args ...any) *Error {
	return &Error{Kind: KindGuard, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Racef builds an integrity-race error.
func Racef(format string, args ...any) *Error {
	return &Error{Kind: KindRace, Message: fmt.Sprintf(format, args...)}
}

// Infra wraps an infrastructure failure.
func Infra(err error, message string) *Error {
	return &Error{Kind: KindInfra, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; plain errors report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the human-readable message without the wrapped cause, or
// the plain error text for errors outside the taxonomy.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindGuard:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
