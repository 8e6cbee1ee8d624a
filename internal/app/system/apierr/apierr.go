// Package apierr is the error taxonomy shared by every JSON endpoint.
// Handlers return or construct *Error values; respond.Error turns them into
// the status code and envelope the client sees.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindBudgetExceeded
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindBudgetExceeded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBudgetExceeded:
		return "budget_exceeded"
	}
	return "internal"
}

// Error is an error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error // underlying cause; logged, never sent
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status is the HTTP status code for e.
func (e *Error) Status() int { return e.Kind.Status() }

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf formats a validation message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Invalid is a validation error carrying per-field messages.
func Invalid(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: map[string]any{"fields": fields}}
}

// NotFound reports that what (e.g. "group") does not exist in the caller's
// scope. Records owned by another tenant get the same answer.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Conflict(msg string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Message: msg, Details: details}
}

func BudgetExceeded(msg string, details map[string]any) *Error {
	return &Error{Kind: KindBudgetExceeded, Message: msg, Details: details}
}

// Internal wraps an unexpected failure. The message is generic on purpose.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// From returns err as an *Error, wrapping anything unrecognized as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
