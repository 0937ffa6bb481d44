// Package apierror provides the standardized error vocabulary for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"fmt"
	"net/http"
)

// Kind is the machine-readable error category carried in every 4xx/5xx body.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindAuth              Kind = "auth_error"
	KindForbidden         Kind = "authorization_error"
	KindConflict          Kind = "conflict_error"
	KindInsufficientStock Kind = "insufficient_stock"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal_error"
)

// Error is the canonical error envelope for all non-2xx HTTP responses.
// Services return *Error directly; handlers serialize it as-is.
type Error struct {
	Kind   Kind              `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Detail }

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, detail string) *Error { return &Error{Kind: kind, Detail: detail} }

func Validation(detail string) *Error { return New(KindValidation, detail) }
func Auth(detail string) *Error       { return New(KindAuth, detail) }
func Forbidden(detail string) *Error  { return New(KindForbidden, detail) }
func Conflict(detail string) *Error   { return New(KindConflict, detail) }
func NotFound(resource string) *Error { return New(KindNotFound, resource+" not found") }
func Internal(detail string) *Error   { return New(KindInternal, detail) }

// ValidationFields wraps per-field validator failures.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Detail: "validation failed", Fields: fields}
}

// InsufficientStock names the product and the shortfall amount, so the client
// can tell the user exactly how many units are missing.
func InsufficientStock(productName string, shortfall int) *Error {
	return New(KindInsufficientStock,
		fmt.Sprintf("insufficient stock for %q: short by %d unit(s)", productName, shortfall))
}

// From converts an arbitrary error into an *Error, defaulting unknown errors
// to KindInternal so raw DB messages never reach clients.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return Internal("internal server error")
}
