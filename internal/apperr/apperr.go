// Package apperr defines the error taxonomy shared by the service and the
// HTTP boundary. Handlers and middleware classify failures by Kind; anything
// that is not an *Error is treated as an internal failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names a failure class from the taxonomy.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindConflict      Kind = "ConflictError"
	KindNotFound      Kind = "NotFoundError"
	KindUnauthorized  Kind = "UnauthorizedError"
	KindConfiguration Kind = "ConfigurationError"
	KindInternal      Kind = "InternalError"
)

// Error is a classified application error. Details carries the ordered
// per-field message list for validation failures and is nil otherwise.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to the response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConfiguration, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Validation builds a 400 error carrying the ordered field-message list.
func Validation(details []string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}

// Conflict builds a 409 error for a duplicate email or phone number.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound builds a 404 error naming the missing resource kind.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Unauthorized builds a 401 error with guidance for the caller.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Configuration builds a fatal 500 error for server misconfiguration.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Internal wraps an uncategorized failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// From extracts a classified error from err's chain.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := From(err); ok {
		return e.Kind == kind
	}
	return false
}
