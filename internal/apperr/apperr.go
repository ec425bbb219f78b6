package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the fixed failure categories the
// gateway can produce. Each kind maps to exactly one HTTP status, except
// Upstream which carries the status reported by the external processor.
type Kind uint8

const (
	Internal Kind = iota
	Config
	BadSignature
	Unauthorized
	Forbidden
	InvalidInput
	NotFound
	Upstream
	Business
)

// Error is the single error shape handlers return. It is translated to an
// HTTP response once, by the server's error handler.
type Error struct {
	Kind    Kind
	Message string
	Details string
	// Status overrides the kind's default HTTP status. Only meaningful for
	// Upstream errors, where the processor's own status is passed through.
	Status int
	Err    error
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause to a new error of the given kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetails returns a copy carrying extra caller-visible detail.
func (e *Error) WithDetails(details string) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// WithStatus returns a copy carrying an explicit HTTP status.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus resolves the status code the error maps to.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case Config:
		return http.StatusInternalServerError
	case BadSignature:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Upstream:
		return http.StatusBadGateway
	case Business:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
