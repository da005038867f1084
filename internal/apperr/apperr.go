// Package apperr defines the error kinds shared by the domain packages and the
// HTTP error responder. Domain sentinels wrap one of the kinds so callers can
// match either the precise sentinel or the broad kind with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("unauthorized")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Kind is the coarse classification the responder maps to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// KindOf classifies err. Anything that does not wrap a known kind is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with a caller-facing message that unwraps to kind.
func New(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for a field-level ValidationError.
func Invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// Message returns the caller-facing message carried by err and, for
// validation failures, the offending field. ok is false for errors that
// carry no public message.
func Message(err error) (message, field string, ok bool) {
	var verr ValidationError
	if errors.As(err, &verr) {
		return verr.Message, verr.Field, true
	}
	var kerr *kindError
	if errors.As(err, &kerr) {
		return kerr.message, "", true
	}
	return "", "", false
}
