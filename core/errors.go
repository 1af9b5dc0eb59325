package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTimeout is returned by a Runner when a process outlives its deadline.
var ErrTimeout = errors.New("process timed out")

// ErrorKind is the machine-readable class of a conversion failure.
type ErrorKind string

const (
	KindInvalidFormat     ErrorKind = "invalid_format"
	KindTooLarge          ErrorKind = "too_large"
	KindInvalidHTML       ErrorKind = "invalid_html"
	KindConversionTimeout ErrorKind = "conversion_timeout"
	KindConversionFailed  ErrorKind = "conversion_failed"
	KindEmptyOutput       ErrorKind = "empty_output"
	KindInternal          ErrorKind = "internal_error"
)

// HTTPStatus maps a kind to the status code the endpoint responds with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalidFormat, KindInvalidHTML:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error is a conversion failure carrying its kind and a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that keeps err as its cause.
func Wrap(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Errors not produced by this package are internal.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// MessageOf returns the message to show a caller for err.
func MessageOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}
