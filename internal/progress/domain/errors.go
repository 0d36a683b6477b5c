package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies request-facing failures.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindNotFound
	KindBadRequest
	KindTooLarge
	KindTimeout
)

// Status maps the kind to the HTTP status code returned to the client.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindTooLarge:
		return "too_large"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is a failure that ends request handling. Message is safe to show to
// the client; Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func TooLarge(msg string) *Error {
	return &Error{Kind: KindTooLarge, Message: msg}
}

func Timeout(msg string) *Error {
	return &Error{Kind: KindTimeout, Message: msg}
}

// Internal wraps a server-side fault. The client sees msg followed by the
// short form of err.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// As returns err as an *Error, wrapping anything unclassified as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}

// KindOf reports the Kind of err, KindInternal when it carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
