// Package apperr defines the error taxonomy shared by the store, the services
// and the HTTP boundary. Callers match with errors.Is against the sentinels
// declared next to the code that returns them, and with KindOf at the boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for translation into a transport status.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified error. Sentinels are declared as *Error values and
// compared by identity, so wrapping with fmt.Errorf("%w") keeps errors.Is working.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Unavailable wraps a transient infrastructure failure.
func Unavailable(op string, cause error) error {
	return &Error{Kind: KindUnavailable, Msg: op, Err: cause}
}

// KindOf returns the Kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the message of the outermost classified error in err's
// chain, without causes. It is safe to return to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsAuth(err error) bool        { return KindOf(err) == KindAuth }
func IsConflict(err error) bool    { return KindOf(err) == KindConflict }
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
