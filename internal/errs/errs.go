// Package errs defines the error taxonomy shared by the engine: configuration
// errors, numeric errors and invariant violations.
package errs

import (
	"fmt"
	"log"
)

// #region kind

// Kind is a machine-readable error category.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindNumeric       Kind = "numeric"
	KindInvariant     Kind = "invariant"
)

// #endregion kind

// #region error

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "registry.Lookup"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrNumeric       = &Error{Kind: KindNumeric}
	ErrInvariant     = &Error{Kind: KindInvariant}
)

// #endregion error

// #region constructors

// Configuration creates a configuration error.
func Configuration(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Numeric creates a numeric error.
func Numeric(op, format string, args ...any) *Error {
	return &Error{Kind: KindNumeric, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Invariant creates an invariant violation.
func Invariant(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// #endregion constructors

// #region fatal

// Fatal logs err and panics with it. Used where a float64 API cannot report
// an error and continuing would produce wrong physics.
func Fatal(err error) {
	log.Printf("fatal: %v", err)
	panic(err)
}

// Check calls Fatal when err is non-nil.
func Check(err error) {
	if err != nil {
		Fatal(err)
	}
}

// #endregion fatal
