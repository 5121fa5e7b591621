package column

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidField   = errors.New("invalid field")
	ErrDuplicateField = errors.New("duplicate field")
	ErrReservedField  = errors.New("reserved field name")
	ErrInvalidOptions = errors.New("invalid column request options")
	ErrUnknownFilter  = errors.New("unknown filter kind")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error  // The underlying sentinel error
	cause   error  // Optional error that led to this one
	context string // Additional error context
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap exposes the sentinel and the cause, if any, to errors.Is/As
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}

// newError creates a new column error with context
func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}

// wrapError creates a column error that keeps cause reachable through errors.Is/As
func wrapError(err, cause error, format string, args ...interface{}) *Error {
	e := newError(err, format, args...)
	e.cause = cause
	e.context = fmt.Sprintf("%s: %v", e.context, cause)
	return e
}
