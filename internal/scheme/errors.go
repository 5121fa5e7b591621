package scheme

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("invalid scheme configuration")
	ErrInvalidTuple     = errors.New("invalid tuple")
	ErrUnsupportedValue = errors.New("unsupported field value")
	ErrSinkClosed       = errors.New("sink is closed")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error  // The underlying sentinel error
	context string // Additional error context
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.err
}

func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
