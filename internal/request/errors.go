package request

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTimeRange   = errors.New("invalid time range")
	ErrConflictingColumns = errors.New("conflicting column requests")
	ErrMissingRequest     = errors.New("data request not found in job configuration")
	ErrCorruptRequest     = errors.New("corrupt data request")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error
	context string
}

func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
