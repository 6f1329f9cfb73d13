package session

import (
	"errors"
)

var (
	// ErrNotSupported marks an operation the connected firmware does not
	// offer; checked before any exchange.
	ErrNotSupported = errors.New("session: not supported by this firmware")
	// ErrInvalidArgument marks a local precondition violation.
	ErrInvalidArgument = errors.New("session: invalid argument")
)

type ErrorWithMessage struct {
	Message string
	Err     error
}

func newErrorMessage(err error, msg string) *ErrorWithMessage {
	return &ErrorWithMessage{
		Message: msg,
		Err:     err,
	}
}

func (m *ErrorWithMessage) Error() string {
	if m.Message != "" {
		return m.Err.Error() + " (" + m.Message + ")"
	}
	return m.Err.Error()
}

func (m *ErrorWithMessage) Unwrap() error {
	return m.Err
}
