package service

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller errors detected before the data store is
// touched.  Use errors.Is to test for it and errors.As with *InputError to
// read the message meant for the client.
var ErrInvalidInput = errors.New("invalid input")

// InputError carries a client-facing validation message.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrInvalidInput) hold for every InputError.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidInput(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// QueryError wraps a data-access failure with the listing that failed.
type QueryError struct {
	Operation string
	Criterion string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("Error %s for %s: %v", e.Operation, e.Criterion, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
