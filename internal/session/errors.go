package session

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when an operation's input is rejected.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current screen. It matches ErrValidation under errors.Is.
	ErrInvalidTransition = fmt.Errorf("%w: invalid transition", ErrValidation)
)

// StoreError wraps a persistence failure. The session is left in the state
// it was in before the failed operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func invalidTransition(op string, from Screen) error {
	return fmt.Errorf("%s from %s: %w", op, from.Name(), ErrInvalidTransition)
}

func validationError(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrValidation, fmt.Sprintf(format, args...))
}
