package helper

import "fmt"

// Error wraps an underlying error with the operation that produced it.
type Error struct {
	Operation string
	Err       error
}

// NewError creates a wrapped error with operation context.
func NewError(operation string, err error) *Error {
	return &Error{Operation: operation, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Operation, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}
