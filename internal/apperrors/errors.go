// Package apperrors defines the error kinds shared by services and handlers.
//
// Go Pattern: Sentinel errors plus errors.Is. Services wrap a sentinel with
// a human message; handlers only ask "what kind of error is this?" and pick
// the HTTP status from that.
package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
)

// CustomError carries a user-facing message and the sentinel it belongs to.
type CustomError struct {
	Err     error
	Message string
}

func (e *CustomError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidation, Message: message}
}

func NewNotFoundError(message string) error {
	return &CustomError{Err: ErrNotFound, Message: message}
}

func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrForbidden, Message: message}
}

func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// Message returns the user-facing text of err when it has one.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return ""
}
