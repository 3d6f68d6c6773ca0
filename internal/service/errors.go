package service

import (
	"errors"
	"fmt"
)

// Domain rule violations. The HTTP layer maps each of these to a status.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("invalid credentials")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrService is matched by every *Error, i.e. every store failure surfaced
// through a service.
var ErrService = errors.New("service error")

// Error wraps a store failure with a human-readable operation label.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "exception occurred while " + e.Op
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrService }

// ruleError attaches a message to one of the domain sentinels so callers
// get "validation failed: message text cannot be empty" and errors.Is still
// works.
func ruleError(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}
