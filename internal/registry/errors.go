package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate marks an add whose name or locator is already registered.
	ErrDuplicate = errors.New("registry already registered")
	// ErrNotFound marks an unknown registry name.
	ErrNotFound = errors.New("registry not found")
	// ErrUnreachable marks a locator that could not be contacted.
	ErrUnreachable = errors.New("registry unreachable")
)

// Error reports a failed registry operation.
type Error struct {
	Registry string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("registry %s: %s: %v", e.Registry, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func opError(registry, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Registry: registry, Op: op, Err: err}
}
