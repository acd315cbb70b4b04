package blueprint

import (
	"errors"
	"fmt"
)

var (
	// ErrPathEscape marks an output path that resolves outside the project root.
	ErrPathEscape = errors.New("output path escapes the project root")
	// ErrUnknownKind marks a declaration whose kind has no registered variant.
	ErrUnknownKind = errors.New("unknown blueprint kind")
	// ErrDuplicateName marks two declarations sharing a name in one template.
	ErrDuplicateName = errors.New("duplicate blueprint name")
)

// PromptError reports a failure of the prompting capability while a
// blueprint collected its input.
type PromptError struct {
	Blueprint string
	Err       error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompting for %s: %v", e.Blueprint, e.Err)
}

func (e *PromptError) Unwrap() error { return e.Err }

// RenderError reports a failed expansion or write during the render phase.
type RenderError struct {
	Blueprint string
	Path      string
	Err       error
}

func (e *RenderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rendering %s: %v", e.Blueprint, e.Err)
	}
	return fmt.Sprintf("rendering %s (%s): %v", e.Blueprint, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func promptError(b Blueprint, err error) error {
	if err == nil {
		return nil
	}
	return &PromptError{Blueprint: b.Name(), Err: err}
}

func renderError(b Blueprint, path string, err error) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Blueprint: b.Name(), Path: path, Err: err}
}
