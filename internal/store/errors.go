package store

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a missing deck, slide, image or entity. Callers match it
// with errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a malformed request before any file is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// notFoundf wraps ErrNotFound with context about what was missing.
func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
