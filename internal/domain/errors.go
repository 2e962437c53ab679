package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mutation targets an id that no longer exists.
// Deleting a missing record is not an error (the store convention is idempotent
// delete); reads and updates surface it.
var ErrNotFound = errors.New("todo not found")

// ValidationError rejects a payload before any mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError anywhere in its chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
