package password

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a malformed argument to Hash or Verify.
type InvalidInputError struct {
	// Field names the offending argument ("password" or "hash").
	Field string

	// Reason describes what is wrong with it.
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) report true.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidHash(reason string) error {
	return &InvalidInputError{Field: "hash", Reason: reason}
}
