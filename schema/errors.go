package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("payload validation failed")

// FieldError describes one failing field. Problems with the document as a
// whole are reported under the field name "body".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Schema string       `json:"-"`
	Fields []FieldError `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) report true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
