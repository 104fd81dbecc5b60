// Package validation holds the input error taxonomy shared by the domain
// services. Services validate before any store mutation; stores never do.
package validation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers non-numeric, zero or negative values and
	// values outside an enumerated set.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyRequiredField is returned when a required form field is missing.
	ErrEmptyRequiredField = errors.New("required field is empty")
)

// Invalid wraps ErrInvalidInput with a field-specific message.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// Missing wraps ErrEmptyRequiredField for the named field.
func Missing(field string) error {
	return fmt.Errorf("%s is required: %w", field, ErrEmptyRequiredField)
}

// IsInputError reports whether err belongs to the input taxonomy.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrEmptyRequiredField)
}
