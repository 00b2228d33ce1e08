package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrValidationFailed wraps every field validation error so handlers can
// map the whole family to a 400.
var ErrValidationFailed = fmt.Errorf("validation failed")

// Field length limits.
const (
	DefaultMaxStringLength = 255
	MaxDescriptionLength   = 1024
	MaxNotesLength         = 2048
)

// ValidateStringNotEmpty rejects strings that are empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength limits a field by rune count, not byte length.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateOneOf restricts a field to a fixed set of values.
func ValidateOneOf(s, fieldName string, allowed ...string) error {
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s", ErrValidationFailed, fieldName, strings.Join(allowed, ", "))
}
