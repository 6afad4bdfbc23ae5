package zipcode

import (
	"errors"
	"fmt"
)

// Validation failures. Lookups return them wrapped in a *ValidationError.
var (
	// ErrInvalidType is returned when a code is absent or not a string.
	ErrInvalidType = errors.New("invalid type, zipcode must be a string")

	// ErrInvalidCharacters is returned when a code contains anything other
	// than digits and a single "-" before a ZIP+4 suffix.
	ErrInvalidCharacters = errors.New(`invalid characters, zipcode may only contain digits and "-"`)

	// ErrInvalidFormat is returned when a code or prefix has the wrong length.
	ErrInvalidFormat = errors.New(`invalid format, zipcode must be of the format "#####" or "#####-####"`)

	// ErrUnknownAttribute is returned by AttributeEquals for a field name it
	// does not know.
	ErrUnknownAttribute = errors.New("unknown zipcode attribute")
)

// ValidationError records the input that failed validation.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("zipcode %q: %v", e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Kind returns a short stable name for err's validation failure, or ""
// when err is not a validation failure.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidType):
		return "invalid_type"
	case errors.Is(err, ErrInvalidCharacters):
		return "invalid_characters"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	default:
		return ""
	}
}
