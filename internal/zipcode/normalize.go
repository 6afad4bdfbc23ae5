package zipcode

import (
	"fmt"
	"strings"
)

const (
	codeLength   = 5
	suffixLength = 4
)

// Normalize validates a ZIP or ZIP+4 code and returns its five digit form.
//
// The part before the first "-" is checked first: digits only
// (ErrInvalidCharacters), then exactly five long (ErrInvalidFormat). A
// suffix after the "-" is then held to the same rules with four digits.
func Normalize(code string) (string, error) {
	base, suffix, hasSuffix := strings.Cut(code, "-")
	if err := checkDigits(base, codeLength); err != nil {
		return "", &ValidationError{Input: code, Err: err}
	}
	if hasSuffix {
		if err := checkDigits(suffix, suffixLength); err != nil {
			return "", &ValidationError{Input: code, Err: err}
		}
	}
	return base, nil
}

func checkDigits(s string, length int) error {
	if !isDigits(s) {
		return ErrInvalidCharacters
	}
	if len(s) != length {
		return ErrInvalidFormat
	}
	return nil
}

// normalizePrefix validates a partial code of one to five digits.
func normalizePrefix(prefix string) (string, error) {
	if !isDigits(prefix) {
		return "", &ValidationError{Input: prefix, Err: ErrInvalidCharacters}
	}
	if len(prefix) == 0 || len(prefix) > codeLength {
		return "", &ValidationError{Input: prefix, Err: ErrInvalidFormat}
	}
	return prefix, nil
}

// CodeFromValue extracts a code from an untyped value such as a decoded
// JSON element. Anything but a string fails with ErrInvalidType.
func CodeFromValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Input: describe(v), Err: ErrInvalidType}
	}
	return s, nil
}

func describe(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}

// isDigits reports whether s contains only ASCII digits. The empty string
// qualifies; length is checked separately.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
