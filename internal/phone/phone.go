// Package phone validates and normalizes Iranian mobile numbers before
// they reach the backend API.
package phone

import (
	"fmt"
	"strings"
)

// Canonical form is the local representation: 09XXXXXXXXX (11 digits).
//
// Accepted input forms:
//
//	+989123456789
//	989123456789
//	09123456789
const countryCode = "98"

// Normalize converts any accepted phone format to the canonical local form.
// It returns an error for anything that does not match an accepted pattern.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	if s == "" {
		return "", fmt.Errorf("phone: empty input")
	}

	s = strings.TrimPrefix(s, "+")
	switch {
	case strings.HasPrefix(s, countryCode) && len(s) == 12:
		s = "0" + s[len(countryCode):]
	case strings.HasPrefix(s, "0") && len(s) == 11:
		// already local
	default:
		return "", fmt.Errorf("phone: unrecognized format %q", raw)
	}

	if !allDigits(s) {
		return "", fmt.Errorf("phone: non-digit characters in %q", raw)
	}
	if !strings.HasPrefix(s, "09") {
		return "", fmt.Errorf("phone: not a mobile number %q", raw)
	}
	return s, nil
}

// Valid reports whether the input is an accepted phone format.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// ValidCode reports whether the input is exactly a 6-digit numeric
// verification code. Anything else must be rejected before any network call.
func ValidCode(code string) bool {
	code = strings.TrimSpace(code)
	return len(code) == 6 && allDigits(code)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
