package ids

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Canonical id format is the lowercase hyphenated UUID form. Every id
// exchanged with the persistence layer is checked here before a call
// goes out; malformed ids are rejected locally.

// ErrMalformed is returned when an id is not a canonical UUID.
var ErrMalformed = fmt.Errorf("malformed id")

// Parse parses s as a canonical UUID. Unlike uuid.Parse it rejects the
// urn:, braced and raw-hex variants that the persistence layer would
// not round-trip.
func Parse(s string) (uuid.UUID, error) {
	if !IsCanonical(s) {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return id, nil
}

// IsCanonical reports whether s is in the canonical 36-character
// hyphenated UUID form.
func IsCanonical(s string) bool {
	if len(s) != 36 {
		return false
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	return s == strings.ToLower(s)
}

// Valid reports whether id is usable as a persisted identifier.
func Valid(id uuid.UUID) bool {
	return id != uuid.Nil
}
