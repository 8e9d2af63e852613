package deck

import "errors"

var (
	// ErrDeckNotFound is returned when a dataset has no cards.
	ErrDeckNotFound = errors.New("deck not found")
)
