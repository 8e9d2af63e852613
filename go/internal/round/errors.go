package round

import "errors"

var (
	// ErrRoundNotFound is returned when the referenced round id does not
	// exist in the persistence layer.
	ErrRoundNotFound = errors.New("round not found")

	// ErrUnauthenticated is returned when no authenticated user is
	// available for an operation that requires one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoDataset is returned when a round is requested without a
	// selected dataset.
	ErrNoDataset = errors.New("no dataset selected")
)
