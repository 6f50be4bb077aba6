package mirror

import "errors"

var (
	// ErrUnavailable is returned by operations on a store that has no
	// database connection. Callers that treat the mirror as best-effort
	// check Available first or match this error.
	ErrUnavailable = errors.New("mirror: store unavailable")

	// ErrNotFound is returned when a requested profile does not exist.
	ErrNotFound = errors.New("mirror: not found")
)
