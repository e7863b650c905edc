package grid

import "errors"

// Sentinel kinds for backend errors.
var (
	ErrBackendUnavailable = errors.New("tabular backend unavailable")
	ErrBadCoordinate      = errors.New("coordinates must be 1-based")
)
