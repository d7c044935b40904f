package domain

import "errors"

// Error kinds returned by the core. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	// ErrValidation is returned when a record is rejected before persistence
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a transaction, goal or category does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInterval is returned for a malformed custom report range
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrStore wraps failures of the underlying store (connectivity, constraints)
	ErrStore = errors.New("store error")
)
