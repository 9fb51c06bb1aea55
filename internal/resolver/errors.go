package resolver

import "errors"

var (
	// ErrResolution wraps storage failures during candidate lookup or creation.
	ErrResolution = errors.New("counterparty resolution failed")
	ErrEmptyName  = errors.New("counterparty name required")
)
