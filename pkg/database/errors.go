package database

import "errors"

// ErrNotReady indicates a readiness ping failed.
var ErrNotReady = errors.New("database not ready")
