package interactions

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidEntity = errors.New("invalid interaction entity")
	ErrInvalidAction = errors.New("interaction action required")
	ErrInvalidRange  = errors.New("invalid timeline range")
)

// MapHTTPStatus maps interaction domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidEntity) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrInvalidRange) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
