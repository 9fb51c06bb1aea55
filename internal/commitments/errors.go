package commitments

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("commitment not found")
	ErrInvalidPriority   = errors.New("priority must be between 0 and 100")
	ErrInvalidTransition = errors.New("invalid commitment state transition")
)

// MapHTTPStatus maps commitment domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidPriority) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrInvalidTransition) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
