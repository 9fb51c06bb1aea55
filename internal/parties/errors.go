package parties

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound    = errors.New("party not found")
	ErrDuplicate   = errors.New("party already exists")
	ErrInvalidID   = errors.New("invalid party id")
	ErrInvalidKind = errors.New("invalid party kind")
)

// MapHTTPStatus maps party domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidKind) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
