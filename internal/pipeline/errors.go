package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure for callers deciding whether to retry.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindStorage             Kind = "storage"
	KindInProgress          Kind = "in_progress"
	KindFailedPreviously    Kind = "failed_previously"
	KindExtractionTransient Kind = "extraction_transient"
	KindExtractionPermanent Kind = "extraction_permanent"
	KindResolution          Kind = "resolution"
	KindInternal            Kind = "internal"
)

// Error is the structured failure returned by ProcessUpload.
type Error struct {
	Kind      Kind   `json:"kind"`
	Detail    string `json:"detail"`
	Retryable bool   `json:"retryable"`
	Err       error  `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, retryable bool, err error) *Error {
	return &Error{Kind: kind, Detail: err.Error(), Retryable: retryable, Err: err}
}

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var pe *Error
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	switch pe.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindStorage, KindInProgress, KindExtractionTransient:
		return http.StatusServiceUnavailable
	case KindExtractionPermanent:
		return http.StatusUnprocessableEntity
	case KindFailedPreviously:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
