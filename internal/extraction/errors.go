package extraction

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrTooManyPages       = errors.New("document exceeds page limit")
	ErrRenderFailed       = errors.New("page render failed")
)

// Failure is the classified error returned by a Gateway.
type Failure struct {
	Transient bool
	Reason    string
	Err       error
}

func (f *Failure) Error() string {
	kind := "permanent"
	if f.Transient {
		kind = "transient"
	}
	if f.Err == nil {
		return fmt.Sprintf("extraction %s failure: %s", kind, f.Reason)
	}
	return fmt.Sprintf("extraction %s failure: %s: %v", kind, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Transient builds a retryable failure.
func Transient(reason string, err error) *Failure {
	return &Failure{Transient: true, Reason: reason, Err: err}
}

// Permanent builds a non-retryable failure.
func Permanent(reason string, err error) *Failure {
	return &Failure{Transient: false, Reason: reason, Err: err}
}

// AsFailure returns the Failure carried by err. Unclassified errors are
// reported through Classify.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return Classify(err)
}

// transientMarkers are upstream error fragments that indicate a retry may
// succeed: throttling, gateway errors, and connection resets.
var transientMarkers = []string{
	"429", "500", "502", "503", "504",
	"rate limit", "too many requests", "timeout", "timed out",
	"unavailable", "connection refused", "connection reset", "eof",
}

// Classify maps a raw upstream error to a Failure. Deadlines, cancellations,
// network timeouts, and throttling are transient; everything else is
// permanent.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Transient("extraction deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return Transient("extraction cancelled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient("upstream timeout", err)
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return Transient("upstream unavailable", err)
		}
	}

	return Permanent("upstream rejected document", err)
}
