package signals

import "errors"

var (
	ErrNotFound = errors.New("signal not found")
	// ErrInFlight indicates another attempt holds a live lease on the signal.
	ErrInFlight = errors.New("signal is being processed by another attempt")
	// ErrPreviouslyFailed indicates the signal reached the terminal error state.
	ErrPreviouslyFailed = errors.New("signal previously failed")
	// ErrLeaseLost indicates the caller's lease expired and another attempt
	// claimed the signal, or the signal already reached a terminal state.
	ErrLeaseLost = errors.New("signal lease no longer held")
	// ErrInvalidTransition indicates a backward or terminal state transition.
	ErrInvalidTransition = errors.New("invalid signal state transition")
)
