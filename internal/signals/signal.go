// Package signals implements the ingestion idempotency ledger.
// Each (source, dedupe key) pair owns exactly one signal row; the unique
// constraint on that pair arbitrates concurrent duplicate uploads.
package signals

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a signal.
type Status string

// Signal states. Transitions only move forward:
// new → processing → attached | error.
const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusAttached   Status = "attached"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusAttached || s == StatusError
}

// CanTransition reports whether moving from s to next is a forward transition.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusNew:
		return next == StatusProcessing || next == StatusError
	case StatusProcessing:
		return next == StatusAttached || next == StatusError
	default:
		return false
	}
}

// Signal is one ingestion attempt for a unit of content.
// Result holds the serialized outcome once the signal is attached.
type Signal struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	DedupeKey   string     `json:"dedupe_key"`
	Status      Status     `json:"status"`
	Attempts    int        `json:"attempts"`
	LeasedUntil *time.Time `json:"leased_until,omitempty"`
	// LeasedBy identifies the attempt holding the lease. Only that attempt
	// may complete, fail, or release the signal.
	LeasedBy    *uuid.UUID      `json:"-"`
	DocumentID  *uuid.UUID      `json:"document_id,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	LastError   *string         `json:"last_error,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Options tunes lease and wait behavior for Open.
type Options struct {
	// Lease is how long an opened signal is reserved for its owner.
	Lease time.Duration
	// PollInterval is the delay between re-reads of an in-flight signal.
	PollInterval time.Duration
	// MaxWait bounds how long Open waits on another owner's lease.
	MaxWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.Lease <= 0 {
		o.Lease = 5 * time.Minute
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 250 * time.Millisecond
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 30 * time.Second
	}
	return o
}
