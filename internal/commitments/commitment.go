// Package commitments persists obligations derived from documents.
package commitments

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the lifecycle state of a commitment.
type State string

// States advance proposed → active → fulfilled. Any non-terminal state may be
// canceled.
const (
	StateProposed  State = "proposed"
	StateActive    State = "active"
	StateFulfilled State = "fulfilled"
	StateCanceled  State = "canceled"
)

var order = map[State]int{
	StateProposed:  0,
	StateActive:    1,
	StateFulfilled: 2,
}

// CanTransition reports whether s may move to next.
func (s State) CanTransition(next State) bool {
	if s == StateFulfilled || s == StateCanceled {
		return false
	}
	if next == StateCanceled {
		return true
	}
	from, ok := order[s]
	if !ok {
		return false
	}
	to, ok := order[next]
	return ok && to > from
}

// Commitment is an obligation owed to a counterparty.
type Commitment struct {
	ID             uuid.UUID        `json:"id"`
	DocumentID     *uuid.UUID       `json:"document_id,omitempty"`
	RoleID         *uuid.UUID       `json:"role_id,omitempty"`
	CounterpartyID uuid.UUID        `json:"counterparty_id"`
	Title          string           `json:"title"`
	Priority       int              `json:"priority"`
	Justification  string           `json:"justification"`
	Factors        json.RawMessage  `json:"factors,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
	State          State            `json:"state"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// CreateCommand carries a new commitment. Factors is serialized as JSON.
type CreateCommand struct {
	DocumentID     uuid.UUID
	RoleID         *uuid.UUID
	CounterpartyID uuid.UUID
	Title          string
	Priority       int
	Justification  string
	Factors        any
	DueDate        *time.Time
	Amount         *decimal.Decimal
	Currency       string
}
