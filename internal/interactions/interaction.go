// Package interactions is the append-only audit trail of pipeline actions.
package interactions

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entity types that interactions can reference.
const (
	EntityDocument   = "document"
	EntitySignal     = "signal"
	EntityParty      = "party"
	EntityCommitment = "commitment"
)

// Actions recorded by the pipeline.
const (
	ActionUpload        = "upload"
	ActionExtract       = "extract"
	ActionResolveVendor = "resolve_vendor"
	ActionPrioritize    = "prioritize"
)

// Interaction is one immutable audit record.
type Interaction struct {
	ID         uuid.UUID        `json:"id"`
	EntityType string           `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	Action     string           `json:"action"`
	Cost       *decimal.Decimal `json:"cost,omitempty"`
	Currency   *string          `json:"currency,omitempty"`
	DurationMS *int64           `json:"duration_ms,omitempty"`
	Metadata   json.RawMessage  `json:"metadata,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// AppendCommand carries a new interaction. Metadata is serialized as JSON.
type AppendCommand struct {
	EntityType string
	EntityID   string
	Action     string
	Cost       *decimal.Decimal
	Currency   string
	Duration   time.Duration
	Metadata   map[string]any
}

// TimelineQuery selects the interactions of one entity. Actions and the
// [Since, Until) window are optional filters.
type TimelineQuery struct {
	EntityType string
	EntityID   string
	Actions    []string
	Since      *time.Time
	Until      *time.Time
}
