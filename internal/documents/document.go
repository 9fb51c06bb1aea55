// Package documents records one row per processed upload together with its
// extracted fields and a rule-based document type.
package documents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is the registered outcome of one pipeline run.
type Document struct {
	ID          uuid.UUID       `json:"id"`
	SHA256      string          `json:"sha256"`
	Source      string          `json:"source"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	DocType     DocType         `json:"doc_type"`
	PageCount   int             `json:"page_count"`
	Fields      json.RawMessage `json:"fields,omitempty"`
	SignalID    uuid.UUID       `json:"signal_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateCommand carries the data needed to register a processed document.
// Fields is serialized as JSON.
type CreateCommand struct {
	SHA256      string
	Source      string
	Filename    string
	ContentType string
	DocType     DocType
	PageCount   int
	Fields      any
	SignalID    uuid.UUID
}
