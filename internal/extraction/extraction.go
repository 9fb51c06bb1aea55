// Package extraction wraps the vision-model call that turns an uploaded
// document into structured fields. Gateway failures are classified as
// transient (retry with the same signal) or permanent (record and give up).
package extraction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway performs structured field extraction on document bytes.
type Gateway interface {
	Extract(ctx context.Context, req Request) (*Extraction, error)
}

// Request carries the document content and an optional document type hint
// (e.g. "invoice") supplied by the uploader.
type Request struct {
	Data        []byte
	ContentType string
	Filename    string
	Hint        string
}

// Extraction is a successful gateway response.
type Extraction struct {
	Fields   Fields          `json:"fields"`
	Cost     decimal.Decimal `json:"cost"`
	Model    string          `json:"model"`
	Pages    int             `json:"pages"`
	Duration time.Duration   `json:"duration"`
}
