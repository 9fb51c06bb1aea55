package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JaimeStill/intake/internal/commitments"
	"github.com/JaimeStill/intake/internal/links"
	"github.com/JaimeStill/intake/internal/resolver"
)

// Stage names a step of one pipeline run.
type Stage string

const (
	StageStoring     Stage = "storing"
	StageSignaling   Stage = "signaling"
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageResolving   Stage = "resolving"
	StageScoring     Stage = "scoring"
	StageLinking     Stage = "linking"
	StageLogging     Stage = "logging"
	StageCompleting  Stage = "completing"
)

// Upload is one document submitted for processing.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
	Source      string
	Hint        string
}

// Result is the outcome of a pipeline run. Cached is true when the content
// had already been processed and the stored outcome was returned.
type Result struct {
	DocumentID   uuid.UUID         `json:"document_id"`
	SHA256       string            `json:"sha256"`
	Deduplicated bool              `json:"deduplicated"`
	Cached       bool              `json:"cached"`
	DocType      string            `json:"doc_type"`
	Vendor       *Vendor           `json:"vendor,omitempty"`
	Commitment   *Commitment       `json:"commitment,omitempty"`
	Extraction   ExtractionSummary `json:"extraction"`
	Links        []LinkRef         `json:"links"`
	Metrics      Metrics           `json:"metrics"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// Vendor is the resolved counterparty.
type Vendor struct {
	ID         uuid.UUID     `json:"id"`
	Name       string        `json:"name"`
	Matched    bool          `json:"matched"`
	Confidence float64       `json:"confidence"`
	Tier       resolver.Tier `json:"tier"`
}

// Commitment is the obligation derived from the document.
type Commitment struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	Priority      int               `json:"priority"`
	Justification string            `json:"justification"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	State         commitments.State `json:"state"`
}

// ExtractionSummary reports the gateway call.
type ExtractionSummary struct {
	Cost            decimal.Decimal `json:"cost"`
	Model           string          `json:"model"`
	Pages           int             `json:"pages"`
	DurationSeconds float64         `json:"duration_seconds"`
}

// LinkRef references one created document link.
type LinkRef struct {
	ID     uuid.UUID  `json:"id"`
	Kind   links.Kind `json:"kind"`
	Target string     `json:"target"`
	Type   links.Type `json:"type"`
}

// Metrics holds per-stage durations in run order.
type Metrics struct {
	Stages []StageMetric `json:"stages"`
}

// StageMetric is the wall time of one stage.
type StageMetric struct {
	Stage   Stage   `json:"stage"`
	Seconds float64 `json:"seconds"`
}

// Duration returns the recorded duration of s, or zero.
func (m Metrics) Duration(s Stage) time.Duration {
	for _, sm := range m.Stages {
		if sm.Stage == s {
			return time.Duration(sm.Seconds * float64(time.Second))
		}
	}
	return 0
}

type stopwatch struct {
	now    func() time.Time
	last   time.Time
	stages []StageMetric
}

func newStopwatch(now func() time.Time) *stopwatch {
	return &stopwatch{now: now, last: now()}
}

func (s *stopwatch) mark(stage Stage) {
	t := s.now()
	s.stages = append(s.stages, StageMetric{Stage: stage, Seconds: t.Sub(s.last).Seconds()})
	s.last = t
}

func (s *stopwatch) metrics() Metrics {
	stages := make([]StageMetric, len(s.stages))
	copy(stages, s.stages)
	return Metrics{Stages: stages}
}
