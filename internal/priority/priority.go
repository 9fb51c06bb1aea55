// Package priority computes an explainable 0–100 urgency score for an
// obligation. Scoring is a pure function of its Input: the reference date is
// supplied by the caller and no clock is read.
package priority

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Factor weights. The four core factors form a weighted average; time always
// takes part, effort only when estimated. The two flags add their weight
// when set.
const (
	WeightTime       = 0.30
	WeightSeverity   = 0.25
	WeightAmount     = 0.15
	WeightEffort     = 0.15
	WeightDependency = 0.10
	WeightPreference = 0.05
)

const (
	timeDecayDays = 45.0
	effortCeiling = 40.0
	amountFloor   = 2.0 // log10($100)
	amountSpan    = 3.0 // log10($100,000) - log10($100)
	maxSeverity   = 10.0
	// undatedTime is the time factor for an obligation with no due date.
	undatedTime = 0.5
)

// Factor names.
const (
	FactorTime       = "time"
	FactorSeverity   = "severity"
	FactorAmount     = "amount"
	FactorEffort     = "effort"
	FactorDependency = "dependency"
	FactorPreference = "preference"
)

// domainRisk is the baseline severity per domain on a 0–10 scale.
var domainRisk = map[string]float64{
	"legal":      9,
	"financial":  9,
	"tax":        9,
	"health":     10,
	"safety":     10,
	"compliance": 8,
	"operations": 6,
	"personal":   4,
	"general":    5,
}

// DefaultDomain applies when the domain is empty or unknown.
const DefaultDomain = "general"

// Input describes one obligation. Optional values are nil when unknown.
type Input struct {
	AsOf         time.Time
	DueDate      *time.Time
	Amount       *decimal.Decimal
	Currency     string
	Domain       string
	SeverityHint *float64
	EffortHours  *float64
	Blocked      bool
	Boost        bool
}

// Factor is one scored dimension. Contribution is the factor's share of
// the final score on a 0–1 scale.
type Factor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Result is the score and its explanation.
type Result struct {
	Priority      int      `json:"priority"`
	Justification string   `json:"justification"`
	Factors       []Factor `json:"factors"`
}

// Score computes the priority for in.
func Score(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	domain := normalizeDomain(in.Domain)

	timeValue := undatedTime
	if in.DueDate != nil {
		timeValue = timeFactor(in.AsOf, *in.DueDate)
	}

	core := make([]Factor, 0, 4)
	core = append(core, Factor{Name: FactorTime, Weight: WeightTime, Value: timeValue})
	core = append(core, Factor{Name: FactorSeverity, Weight: WeightSeverity, Value: severityFactor(domain, in.SeverityHint)})
	if in.Amount != nil {
		core = append(core, Factor{Name: FactorAmount, Weight: WeightAmount, Value: amountFactor(*in.Amount)})
	}
	if in.EffortHours != nil {
		core = append(core, Factor{Name: FactorEffort, Weight: WeightEffort, Value: effortFactor(*in.EffortHours)})
	}

	var weightSum float64
	for _, f := range core {
		weightSum += f.Weight
	}

	var total float64
	factors := make([]Factor, 0, 6)
	for _, f := range core {
		f.Contribution = f.Weight * f.Value / weightSum
		total += f.Contribution
		factors = append(factors, f)
	}

	if in.Blocked {
		factors = append(factors, Factor{Name: FactorDependency, Weight: WeightDependency, Value: 1, Contribution: WeightDependency})
		total += WeightDependency
	}
	if in.Boost {
		factors = append(factors, Factor{Name: FactorPreference, Weight: WeightPreference, Value: 1, Contribution: WeightPreference})
		total += WeightPreference
	}

	priority := int(math.Round(100 * total))
	priority = max(0, min(100, priority))

	return Result{
		Priority:      priority,
		Justification: justify(in, domain, factors),
		Factors:       factors,
	}, nil
}

func (in Input) validate() error {
	if in.DueDate != nil && in.AsOf.IsZero() {
		return invalid("as-of date required with a due date")
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return invalid("amount must not be negative")
	}
	if in.EffortHours != nil && (*in.EffortHours < 0 || math.IsNaN(*in.EffortHours)) {
		return invalid("effort must not be negative")
	}
	if in.SeverityHint != nil {
		h := *in.SeverityHint
		if math.IsNaN(h) || h < 0 || h > maxSeverity {
			return invalid("severity hint must be between 0 and 10")
		}
	}
	return nil
}

func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if _, ok := domainRisk[d]; ok {
		return d
	}
	return DefaultDomain
}

// DaysUntil counts calendar days from asOf to due, both taken as UTC dates.
// Negative values mean overdue.
func DaysUntil(asOf, due time.Time) int {
	a := truncateDay(asOf)
	d := truncateDay(due)
	return int(math.Round(d.Sub(a).Hours() / 24))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func timeFactor(asOf, due time.Time) float64 {
	days := DaysUntil(asOf, due)
	if days <= 0 {
		return 1
	}
	return math.Exp(-float64(days) / timeDecayDays)
}

func severityFactor(domain string, hint *float64) float64 {
	s := domainRisk[domain]
	if hint != nil && *hint > s {
		s = *hint
	}
	return s / maxSeverity
}

func amountFactor(amount decimal.Decimal) float64 {
	a := amount.InexactFloat64()
	if a <= 0 {
		return 0
	}
	return clamp((math.Log10(a) - amountFloor) / amountSpan)
}

func effortFactor(hours float64) float64 {
	return clamp(hours / effortCeiling)
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
