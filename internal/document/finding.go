package document

import "github.com/shopspring/decimal"

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single validation observation. Amounts carries the numeric
// context the message talks about so callers can render it without parsing
// the message back.
type Finding struct {
	Severity Severity                   `json:"severity"`
	Message  string                     `json:"message"`
	Amounts  map[string]decimal.Decimal `json:"amounts,omitempty"`
}

// Report is the outcome of a reconciliation pass.
type Report struct {
	Findings   []Finding `json:"findings"`
	Confidence int       `json:"confidence"`
	IsValid    bool      `json:"is_valid"`
}

// ConfidenceTier buckets the 0-100 score for operators.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "HIGH"
	TierMedium ConfidenceTier = "MEDIUM"
	TierLow    ConfidenceTier = "LOW"
)

// Tier returns the operator-facing confidence bucket.
func (r Report) Tier() ConfidenceTier {
	switch {
	case r.Confidence >= 90:
		return TierHigh
	case r.Confidence >= 70:
		return TierMedium
	default:
		return TierLow
	}
}

// HasErrors reports whether any finding carries error severity.
func (r Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
