// Package verify reconciles extractor output against parsed report findings
// and aggregates the per-feature outcomes into a verification summary. The
// comparison engine is a pure function of its two inputs: identical inputs
// always yield identical summaries.
package verify

// Status is the outcome category for one compared feature.
type Status string

const (
	StatusMatch         Status = "match"
	StatusMatchAbsent   Status = "match_absent"
	StatusOmission      Status = "omission"
	StatusOverstatement Status = "overstatement"
	StatusMismatch      Status = "mismatch"
	StatusContradiction Status = "contradiction"
	StatusNotAssessed   Status = "not_assessed"
	StatusUncertain     Status = "uncertain"
)

// Severity grades how urgently a human should look at a discrepancy.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Risk levels derived from the aggregate agreement rate.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// agreed reports whether the status counts as agreement.
func (s Status) agreed() bool {
	return s == StatusMatch || s == StatusMatchAbsent
}

// categorized reports whether the status participates in the agreement-rate
// denominator.
func (s Status) categorized() bool {
	return s != StatusNotAssessed && s != StatusUncertain
}
