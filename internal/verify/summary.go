package verify

import (
	"fmt"
	"math"
	"strings"
)

// Summary aggregates all comparison results for one request.
type Summary struct {
	Counts        map[Status]int `json:"counts"`
	Categorized   int            `json:"categorized"`
	AgreementRate float64        `json:"agreement_rate"`
	RiskLevel     string         `json:"risk_level"`
}

// Risk thresholds on the agreement rate.
const (
	riskLowFloor    = 0.85
	riskMediumFloor = 0.70
)

// Summarize computes status counts, the agreement rate over categorized
// items and the derived risk level. not_assessed and uncertain items are
// excluded from the rate's denominator.
func Summarize(results []ComparisonResult) Summary {
	counts := make(map[Status]int)
	categorized := 0
	agreements := 0
	for _, r := range results {
		counts[r.Status]++
		if r.Status.categorized() {
			categorized++
			if r.Status.agreed() {
				agreements++
			}
		}
	}

	rate := 0.0
	if categorized > 0 {
		rate = float64(agreements) / float64(categorized)
	}
	rate = math.Round(rate*1000) / 1000

	risk := RiskHigh
	switch {
	case rate >= riskLowFloor:
		risk = RiskLow
	case rate >= riskMediumFloor:
		risk = RiskMedium
	}

	return Summary{
		Counts:        counts,
		Categorized:   categorized,
		AgreementRate: rate,
		RiskLevel:     risk,
	}
}

// Text renders the executive summary shown by the CLI.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agreement rate: %.1f%%\n", s.AgreementRate*100)
	fmt.Fprintf(&b, "Risk level: %s\n", strings.ToUpper(s.RiskLevel))
	fmt.Fprintf(&b, "Matches: %d (present) / %d (absent)\n", s.Counts[StatusMatch], s.Counts[StatusMatchAbsent])
	fmt.Fprintf(&b, "Omissions: %d, Overstatements: %d, Mismatches: %d, Contradictions: %d\n",
		s.Counts[StatusOmission], s.Counts[StatusOverstatement], s.Counts[StatusMismatch], s.Counts[StatusContradiction])

	switch s.RiskLevel {
	case RiskLow:
		b.WriteString("Recommendation: minor review suggested.")
	case RiskMedium:
		b.WriteString("Recommendation: moderate review recommended.")
	default:
		b.WriteString("Recommendation: comprehensive review recommended.")
	}
	return b.String()
}
