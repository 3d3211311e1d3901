package verify

import "fmt"

// Explain maps a comparison result to its templated rationale. Every status
// value is covered; unknown statuses get the generic fallback.
func Explain(r ComparisonResult) string {
	switch r.Status {
	case StatusMatch:
		if r.Difference != nil && r.Tolerance != nil {
			return fmt.Sprintf("AI and report values for %s agree within the %.1f mm tolerance (difference %.2f mm).",
				r.Feature, *r.Tolerance, *r.Difference)
		}
		return fmt.Sprintf("Both the AI analysis and the report describe %s as present.", r.Feature)
	case StatusMatchAbsent:
		return fmt.Sprintf("Both the AI analysis and the report indicate %s is absent or unremarkable.", r.Feature)
	case StatusOmission:
		return fmt.Sprintf("The AI analysis registered %s, but the report never references it. Consider amending the report if the observation is clinically relevant.", r.Feature)
	case StatusOverstatement:
		return fmt.Sprintf("The report documents %s, yet the AI analysis could not confirm it with sufficient confidence. Verify whether the mention was intentional.", r.Feature)
	case StatusMismatch:
		if r.Difference != nil && r.Tolerance != nil {
			return fmt.Sprintf("AI and report values for %s differ by %.2f mm, beyond the %.1f mm tolerance. Manual re-measurement is recommended.",
				r.Feature, *r.Difference, *r.Tolerance)
		}
		return fmt.Sprintf("AI and report values for %s disagree beyond tolerance. Manual re-measurement is recommended.", r.Feature)
	case StatusContradiction:
		return fmt.Sprintf("The report explicitly negates %s while the AI analysis detected it with high confidence. Manual review is recommended to resolve the discrepancy.", r.Feature)
	case StatusNotAssessed:
		return fmt.Sprintf("Neither the AI analysis nor the report assessed %s.", r.Feature)
	case StatusUncertain:
		return fmt.Sprintf("Findings for %s are inconclusive on both sides; a quick look is warranted.", r.Feature)
	default:
		return fmt.Sprintf("No definitive finding for %s; the context warrants a quick look.", r.Feature)
	}
}
