package verify

import (
	"fmt"
	"strings"

	"radverify/internal/analyze"
)

// Snippet is the short machine-generated summary of the AI analysis that is
// returned alongside the comparison results.
type Snippet struct {
	Summary             string `json:"summary"`
	ConfidenceStatement string `json:"confidence_statement"`
}

// BuildSnippet renders the analysis as a two-part narrative: what was seen,
// and how much to trust it.
func BuildSnippet(analysis *analyze.Analysis) Snippet {
	present := 0
	fallbacks := 0
	measured := 0
	var confSum float64
	for _, s := range analysis.Structures {
		if s.Present {
			present++
			confSum += s.Confidence
		}
	}
	for _, m := range analysis.Measurements {
		if m.Value != nil {
			measured++
			if m.Method == analyze.MethodFallback {
				fallbacks++
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Automated analysis identified %d of %d tracked structures and measured %d biometric parameters.",
		present, len(analysis.Structures), measured)
	if ga := analysis.GestationalAge; ga.TotalWeeks != nil {
		fmt.Fprintf(&b, " Estimated gestational age: %dw%dd.", ga.Weeks, ga.Days)
	}
	fmt.Fprintf(&b, " Image quality: %s (%d/100).", analysis.Quality.Label, analysis.Quality.Score)

	statement := confidenceStatement(present, confSum, fallbacks, analysis.Quality.Label)
	return Snippet{Summary: b.String(), ConfidenceStatement: statement}
}

func confidenceStatement(present int, confSum float64, fallbacks int, quality string) string {
	if present == 0 {
		return "No structures were detected with confidence; findings should not be relied on without manual review."
	}
	mean := confSum / float64(present)
	var s string
	switch {
	case mean >= 0.8:
		s = fmt.Sprintf("Detections carry high average confidence (%.2f).", mean)
	case mean >= 0.6:
		s = fmt.Sprintf("Detections carry moderate average confidence (%.2f); borderline findings deserve a second look.", mean)
	default:
		s = fmt.Sprintf("Detections carry low average confidence (%.2f); treat all findings as provisional.", mean)
	}
	if fallbacks > 0 {
		s += fmt.Sprintf(" %d measurement(s) fell back to reference values and are not scan-derived.", fallbacks)
	}
	if quality == analyze.QualityPoor {
		s += " Poor image quality further limits reliability."
	}
	return s
}
