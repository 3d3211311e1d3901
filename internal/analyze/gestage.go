package analyze

import "fmt"

// Linear week-per-mm conversion factors. Rough screening estimates, not a
// clinical dating formula.
const (
	bpdWeeksDivisor = 2.4
	flWeeksDivisor  = 1.6
)

// estimateGestationalAge averages independent week estimates from BPD and
// FL. Confidence is moderate with two contributing estimates, low with one,
// unknown with none.
func estimateGestationalAge(measurements []Measurement) GestationalAge {
	var estimates []float64
	for _, m := range measurements {
		if m.Value == nil {
			continue
		}
		switch m.Name {
		case "BPD":
			estimates = append(estimates, *m.Value/bpdWeeksDivisor)
		case "FL":
			estimates = append(estimates, *m.Value/flWeeksDivisor)
		}
	}

	if len(estimates) == 0 {
		return GestationalAge{Confidence: "unknown"}
	}

	var sum float64
	for _, e := range estimates {
		sum += e
	}
	avg := sum / float64(len(estimates))
	weeks := int(avg)
	days := int((avg - float64(weeks)) * 7)

	confidence := "low"
	if len(estimates) >= 2 {
		confidence = "moderate"
	}

	total := round1(avg)
	return GestationalAge{
		Weeks:      weeks,
		Days:       days,
		TotalWeeks: &total,
		Confidence: confidence,
	}
}

func gaNote(ga GestationalAge) string {
	return fmt.Sprintf("gestational age estimate %dw%dd (%.1f weeks, %s confidence)", ga.Weeks, ga.Days, *ga.TotalWeeks, ga.Confidence)
}
