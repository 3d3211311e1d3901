// Package analyze extracts structural findings and biometric measurements
// from a preprocessed scan. The production detector is a deterministic
// rule-based surrogate for a learned classifier; downstream components
// depend only on the catalog shape, the confidence range and the method
// tags, never on the detector internals.
package analyze

// Measurement methods. The fallback tag is load-bearing: audit and accuracy
// evaluation rely on degraded measurements being distinguishable from
// genuine geometric fits.
const (
	MethodEllipse  = "cv_ellipse"
	MethodRect     = "cv_rect"
	MethodFallback = "fallback"
)

// Measurement is one biometric parameter extracted from the scan.
// Value is nil when the parameter could not be measured at all.
type Measurement struct {
	Name       string   `json:"name"`
	Value      *float64 `json:"value"`
	Unit       string   `json:"unit"`
	Method     string   `json:"method"`
	Confidence float64  `json:"confidence"`
}

// StructureFinding is a presence/confidence verdict for one catalog entry.
type StructureFinding struct {
	Category   string  `json:"category"`
	Name       string  `json:"name"`
	Present    bool    `json:"present"`
	Confidence float64 `json:"confidence"`
}

// Quality scores the scan on a 0-100 scale with an ordinal label.
type Quality struct {
	Sharpness  float64 `json:"sharpness"`
	Contrast   float64 `json:"contrast"`
	Brightness float64 `json:"brightness"`
	Noise      float64 `json:"noise"`
	Score      int     `json:"score"`
	Label      string  `json:"label"`
}

// Quality labels, ordered worst to best.
const (
	QualityPoor      = "poor"
	QualityFair      = "fair"
	QualityGood      = "good"
	QualityExcellent = "excellent"
)

// GestationalAge is the rough week estimate derived from biometry.
// TotalWeeks is nil when no measurement contributed.
type GestationalAge struct {
	Weeks      int      `json:"weeks"`
	Days       int      `json:"days"`
	TotalWeeks *float64 `json:"total_weeks"`
	Confidence string   `json:"confidence"` // moderate | low | unknown
}

// Analysis is the complete extractor output for one scan.
type Analysis struct {
	Structures     []StructureFinding `json:"structures"`
	Measurements   []Measurement      `json:"measurements"`
	Quality        Quality            `json:"quality"`
	GestationalAge GestationalAge     `json:"gestational_age"`
	Detector       string             `json:"detector"`
}

// MeasurementByName returns the named measurement, or nil.
func (a *Analysis) MeasurementByName(name string) *Measurement {
	for i := range a.Measurements {
		if a.Measurements[i].Name == name {
			return &a.Measurements[i]
		}
	}
	return nil
}

// StructureByName returns the named finding, or nil.
func (a *Analysis) StructureByName(name string) *StructureFinding {
	for i := range a.Structures {
		if a.Structures[i].Name == name {
			return &a.Structures[i]
		}
	}
	return nil
}

func float64Ptr(v float64) *float64 { return &v }
