package verify

import (
	"fmt"
	"math"

	"radverify/internal/analyze"
	"radverify/internal/findings"
	"radverify/internal/report"
)

// ComparisonResult is the reconciliation verdict for one tracked feature.
type ComparisonResult struct {
	Feature         string   `json:"feature"`
	Kind            string   `json:"kind"`
	Category        string   `json:"category,omitempty"`
	Status          Status   `json:"status"`
	Severity        Severity `json:"severity"`
	AIValue         *float64 `json:"ai_value,omitempty"`
	ReportValue     *float64 `json:"report_value,omitempty"`
	Difference      *float64 `json:"difference,omitempty"`
	Tolerance       *float64 `json:"tolerance,omitempty"`
	AIPresent       bool     `json:"ai_present"`
	AIConfidence    float64  `json:"ai_confidence,omitempty"`
	ReportMentioned bool     `json:"report_mentioned"`
	ReportNegated   bool     `json:"report_negated"`
	Explanation     string   `json:"explanation"`
}

// Options configures the comparison engine.
type Options struct {
	// HighConfidence is the threshold above which an AI structure
	// detection counts as confidently present.
	HighConfidence float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{HighConfidence: 0.8}
}

// Engine reconciles analysis output with report findings. It holds no
// mutable state.
type Engine struct {
	opts Options
}

// NewEngine creates a comparison engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Compare produces one result per catalog feature, measurements first, then
// structures, in catalog order.
func (e *Engine) Compare(analysis *analyze.Analysis, parsed *report.Findings) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(findings.Parameters)+len(findings.Structures))

	for _, param := range findings.Parameters {
		results = append(results, e.compareMeasurement(param, analysis.MeasurementByName(param.Name), parsed.MeasurementByName(param.Name)))
	}
	for _, s := range findings.Structures {
		results = append(results, e.compareStructure(s, analysis.StructureByName(s.Name), parsed.StructureByName(s.Name)))
	}

	for i := range results {
		results[i].Explanation = Explain(results[i])
	}
	return results
}

// compareMeasurement applies the numeric decision matrix with the
// per-parameter tolerance.
func (e *Engine) compareMeasurement(param findings.Parameter, ai *analyze.Measurement, rep *report.Mention) ComparisonResult {
	result := ComparisonResult{
		Feature: param.Name,
		Kind:    report.KindMeasurement,
	}

	var aiValue *float64
	if ai != nil {
		aiValue = ai.Value
		result.AIConfidence = ai.Confidence
	}
	var repValue *float64
	repMentioned := false
	if rep != nil {
		repValue = rep.Value
		repMentioned = rep.Mentioned
	}
	result.AIValue = aiValue
	result.ReportValue = repValue
	result.ReportMentioned = repMentioned
	result.AIPresent = aiValue != nil

	tolerance := param.Tolerance
	switch {
	case aiValue != nil && repValue != nil:
		diff := math.Abs(*aiValue - *repValue)
		rounded := math.Round(diff*100) / 100
		result.Difference = &rounded
		result.Tolerance = &tolerance
		if diff <= tolerance {
			result.Status = StatusMatch
			result.Severity = SeverityLow
		} else {
			result.Status = StatusMismatch
			result.Severity = SeverityHigh
		}
	case aiValue != nil && !repMentioned:
		result.Status = StatusOmission
		result.Severity = SeverityMedium
	case aiValue == nil && repMentioned && repValue != nil:
		result.Status = StatusOverstatement
		result.Severity = SeverityMedium
	default:
		result.Status = StatusNotAssessed
		result.Severity = SeverityLow
	}
	return result
}

// compareStructure applies the presence decision matrix. A confidently
// detected structure that the report explicitly negates is a contradiction;
// that label is applied uniformly across the pipeline.
func (e *Engine) compareStructure(s findings.Structure, ai *analyze.StructureFinding, rep *report.Mention) ComparisonResult {
	result := ComparisonResult{
		Feature:  s.Name,
		Kind:     report.KindStructure,
		Category: s.Category,
	}

	aiPresent := false
	aiConfidence := 0.0
	if ai != nil {
		aiPresent = ai.Present
		aiConfidence = ai.Confidence
	}
	repMentioned := false
	repNegated := false
	if rep != nil {
		repMentioned = rep.Mentioned
		repNegated = rep.Negated
	}
	result.AIPresent = aiPresent
	result.AIConfidence = aiConfidence
	result.ReportMentioned = repMentioned
	result.ReportNegated = repNegated

	confident := aiPresent && aiConfidence >= e.opts.HighConfidence
	switch {
	case confident && repMentioned && !repNegated:
		result.Status = StatusMatch
		result.Severity = SeverityLow
	case confident && repMentioned && repNegated:
		result.Status = StatusContradiction
		result.Severity = SeverityHigh
	case confident && !repMentioned:
		result.Status = StatusOmission
		result.Severity = SeverityMedium
	case !confident && repMentioned && !repNegated:
		result.Status = StatusOverstatement
		result.Severity = SeverityMedium
	default:
		// Agreement on absence: the AI is not confident and the report
		// either negates the structure or never mentions it.
		result.Status = StatusMatchAbsent
		result.Severity = SeverityLow
	}
	return result
}

// note returns a short trace line for one result.
func (r ComparisonResult) note() string {
	if r.Kind == report.KindMeasurement && r.Difference != nil {
		return fmt.Sprintf("%s: %s (diff %.2f, tolerance %.1f)", r.Feature, r.Status, *r.Difference, *r.Tolerance)
	}
	return fmt.Sprintf("%s: %s", r.Feature, r.Status)
}
