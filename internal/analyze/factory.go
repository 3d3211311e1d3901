//go:build !gocv

package analyze

// NewDetector selects the best analysis strategy available in this build.
// Without the gocv tag that is the rule-based detector.
func NewDetector(opts Options, noise NoiseSource) Detector {
	return NewRuleBasedDetector(opts, noise)
}
