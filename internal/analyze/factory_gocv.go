//go:build gocv

package analyze

// NewDetector selects the best analysis strategy available in this build.
// With the gocv tag the OpenCV-backed detector is preferred; it degrades to
// the rule-based strategy per measurement when a fit is not found.
func NewDetector(opts Options, noise NoiseSource) Detector {
	return NewGoCVDetector(opts, noise)
}
