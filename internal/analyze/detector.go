package analyze

import (
	"radverify/internal/calib"
	"radverify/internal/imaging"
)

// Detector is the strategy interface for scan analysis. The rule-based
// implementation is always available; an OpenCV-backed implementation can be
// selected at construction time on builds that carry it. Implementations
// never fail on a well-formed ScanImage: absence of a geometric fit degrades
// to the fallback measurement path.
type Detector interface {
	Analyze(scan *imaging.ScanImage, cal calib.Result) (*Analysis, []string)
	Name() string
}

// Options configures the rule-based detector.
type Options struct {
	// BinaryThreshold separates candidate anatomy from background on the
	// 0-255 smoothed grid.
	BinaryThreshold float64
	// MinBlobAreaFraction is the minimum contour area as a fraction of the
	// image area.
	MinBlobAreaFraction float64
	// Head ellipse minor/major plausibility band.
	HeadRatioMin, HeadRatioMax float64
	// Abdomen ellipse band, more circular than the head.
	AbdomenRatioMin, AbdomenRatioMax float64
	// FemurAspectMin is the minimum bounding-box long/short ratio for a
	// limb-like band contour.
	FemurAspectMin float64
	// Biologically plausible femur length band in mm.
	FemurMinMM, FemurMaxMM float64
	// FallbackJitterFraction bounds fallback jitter relative to the
	// reference value.
	FallbackJitterFraction float64
	// Structure presence signal threshold in [0,1].
	PresenceThreshold float64
	// Confidence assigned to geometric fits and to fallbacks.
	GeometricConfidence float64
	FallbackConfidence  float64
}

// DefaultOptions returns the tuned defaults for mid-trimester scans.
func DefaultOptions() Options {
	return Options{
		BinaryThreshold:        128,
		MinBlobAreaFraction:    0.002,
		HeadRatioMin:           0.70,
		HeadRatioMax:           0.95,
		AbdomenRatioMin:        0.85,
		AbdomenRatioMax:        1.00,
		FemurAspectMin:         3.0,
		FemurMinMM:             15,
		FemurMaxMM:             80,
		FallbackJitterFraction: 0.04,
		PresenceThreshold:      0.30,
		GeometricConfidence:    0.85,
		FallbackConfidence:     0.40,
	}
}

// RuleBasedDetector is the deterministic heuristic analysis strategy.
type RuleBasedDetector struct {
	opts  Options
	noise NoiseSource
}

// NewRuleBasedDetector creates the always-available strategy. A nil noise
// source disables fallback jitter.
func NewRuleBasedDetector(opts Options, noise NoiseSource) *RuleBasedDetector {
	if noise == nil {
		noise = NoNoise{}
	}
	return &RuleBasedDetector{opts: opts, noise: noise}
}

// Name identifies the strategy in audit output.
func (d *RuleBasedDetector) Name() string { return "rule_based" }

// Analyze runs structure detection, biometry, quality assessment and the
// gestational-age estimate over the preprocessed scan.
func (d *RuleBasedDetector) Analyze(scan *imaging.ScanImage, cal calib.Result) (*Analysis, []string) {
	var notes []string

	quality := assessQuality(scan)
	notes = append(notes, quality.note())

	structures, structNotes := d.detectStructures(scan)
	notes = append(notes, structNotes...)

	measurements, bioNotes := d.measureBiometry(scan, cal)
	notes = append(notes, bioNotes...)

	ga := estimateGestationalAge(measurements)
	if ga.TotalWeeks != nil {
		notes = append(notes, gaNote(ga))
	} else {
		notes = append(notes, "gestational age not estimable from available biometry")
	}

	return &Analysis{
		Structures:     structures,
		Measurements:   measurements,
		Quality:        quality,
		GestationalAge: ga,
		Detector:       d.Name(),
	}, notes
}
