//go:build gocv

package analyze

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"radverify/internal/calib"
	"radverify/internal/findings"
	"radverify/internal/imaging"
)

// GoCVDetector is the OpenCV-backed analysis strategy. Structure scoring,
// quality assessment and the gestational-age estimate are shared with the
// rule-based detector; only the contour extraction and geometric fitting go
// through OpenCV.
type GoCVDetector struct {
	rule *RuleBasedDetector
	opts Options
}

// NewGoCVDetector wraps the rule-based strategy with OpenCV geometry.
func NewGoCVDetector(opts Options, noise NoiseSource) *GoCVDetector {
	return &GoCVDetector{
		rule: NewRuleBasedDetector(opts, noise),
		opts: opts,
	}
}

// Name identifies the strategy in audit output.
func (d *GoCVDetector) Name() string { return "gocv" }

// Analyze mirrors the rule-based flow with OpenCV contour fitting.
func (d *GoCVDetector) Analyze(scan *imaging.ScanImage, cal calib.Result) (*Analysis, []string) {
	var notes []string

	quality := assessQuality(scan)
	notes = append(notes, quality.note())

	structures, structNotes := d.rule.detectStructures(scan)
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

func (d *GoCVDetector) measureBiometry(scan *imaging.ScanImage, cal calib.Result) ([]Measurement, []string) {
	var notes []string

	mat := gridToMat(scan.Full)
	defer mat.Close()

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(mat, &thresh, float32(d.opts.BinaryThreshold), 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := float64(scan.Width*scan.Height) * d.opts.MinBlobAreaFraction
	notes = append(notes, fmt.Sprintf("%d external contours found", contours.Size()))

	values := map[string]Measurement{}
	headIdx := -1

	// Head: largest eligible contour with a head-like ellipse.
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if gocv.ContourArea(c) < minArea || c.Size() < 5 {
			continue
		}
		rect := gocv.FitEllipse(c)
		major := float64(max(rect.Width, rect.Height))
		minor := float64(min(rect.Width, rect.Height))
		if major <= 0 {
			continue
		}
		ratio := minor / major
		if ratio >= d.opts.HeadRatioMin && ratio <= d.opts.HeadRatioMax {
			if headIdx < 0 || gocv.ContourArea(c) > gocv.ContourArea(contours.At(headIdx)) {
				headIdx = i
			}
		}
	}
	if headIdx >= 0 {
		rect := gocv.FitEllipse(contours.At(headIdx))
		a := float64(max(rect.Width, rect.Height)) / 2
		b := float64(min(rect.Width, rect.Height)) / 2
		values["BPD"] = d.rule.geometric("BPD", 2*b*cal.MMPerPixel)
		values["HC"] = d.rule.geometric("HC", ramanujan(a, b)*cal.MMPerPixel)
		notes = append(notes, fmt.Sprintf("head ellipse fit via OpenCV: BPD %.1f mm", *values["BPD"].Value))
	}

	// Abdomen: next-largest eligible contour with a more circular ratio.
	for i := 0; i < contours.Size(); i++ {
		if i == headIdx {
			continue
		}
		c := contours.At(i)
		if gocv.ContourArea(c) < minArea || c.Size() < 5 {
			continue
		}
		rect := gocv.FitEllipse(c)
		major := float64(max(rect.Width, rect.Height))
		minor := float64(min(rect.Width, rect.Height))
		if major <= 0 {
			continue
		}
		ratio := minor / major
		if ratio >= d.opts.AbdomenRatioMin && ratio <= d.opts.AbdomenRatioMax {
			mean := (major + minor) / 2
			values["AC"] = d.rule.geometric("AC", math.Pi*mean*cal.MMPerPixel)
			notes = append(notes, fmt.Sprintf("abdomen ellipse fit via OpenCV: AC %.1f mm", *values["AC"].Value))
			break
		}
	}

	// Femur: smallest band contour with a high bounding-rect aspect ratio.
	bestArea := -1.0
	var bestLen float64
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area < minArea {
			continue
		}
		r := gocv.BoundingRect(c)
		long, short := float64(r.Dx()), float64(r.Dy())
		if long < short {
			long, short = short, long
		}
		if short <= 0 || long/short < d.opts.FemurAspectMin {
			continue
		}
		if bestArea < 0 || area < bestArea {
			bestArea = area
			bestLen = long
		}
	}
	if bestArea > 0 {
		lengthMM := bestLen * cal.MMPerPixel
		if lengthMM >= d.opts.FemurMinMM && lengthMM <= d.opts.FemurMaxMM {
			values["FL"] = Measurement{
				Name:       "FL",
				Value:      float64Ptr(round1(lengthMM)),
				Unit:       "mm",
				Method:     MethodRect,
				Confidence: d.opts.GeometricConfidence,
			}
			notes = append(notes, fmt.Sprintf("femur band fit via OpenCV: FL %.1f mm", lengthMM))
		}
	}

	measurements := make([]Measurement, 0, len(findings.Parameters))
	for _, param := range findings.Parameters {
		if m, ok := values[param.Name]; ok {
			measurements = append(measurements, m)
			continue
		}
		fallback := d.rule.fallbackMeasurement(param)
		measurements = append(measurements, fallback)
		notes = append(notes, fmt.Sprintf("%s not resolved geometrically, fallback %.1f mm", param.Name, *fallback.Value))
	}
	return measurements, notes
}

// gridToMat copies the intensity grid into an 8-bit single-channel Mat.
func gridToMat(g *imaging.Grid) gocv.Mat {
	mat := gocv.NewMatWithSize(g.Height(), g.Width(), gocv.MatTypeCV8U)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			v := g.At(x, y)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			mat.SetUCharAt(y, x, uint8(v))
		}
	}
	return mat
}

func ramanujan(a, b float64) float64 {
	return math.Pi * (3*(a+b) - math.Sqrt((3*a+b)*(a+3*b)))
}
