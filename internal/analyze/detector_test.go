package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radverify/internal/calib"
	"radverify/internal/imaging"
)

// syntheticScan builds a ScanImage directly from a painted full-resolution
// grid, bypassing image decoding.
func syntheticScan(full *imaging.Grid) *imaging.ScanImage {
	w, h := full.Width(), full.Height()
	normalized := imaging.NewGrid(imaging.NormalizedSize, imaging.NormalizedSize)
	for y := 0; y < imaging.NormalizedSize; y++ {
		for x := 0; x < imaging.NormalizedSize; x++ {
			sx := x * w / imaging.NormalizedSize
			sy := y * h / imaging.NormalizedSize
			normalized.Set(x, y, full.At(sx, sy)/255.0)
		}
	}
	return &imaging.ScanImage{
		Width:         w,
		Height:        h,
		MeanIntensity: normalized.Mean(),
		Full:          full,
		Normalized:    normalized,
	}
}

// paintEllipse fills a solid bright ellipse on the grid.
func paintEllipse(g *imaging.Grid, cx, cy, a, b float64) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			dx := (float64(x) - cx) / a
			dy := (float64(y) - cy) / b
			if dx*dx+dy*dy <= 1 {
				g.Set(x, y, 255)
			}
		}
	}
}

func TestAnalyzeMeasuresHeadEllipse(t *testing.T) {
	full := imaging.NewGrid(400, 400)
	paintEllipse(full, 200, 200, 100, 80)

	d := NewRuleBasedDetector(DefaultOptions(), NoNoise{})
	analysis, notes := d.Analyze(syntheticScan(full), calib.Result{MMPerPixel: 0.5, Found: true})
	require.NotEmpty(t, notes)

	bpd := analysis.MeasurementByName("BPD")
	require.NotNil(t, bpd)
	require.NotNil(t, bpd.Value)
	assert.Equal(t, MethodEllipse, bpd.Method)
	// Minor axis 160 px at 0.5 mm/px.
	assert.InDelta(t, 80, *bpd.Value, 3)

	hc := analysis.MeasurementByName("HC")
	require.NotNil(t, hc)
	require.NotNil(t, hc.Value)
	assert.Equal(t, MethodEllipse, hc.Method)
	// Ramanujan perimeter of a 100x80 px ellipse is ~567 px.
	assert.InDelta(t, 283.6, *hc.Value, 8)

	// Nothing femur-shaped on the grid.
	fl := analysis.MeasurementByName("FL")
	require.NotNil(t, fl)
	assert.Equal(t, MethodFallback, fl.Method)
}

func TestAnalyzeMeasuresFemurBand(t *testing.T) {
	full := imaging.NewGrid(400, 400)
	// 120x10 px band: aspect 12, length 60 mm at 0.5 mm/px.
	for y := 300; y < 310; y++ {
		for x := 100; x < 220; x++ {
			full.Set(x, y, 255)
		}
	}

	d := NewRuleBasedDetector(DefaultOptions(), NoNoise{})
	analysis, _ := d.Analyze(syntheticScan(full), calib.Result{MMPerPixel: 0.5, Found: true})

	fl := analysis.MeasurementByName("FL")
	require.NotNil(t, fl)
	require.NotNil(t, fl.Value)
	assert.Equal(t, MethodRect, fl.Method)
	assert.InDelta(t, 60, *fl.Value, 1)
}

func TestAnalyzeFallbackIsDeterministicWithoutNoise(t *testing.T) {
	full := imaging.NewGrid(300, 300)
	d := NewRuleBasedDetector(DefaultOptions(), NoNoise{})
	scan := syntheticScan(full)
	cal := calib.Result{MMPerPixel: 0.1}

	first, _ := d.Analyze(scan, cal)
	second, _ := d.Analyze(scan, cal)

	for _, name := range []string{"BPD", "HC", "AC", "FL"} {
		a := first.MeasurementByName(name)
		b := second.MeasurementByName(name)
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.Equal(t, MethodFallback, a.Method)
		assert.Equal(t, *a.Value, *b.Value)
		assert.Equal(t, DefaultOptions().FallbackConfidence, a.Confidence)
	}

	// Without jitter the fallbacks are exactly the reference values.
	assert.Equal(t, 47.2, *first.MeasurementByName("BPD").Value)
	assert.Equal(t, 175.0, *first.MeasurementByName("HC").Value)
	assert.Equal(t, 152.0, *first.MeasurementByName("AC").Value)
	assert.Equal(t, 31.5, *first.MeasurementByName("FL").Value)
}

func TestAnalyzeSeededNoiseIsReproducible(t *testing.T) {
	full := imaging.NewGrid(200, 200)
	cal := calib.Result{MMPerPixel: 0.1}

	a, _ := NewRuleBasedDetector(DefaultOptions(), NewSeededNoise(42)).Analyze(syntheticScan(full), cal)
	b, _ := NewRuleBasedDetector(DefaultOptions(), NewSeededNoise(42)).Analyze(syntheticScan(full), cal)

	for _, name := range []string{"BPD", "HC", "AC", "FL"} {
		assert.Equal(t, *a.MeasurementByName(name).Value, *b.MeasurementByName(name).Value)
	}
}

func TestAnalyzeFlatImageIsPoorQuality(t *testing.T) {
	full := imaging.NewGrid(300, 300)
	d := NewRuleBasedDetector(DefaultOptions(), NoNoise{})
	analysis, _ := d.Analyze(syntheticScan(full), calib.Result{MMPerPixel: 0.1})

	assert.Equal(t, QualityPoor, analysis.Quality.Label)
	assert.Less(t, analysis.Quality.Score, 40)

	for _, s := range analysis.Structures {
		assert.False(t, s.Present, s.Name)
		assert.Equal(t, 0.0, s.Confidence, s.Name)
	}
}

func TestEstimateGestationalAge(t *testing.T) {
	ga := estimateGestationalAge([]Measurement{
		{Name: "BPD", Value: float64Ptr(48.0)},
	})
	require.NotNil(t, ga.TotalWeeks)
	assert.Equal(t, 20, ga.Weeks)
	assert.Equal(t, 0, ga.Days)
	assert.Equal(t, "low", ga.Confidence)

	ga = estimateGestationalAge([]Measurement{
		{Name: "BPD", Value: float64Ptr(48.0)},
		{Name: "FL", Value: float64Ptr(32.0)},
	})
	assert.Equal(t, "moderate", ga.Confidence)

	ga = estimateGestationalAge([]Measurement{{Name: "BPD"}})
	assert.Nil(t, ga.TotalWeeks)
	assert.Equal(t, "unknown", ga.Confidence)
}

func TestStructureConfidenceBounds(t *testing.T) {
	full := imaging.NewGrid(256, 256)
	// Checkerboard gives maximal texture on the normalized grid.
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			if (x/4+y/4)%2 == 0 {
				full.Set(x, y, 255)
			}
		}
	}

	d := NewRuleBasedDetector(DefaultOptions(), NoNoise{})
	analysis, _ := d.Analyze(syntheticScan(full), calib.Result{MMPerPixel: 0.1})

	for _, s := range analysis.Structures {
		assert.GreaterOrEqual(t, s.Confidence, 0.0, s.Name)
		assert.LessOrEqual(t, s.Confidence, 1.0, s.Name)
	}
}
