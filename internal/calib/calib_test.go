package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radverify/internal/imaging"
)

// gridWithTicks paints one bright pixel inside the right-edge strip every
// spacing rows.
func gridWithTicks(w, h, spacing int) *imaging.Grid {
	g := imaging.NewGrid(w, h)
	for y := 0; y < h; y += spacing {
		g.Set(w-3, y, 255)
	}
	return g
}

func TestEstimateFindsTickSpacing(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	result, notes := e.Estimate(gridWithTicks(200, 400, 20))

	require.True(t, result.Found)
	assert.InDelta(t, 20, result.TickSpacingPx, 1e-9)
	// 10 mm between ticks, 20 px apart.
	assert.InDelta(t, 0.5, result.MMPerPixel, 1e-9)
	assert.NotEmpty(t, notes)
}

func TestEstimateUniformImageFallsBack(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	result, notes := e.Estimate(imaging.NewGrid(300, 300))

	assert.False(t, result.Found)
	assert.InDelta(t, DefaultOptions().DefaultRatio, result.MMPerPixel, 1e-9)
	assert.NotEmpty(t, notes)
}

func TestEstimateRejectsImplausiblyTightTicks(t *testing.T) {
	// Bright rows every 2 px read as noise, not a scale bar.
	e := NewEstimator(DefaultOptions())
	result, _ := e.Estimate(gridWithTicks(200, 100, 2))

	assert.False(t, result.Found)
	assert.InDelta(t, DefaultOptions().DefaultRatio, result.MMPerPixel, 1e-9)
}

func TestEstimateIgnoresBrightnessOutsideStrip(t *testing.T) {
	g := imaging.NewGrid(200, 400)
	// Bright content in the image body must not register as ticks.
	for y := 0; y < 400; y += 15 {
		g.Set(50, y, 255)
	}
	e := NewEstimator(DefaultOptions())
	result, _ := e.Estimate(g)

	assert.False(t, result.Found)
}

func TestEstimateCustomRatioOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultRatio = 0.25
	e := NewEstimator(opts)
	result, _ := e.Estimate(imaging.NewGrid(100, 100))

	assert.InDelta(t, 0.25, result.MMPerPixel, 1e-9)
}
