package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filledEllipse rasterizes a solid axis-aligned ellipse centered at (cx, cy).
func filledEllipse(cx, cy, a, b float64) []PointInt {
	var points []PointInt
	for y := int(cy - b - 2); y <= int(cy+b+2); y++ {
		for x := int(cx - a - 2); x <= int(cx+a+2); x++ {
			dx := (float64(x) - cx) / a
			dy := (float64(y) - cy) / b
			if dx*dx+dy*dy <= 1 {
				points = append(points, PointInt{X: x, Y: y})
			}
		}
	}
	return points
}

func TestFitEllipseRecoversCircle(t *testing.T) {
	points := filledEllipse(100, 100, 40, 40)
	e, ok := FitEllipse(points)
	require.True(t, ok)

	assert.InDelta(t, 100, e.Center.X, 0.5)
	assert.InDelta(t, 100, e.Center.Y, 0.5)
	assert.InDelta(t, 40, e.SemiMajor, 1.0)
	assert.InDelta(t, 40, e.SemiMinor, 1.0)
	assert.InDelta(t, 1.0, e.AxisRatio(), 0.05)
}

func TestFitEllipseRecoversAxes(t *testing.T) {
	points := filledEllipse(150, 120, 60, 45)
	e, ok := FitEllipse(points)
	require.True(t, ok)

	assert.InDelta(t, 60, e.SemiMajor, 1.5)
	assert.InDelta(t, 45, e.SemiMinor, 1.5)
	assert.InDelta(t, 0.75, e.AxisRatio(), 0.03)
}

func TestFitEllipseDegenerate(t *testing.T) {
	_, ok := FitEllipse([]PointInt{{0, 0}, {1, 0}, {2, 0}})
	assert.False(t, ok, "fewer than 5 points")

	collinear := []PointInt{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}}
	_, ok = FitEllipse(collinear)
	assert.False(t, ok, "collinear points have a zero eigenvalue")
}

func TestPerimeterCircle(t *testing.T) {
	e := Ellipse{SemiMajor: 50, SemiMinor: 50}
	assert.InDelta(t, 2*math.Pi*50, e.Perimeter(), 1e-9)
}

func TestPerimeterEllipseAgainstSeriesValue(t *testing.T) {
	// a=3, b=2: exact circumference 15.8654..., Ramanujan is within 1e-4.
	e := Ellipse{SemiMajor: 3, SemiMinor: 2}
	assert.InDelta(t, 15.8654, e.Perimeter(), 0.001)
}

func TestRectIntAspect(t *testing.T) {
	r := RectInt{X: 0, Y: 0, Width: 80, Height: 20}
	assert.InDelta(t, 4.0, r.AspectRatio(), 1e-9)
	assert.Equal(t, 80, r.LongSide())
	assert.Equal(t, 1600, r.Area())

	assert.Equal(t, 0.0, RectInt{}.AspectRatio())
}

func TestBoundingRect(t *testing.T) {
	points := []PointInt{{3, 7}, {10, 2}, {5, 5}}
	r := BoundingRect(points)
	assert.Equal(t, RectInt{X: 3, Y: 2, Width: 8, Height: 6}, r)
	assert.Equal(t, RectInt{}, BoundingRect(nil))
}
