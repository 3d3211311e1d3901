package geometry

import "math"

// Ellipse describes a fitted ellipse. SemiMajor and SemiMinor are the
// semi-axis lengths in pixels, Angle is the major-axis orientation in
// radians measured counter-clockwise from the x axis.
type Ellipse struct {
	Center    Point2D `json:"center"`
	SemiMajor float64 `json:"semi_major"`
	SemiMinor float64 `json:"semi_minor"`
	Angle     float64 `json:"angle"`
}

// AxisRatio returns minor/major in (0, 1]. Returns 0 for degenerate fits.
func (e Ellipse) AxisRatio() float64 {
	if e.SemiMajor <= 0 {
		return 0
	}
	return e.SemiMinor / e.SemiMajor
}

// MinorDiameter returns the full minor-axis length.
func (e Ellipse) MinorDiameter() float64 {
	return 2 * e.SemiMinor
}

// MajorDiameter returns the full major-axis length.
func (e Ellipse) MajorDiameter() float64 {
	return 2 * e.SemiMajor
}

// MeanDiameter returns the average of the two axis lengths.
func (e Ellipse) MeanDiameter() float64 {
	return e.SemiMajor + e.SemiMinor
}

// Perimeter approximates the ellipse circumference with Ramanujan's first
// formula, accurate to well under a percent for the axis ratios seen in
// practice.
func (e Ellipse) Perimeter() float64 {
	a, b := e.SemiMajor, e.SemiMinor
	return math.Pi * (3*(a+b) - math.Sqrt((3*a+b)*(a+3*b)))
}

// FitEllipse fits an ellipse to a filled pixel region using second-order
// central moments. For a solid elliptical region the recovered semi-axes
// equal the true semi-axes (axis = 2*sqrt(eigenvalue) for a uniform
// ellipse). Returns false when fewer than 5 points are given or the region
// is degenerate.
func FitEllipse(points []PointInt) (Ellipse, bool) {
	n := float64(len(points))
	if len(points) < 5 {
		return Ellipse{}, false
	}

	var cx, cy float64
	for _, p := range points {
		cx += float64(p.X)
		cy += float64(p.Y)
	}
	cx /= n
	cy /= n

	var mxx, myy, mxy float64
	for _, p := range points {
		dx := float64(p.X) - cx
		dy := float64(p.Y) - cy
		mxx += dx * dx
		myy += dy * dy
		mxy += dx * dy
	}
	mxx /= n
	myy /= n
	mxy /= n

	// Eigenvalues of the 2x2 covariance matrix, closed form.
	common := math.Sqrt((mxx-myy)*(mxx-myy) + 4*mxy*mxy)
	l1 := (mxx + myy + common) / 2
	l2 := (mxx + myy - common) / 2
	if l1 <= 0 || l2 <= 0 {
		return Ellipse{}, false
	}

	return Ellipse{
		Center:    Point2D{X: cx, Y: cy},
		SemiMajor: 2 * math.Sqrt(l1),
		SemiMinor: 2 * math.Sqrt(l2),
		Angle:     0.5 * math.Atan2(2*mxy, mxx-myy),
	}, true
}
