package imaging

// Grid is an immutable single-channel intensity raster. Values are stored
// row-major in the 0-255 range for full-resolution grids and 0-1 for the
// normalized analysis grid.
type Grid struct {
	width  int
	height int
	pix    []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		pix:    make([]float64, width*height),
	}
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *Grid) Height() int { return g.height }

// At returns the intensity at (x, y). Out-of-bounds reads return 0.
func (g *Grid) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0
	}
	return g.pix[y*g.width+x]
}

// Set writes the intensity at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, v float64) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.pix[y*g.width+x] = v
}

// Values returns the backing pixel slice in row-major order. Callers must
// treat it as read-only.
func (g *Grid) Values() []float64 { return g.pix }

// Mean returns the average intensity.
func (g *Grid) Mean() float64 {
	if len(g.pix) == 0 {
		return 0
	}
	var sum float64
	for _, v := range g.pix {
		sum += v
	}
	return sum / float64(len(g.pix))
}
