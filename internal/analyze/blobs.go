package analyze

import (
	"sort"

	"radverify/internal/imaging"
	"radverify/pkg/geometry"
)

// blob is a connected bright region of the binarized grid.
type blob struct {
	points []geometry.PointInt
	bounds geometry.RectInt
}

func (b blob) area() int { return len(b.points) }

// findBlobs binarizes the grid at the threshold and extracts 4-connected
// components with at least minArea pixels, largest first.
func findBlobs(g *imaging.Grid, threshold float64, minArea int) []blob {
	w, h := g.Width(), g.Height()
	visited := make([]bool, w*h)

	var blobs []blob
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || g.At(x, y) < threshold {
				continue
			}

			points := floodFill(g, visited, x, y, threshold)
			if len(points) < minArea {
				continue
			}
			blobs = append(blobs, blob{
				points: points,
				bounds: geometry.BoundingRect(points),
			})
		}
	}

	sort.Slice(blobs, func(i, j int) bool {
		return blobs[i].area() > blobs[j].area()
	})
	return blobs
}

// floodFill collects the connected component containing (x, y) using an
// explicit queue; scans can be large enough that recursion would be unsafe.
func floodFill(g *imaging.Grid, visited []bool, x, y int, threshold float64) []geometry.PointInt {
	w, h := g.Width(), g.Height()
	queue := []geometry.PointInt{{X: x, Y: y}}
	visited[y*w+x] = true

	var points []geometry.PointInt
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		points = append(points, p)

		for _, n := range [4]geometry.PointInt{
			{X: p.X + 1, Y: p.Y},
			{X: p.X - 1, Y: p.Y},
			{X: p.X, Y: p.Y + 1},
			{X: p.X, Y: p.Y - 1},
		} {
			if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
				continue
			}
			idx := n.Y*w + n.X
			if visited[idx] || g.At(n.X, n.Y) < threshold {
				continue
			}
			visited[idx] = true
			queue = append(queue, n)
		}
	}
	return points
}
