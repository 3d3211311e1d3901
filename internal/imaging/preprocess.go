// Package imaging normalizes uploaded scans into calibrated, analysis-ready
// grids. Preprocessing is pure Go so the rule-based analysis path is
// available on every build; the OpenCV-backed detector consumes the same
// ScanImage output.
package imaging

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxDimension caps the longest edge before analysis.
	MaxDimension = 1024
	// NormalizedSize is the side of the small square grid used by the
	// texture/structure heuristics.
	NormalizedSize = 64
)

// ScanImage is the immutable output of preprocessing. Full holds the
// smoothed full-resolution grid used for geometric measurement (0-255),
// Normalized the small square grid for lightweight texture analysis (0-1).
type ScanImage struct {
	Metadata      Metadata `json:"metadata"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	MeanIntensity float64  `json:"mean_intensity"`
	Full          *Grid    `json:"-"`
	Normalized    *Grid    `json:"-"`
}

// Preprocess converts a decoded image into a ScanImage. The returned notes
// record one human-readable entry per transformation applied; they are a
// pure audit log, never consumed for control flow.
func Preprocess(img image.Image, meta Metadata) (*ScanImage, []string) {
	var notes []string

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	notes = append(notes, fmt.Sprintf("raw image size %dx%d", width, height))

	if longest := max(width, height); longest > MaxDimension {
		scale := float64(MaxDimension) / float64(longest)
		newW := int(float64(width) * scale)
		newH := int(float64(height) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		img = dst
		bounds = dst.Bounds()
		width, height = newW, newH
		notes = append(notes, fmt.Sprintf("downscaled to %dx%d (longest edge capped at %d)", width, height, MaxDimension))
	}

	gray := toGray(img)
	notes = append(notes, "converted to single-channel intensity")

	smoothed := gaussianSmooth(gray)
	notes = append(notes, "applied 5x5 gaussian smoothing")

	normalized := resampleNormalized(smoothed, NormalizedSize)
	mean := normalized.Mean()
	notes = append(notes, fmt.Sprintf("resampled to %dx%d analysis grid, mean intensity %.3f", NormalizedSize, NormalizedSize, mean))

	return &ScanImage{
		Metadata:      meta,
		Width:         width,
		Height:        height,
		MeanIntensity: mean,
		Full:          smoothed,
		Normalized:    normalized,
	}, notes
}

// toGray converts to a 0-255 intensity grid using Rec. 601 luma weights.
func toGray(img image.Image) *Grid {
	bounds := img.Bounds()
	g := NewGrid(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(b>>8)
			g.Set(x-bounds.Min.X, y-bounds.Min.Y, luma)
		}
	}
	return g
}

// gaussianKernel5 is a fixed 5x5 binomial approximation of a gaussian.
var gaussianKernel5 = [5][5]float64{
	{1, 4, 6, 4, 1},
	{4, 16, 24, 16, 4},
	{6, 24, 36, 24, 6},
	{4, 16, 24, 16, 4},
	{1, 4, 6, 4, 1},
}

const gaussianKernel5Sum = 256.0

// gaussianSmooth applies the fixed smoothing kernel with edge clamping.
func gaussianSmooth(src *Grid) *Grid {
	w, h := src.Width(), src.Height()
	dst := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sx := clamp(x+kx, 0, w-1)
					sy := clamp(y+ky, 0, h-1)
					sum += src.At(sx, sy) * gaussianKernel5[ky+2][kx+2]
				}
			}
			dst.Set(x, y, sum/gaussianKernel5Sum)
		}
	}
	return dst
}

// resampleNormalized area-averages the grid down to size x size and rescales
// intensities to 0-1.
func resampleNormalized(src *Grid, size int) *Grid {
	dst := NewGrid(size, size)
	sw, sh := src.Width(), src.Height()
	for y := 0; y < size; y++ {
		y0 := y * sh / size
		y1 := (y + 1) * sh / size
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for x := 0; x < size; x++ {
			x0 := x * sw / size
			x1 := (x + 1) * sw / size
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var sum float64
			for sy := y0; sy < y1 && sy < sh; sy++ {
				for sx := x0; sx < x1 && sx < sw; sx++ {
					sum += src.At(sx, sy)
				}
			}
			count := float64((y1 - y0) * (x1 - x0))
			dst.Set(x, y, sum/count/255.0)
		}
	}
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
