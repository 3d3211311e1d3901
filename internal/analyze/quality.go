package analyze

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"radverify/internal/imaging"
)

// assessQuality scores sharpness, contrast, brightness and noise on the
// full-resolution grid, buckets each into a weighted contribution and maps
// the 0-100 sum to an ordinal label.
func assessQuality(scan *imaging.ScanImage) Quality {
	full := scan.Full

	sharpness := laplacianVariance(full)
	contrast := stat.StdDev(full.Values(), nil)
	brightness := full.Mean()
	noise := noiseEstimate(full)

	score := 0
	// Sharpness: local-gradient variance, up to 40 points.
	switch {
	case sharpness > 500:
		score += 40
	case sharpness > 300:
		score += 30
	case sharpness > 150:
		score += 20
	case sharpness > 50:
		score += 10
	}
	// Contrast: global intensity spread, up to 30 points.
	switch {
	case contrast > 50:
		score += 30
	case contrast > 35:
		score += 22
	case contrast > 20:
		score += 14
	case contrast > 10:
		score += 6
	}
	// Brightness: mean inside the acceptable acquisition band, up to 15.
	if brightness >= 80 && brightness <= 180 {
		score += 15
	} else if brightness >= 50 && brightness <= 210 {
		score += 8
	}
	// Noise: residual against a re-smoothed copy, up to 15.
	switch {
	case noise < 2:
		score += 15
	case noise < 5:
		score += 10
	case noise < 10:
		score += 5
	}

	label := QualityPoor
	switch {
	case score >= 85:
		label = QualityExcellent
	case score >= 65:
		label = QualityGood
	case score >= 40:
		label = QualityFair
	}

	return Quality{
		Sharpness:  round2(sharpness),
		Contrast:   round2(contrast),
		Brightness: round2(brightness),
		Noise:      round2(noise),
		Score:      score,
		Label:      label,
	}
}

func (q Quality) note() string {
	return fmt.Sprintf("quality %s (score %d): sharpness %.1f, contrast %.1f, brightness %.1f, noise %.1f",
		q.Label, q.Score, q.Sharpness, q.Contrast, q.Brightness, q.Noise)
}

// laplacianVariance applies the 3x3 Laplacian and returns the response
// variance, the usual focus measure.
func laplacianVariance(g *imaging.Grid) float64 {
	w, h := g.Width(), g.Height()
	if w < 3 || h < 3 {
		return 0
	}
	responses := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := g.At(x-1, y) + g.At(x+1, y) + g.At(x, y-1) + g.At(x, y+1) - 4*g.At(x, y)
			responses = append(responses, lap)
		}
	}
	return stat.Variance(responses, nil)
}

// noiseEstimate measures the mean absolute difference between the grid and a
// 3x3 box-smoothed copy of itself.
func noiseEstimate(g *imaging.Grid) float64 {
	w, h := g.Width(), g.Height()
	if w < 3 || h < 3 {
		return 0
	}
	var sum float64
	var count int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var local float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					local += g.At(x+dx, y+dy)
				}
			}
			local /= 9
			diff := g.At(x, y) - local
			if diff < 0 {
				diff = -diff
			}
			sum += diff
			count++
		}
	}
	return sum / float64(count)
}
