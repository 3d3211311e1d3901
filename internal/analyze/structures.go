package analyze

import (
	"fmt"
	"math"

	"radverify/internal/findings"
	"radverify/internal/imaging"
)

// detectStructures scores each catalog entry from global image statistics.
// This is the rule-based surrogate for a learned classifier: deterministic
// given the image, confidences in [0,1], catalog shape fixed. A real model
// can replace it behind the Detector interface without touching downstream
// code.
func (d *RuleBasedDetector) detectStructures(scan *imaging.ScanImage) ([]StructureFinding, []string) {
	texture := textureScore(scan.Normalized)
	variation := intensityVariation(scan.Normalized)

	// Combined visibility signal in [0,1]: scans with delineated anatomy
	// have both edge density and intensity spread.
	signal := clamp01(texture*6 + variation*2)

	notes := []string{
		fmt.Sprintf("texture score %.3f, intensity variation %.3f, visibility signal %.2f", texture, variation, signal),
	}

	structs := make([]StructureFinding, 0, len(findings.Structures))
	for _, s := range findings.Structures {
		present := signal >= d.opts.PresenceThreshold && s.BaseConfidence >= 0.5
		confidence := s.BaseConfidence * (0.55 + 0.45*signal)
		if !present {
			// Low prior or weak signal: report absence with the residual
			// confidence so the comparison engine can treat it as
			// not-confidently-present.
			confidence = clamp01(s.BaseConfidence * signal)
		}
		structs = append(structs, StructureFinding{
			Category:   s.Category,
			Name:       s.Name,
			Present:    present,
			Confidence: round2(clamp01(confidence)),
		})
	}
	return structs, notes
}

// textureScore is the mean gradient magnitude of the normalized grid, an
// edge-density proxy.
func textureScore(g *imaging.Grid) float64 {
	w, h := g.Width(), g.Height()
	if w < 2 || h < 2 {
		return 0
	}
	var sum float64
	var count int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := (g.At(x+1, y) - g.At(x-1, y)) / 2
			gy := (g.At(x, y+1) - g.At(x, y-1)) / 2
			sum += math.Sqrt(gx*gx + gy*gy)
			count++
		}
	}
	return sum / float64(count)
}

// intensityVariation is the standard deviation of the normalized grid.
func intensityVariation(g *imaging.Grid) float64 {
	mean := g.Mean()
	var sum float64
	for _, v := range g.Values() {
		dv := v - mean
		sum += dv * dv
	}
	return math.Sqrt(sum / float64(len(g.Values())))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
