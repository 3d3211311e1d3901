// Package calib estimates the physical-units-per-pixel ratio of a scan from
// the on-image scale bar. This is a best-effort heuristic, not
// measurement-grade calibration: when no scale bar is detectable the
// estimator falls back to a documented default ratio and never fails.
package calib

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"radverify/internal/imaging"
)

// Options configures scale-bar detection.
type Options struct {
	StripFraction float64 // width fraction of the right-edge strip to scan
	BrightnessMin float64 // tick mark binarization threshold (0-255)
	MinGapPx      float64 // modal gaps below this are noise, not tick spacing
	TickSpacingMM float64 // physical distance between adjacent ticks
	DefaultRatio  float64 // mm per pixel when no scale bar is found
}

// DefaultOptions returns the conventional ultrasound scale-bar parameters.
func DefaultOptions() Options {
	return Options{
		StripFraction: 0.06,
		BrightnessMin: 200,
		MinGapPx:      4,
		TickSpacingMM: 10,
		DefaultRatio:  0.1,
	}
}

// Result is the calibration outcome. Found reports whether a plausible tick
// spacing was detected; MMPerPixel is always positive and usable.
type Result struct {
	MMPerPixel    float64 `json:"mm_per_pixel"`
	Found         bool    `json:"found"`
	TickSpacingPx float64 `json:"tick_spacing_px,omitempty"`
}

// Estimator infers calibration from the full-resolution grid.
type Estimator struct {
	opts Options
}

// NewEstimator creates an estimator with the given options.
func NewEstimator(opts Options) *Estimator {
	return &Estimator{opts: opts}
}

// Estimate scans the right-edge strip for bright tick marks and derives the
// mm-per-pixel ratio from the modal vertical gap between them. It never
// fails; the notes record which path was taken.
func (e *Estimator) Estimate(full *imaging.Grid) (Result, []string) {
	var notes []string

	w, h := full.Width(), full.Height()
	stripX := w - int(float64(w)*e.opts.StripFraction)
	if stripX < 0 {
		stripX = 0
	}

	rows := brightRows(full, stripX, e.opts.BrightnessMin)
	notes = append(notes, fmt.Sprintf("scale strip x>=%d scanned, %d bright rows", stripX, len(rows)))

	gaps := rowGaps(rows)
	if len(gaps) == 0 {
		notes = append(notes, fmt.Sprintf("no tick candidates, using default ratio %.3f mm/px", e.opts.DefaultRatio))
		return Result{MMPerPixel: e.opts.DefaultRatio}, notes
	}

	sort.Float64s(gaps)
	modal, count := stat.Mode(gaps, nil)
	if modal < e.opts.MinGapPx {
		notes = append(notes, fmt.Sprintf("modal gap %.0f px below plausibility threshold, using default ratio", modal))
		return Result{MMPerPixel: e.opts.DefaultRatio}, notes
	}

	spacing := e.labelSpacing(full, stripX)
	ratio := spacing / modal
	notes = append(notes, fmt.Sprintf("modal tick gap %.0f px (count %.0f) over %d rows of %d, ratio %.4f mm/px", modal, count, len(rows), h, ratio))
	return Result{MMPerPixel: ratio, Found: true, TickSpacingPx: modal}, notes
}

// labelSpacing returns the physical tick spacing, preferring an OCR-read
// scale label when that capability is compiled in.
func (e *Estimator) labelSpacing(full *imaging.Grid, stripX int) float64 {
	if mm, ok := readScaleLabel(full, stripX); ok && mm > 0 {
		return mm
	}
	return e.opts.TickSpacingMM
}

// brightRows collects the distinct y coordinates that contain at least one
// pixel above the brightness threshold inside the strip.
func brightRows(g *imaging.Grid, stripX int, threshold float64) []int {
	var rows []int
	for y := 0; y < g.Height(); y++ {
		for x := stripX; x < g.Width(); x++ {
			if g.At(x, y) >= threshold {
				rows = append(rows, y)
				break
			}
		}
	}
	return rows
}

// rowGaps converts a run of bright rows into gaps between tick centers.
// Consecutive bright rows belong to the same tick mark; only jumps larger
// than one pixel separate ticks.
func rowGaps(rows []int) []float64 {
	var starts []int
	for i, y := range rows {
		if i == 0 || y-rows[i-1] > 1 {
			starts = append(starts, y)
		}
	}
	var gaps []float64
	for i := 1; i < len(starts); i++ {
		gaps = append(gaps, float64(starts[i]-starts[i-1]))
	}
	return gaps
}
