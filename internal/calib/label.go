//go:build !ocr

package calib

import "radverify/internal/imaging"

// readScaleLabel is a no-op without the ocr build tag; the estimator uses
// the conventional tick spacing instead.
func readScaleLabel(_ *imaging.Grid, _ int) (float64, bool) {
	return 0, false
}
