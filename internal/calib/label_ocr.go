//go:build ocr

package calib

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"radverify/internal/imaging"
)

var scaleLabelPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(mm|cm)`)

// readScaleLabel OCRs the scale strip looking for an annotation such as
// "10 mm" and returns the physical tick spacing it declares. Any OCR
// failure simply reports no label; calibration falls back to the
// conventional spacing.
func readScaleLabel(full *imaging.Grid, stripX int) (float64, bool) {
	strip := image.NewGray(image.Rect(0, 0, full.Width()-stripX, full.Height()))
	for y := 0; y < full.Height(); y++ {
		for x := stripX; x < full.Width(); x++ {
			strip.SetGray(x-stripX, y, color.Gray{Y: clampByte(full.At(x, y))})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, strip); err != nil {
		return 0, false
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return 0, false
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return 0, false
	}
	text, err := client.Text()
	if err != nil {
		return 0, false
	}

	m := scaleLabelPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	if m[2] == "cm" {
		value *= 10
	}
	return value, true
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
