package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a uniform gray image at the given size.
func encodePNG(t *testing.T, w, h int, value uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeValidPNG(t *testing.T) {
	data := encodePNG(t, 32, 24, 128)
	img, meta, err := Decode("scan.png", data)
	require.NoError(t, err)

	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
	assert.Equal(t, "scan.png", meta.Filename)
	assert.Equal(t, "PNG", meta.Format)
	assert.Equal(t, len(data), meta.SizeBytes)
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, _, err := Decode("scan.png", nil)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "no data")
}

func TestDecodeRejectsUnsupportedExtension(t *testing.T) {
	data := encodePNG(t, 8, 8, 0)
	_, _, err := Decode("scan.gif", data)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "unsupported image format")
}

func TestDecodeRejectsGarbageBytes(t *testing.T) {
	_, _, err := Decode("scan.png", []byte("definitely not a png"))
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestPreprocessKeepsSmallImageSize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 150))
	scan, notes := Preprocess(img, Metadata{Filename: "s.png"})

	assert.Equal(t, 200, scan.Width)
	assert.Equal(t, 150, scan.Height)
	assert.Equal(t, 200, scan.Full.Width())
	assert.Equal(t, NormalizedSize, scan.Normalized.Width())
	assert.NotEmpty(t, notes)
}

func TestPreprocessCapsLongestEdge(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2048, 1024))
	scan, _ := Preprocess(img, Metadata{})

	assert.Equal(t, MaxDimension, scan.Width)
	assert.Equal(t, MaxDimension/2, scan.Height)
}

func TestPreprocessUniformIntensity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	scan, _ := Preprocess(img, Metadata{})

	// Uniform input survives smoothing and normalization unchanged.
	assert.InDelta(t, 200.0/255.0, scan.MeanIntensity, 0.01)
	assert.InDelta(t, 200, scan.Full.At(32, 32), 1.0)
}

func TestGridBoundsSafety(t *testing.T) {
	g := NewGrid(4, 4)
	g.Set(2, 2, 7)
	g.Set(-1, 0, 99)
	g.Set(0, 10, 99)

	assert.Equal(t, 7.0, g.At(2, 2))
	assert.Equal(t, 0.0, g.At(-1, 0))
	assert.Equal(t, 0.0, g.At(0, 10))
	assert.InDelta(t, 7.0/16.0, g.Mean(), 1e-9)
}
