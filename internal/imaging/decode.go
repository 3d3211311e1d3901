package imaging

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
)

var allowedFormats = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// Metadata describes the uploaded scan payload.
type Metadata struct {
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	SizeBytes int    `json:"size_bytes"`
}

// Decode validates the payload and decodes it into an image. The filename
// extension must be jpg/jpeg/png and the bytes must decode to a non-empty
// image; anything else yields an InvalidInputError.
func Decode(filename string, data []byte) (image.Image, Metadata, error) {
	if len(data) == 0 {
		return nil, Metadata{}, invalidInputf("uploaded image contains no data")
	}

	suffix := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedFormats[suffix] {
		return nil, Metadata{}, invalidInputf("unsupported image format %q, use JPG or PNG scans", suffix)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Metadata{}, invalidInputf("failed to decode image: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, Metadata{}, invalidInputf("decoded image is empty")
	}

	meta := Metadata{
		Filename:  filename,
		Format:    strings.ToUpper(format),
		SizeBytes: len(data),
	}
	return img, meta, nil
}
