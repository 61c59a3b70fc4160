package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxImageSide is the longest edge kept for profile pictures.
const MaxImageSide = 1024

var ErrNotImage = errors.New("file is not a supported image")

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

func IsImageExt(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// Downscale decodes an image and shrinks it to fit maxSide on its longer
// edge. Smaller images are re-encoded unchanged in size. The returned name
// carries the extension of the encoded format.
func Downscale(r io.Reader, name string, maxSide int) ([]byte, string, error) {
	if !IsImageExt(name) {
		return nil, "", ErrNotImage
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return nil, "", ErrNotImage
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	b := img.Bounds()
	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	// GIF frames beyond the first are dropped by Decode; store as PNG
	outName := name
	if format == imaging.GIF {
		format = imaging.PNG
		outName = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), outName, nil
}
