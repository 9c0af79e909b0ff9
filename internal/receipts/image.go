// Package receipts prepares receipt photos for OCR and turns the recognised
// text into a coney log prefill.
package receipts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	maxDimension = 1600
	jpegQuality  = 85
)

var ErrNotAnImage = errors.New("file is not a supported image")

// Preprocess orients, downsizes and greyscales a receipt photo, returning
// JPEG bytes. OCR is both faster and more accurate on the result.
func Preprocess(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)
	contrasted := imaging.AdjustContrast(gray, 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, contrasted, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
