// Package vision holds the image pipeline: decode, downscale for inference
// and annotate the detections onto the original frame.
package vision

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// jpegQuality is used for every re-encode in the pipeline.
const jpegQuality = 90

// ErrInvalidImage marks inputs that cannot be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// Decode parses image bytes into an image.Image. JPEG and PNG are supported.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidImage, "decoding image: %v", err)
	}
	return img, nil
}

// EncodeJPEG serializes an image as JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, "encoding jpeg")
	}
	return buf.Bytes(), nil
}

// ResizeLongSide scales the image down so its longer side is at most
// maxLongSide, preserving aspect ratio, and re-encodes it as JPEG. Images
// already within bounds are returned unchanged.
func ResizeLongSide(data []byte, maxLongSide int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidImage, "reading image dimensions: %v", err)
	}

	longSide := cfg.Width
	if cfg.Height > longSide {
		longSide = cfg.Height
	}
	if longSide <= maxLongSide {
		return data, nil
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	scale := float64(maxLongSide) / float64(longSide)
	w := uint(float64(cfg.Width) * scale)
	h := uint(float64(cfg.Height) * scale)
	scaled := resize.Resize(w, h, img, resize.Lanczos3)

	return EncodeJPEG(scaled)
}
