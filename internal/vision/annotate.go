//go:build !gocv
// +build !gocv

package vision

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/profile"
)

// boxThickness is the outline width in pixels.
const boxThickness = 2

// Annotate draws a rectangle around every detection and returns the result as
// JPEG bytes. This is the pure-Go path used by default builds; compiling with
// the gocv tag switches to OpenCV drawing.
func Annotate(data []byte, detections []models.Detection, prof *profile.Profile) ([]byte, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	for _, d := range detections {
		rect := image.Rect(int(d.BBox[0]), int(d.BBox[1]), int(d.BBox[2]), int(d.BBox[3]))
		drawRect(out, rect.Intersect(bounds), boxColor(d.Class, prof))
	}

	return EncodeJPEG(out)
}

// drawRect paints a hollow rectangle outline of boxThickness pixels.
func drawRect(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	if rect.Empty() {
		return
	}
	for t := 0; t < boxThickness; t++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, rect.Min.Y+t, c)
			img.SetRGBA(x, rect.Max.Y-1-t, c)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			img.SetRGBA(rect.Min.X+t, y, c)
			img.SetRGBA(rect.Max.X-1-t, y, c)
		}
	}
}
