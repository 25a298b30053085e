//go:build gocv
// +build gocv

package vision

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/profile"
)

// Annotate draws a rectangle around every detection using OpenCV and returns
// the result as JPEG bytes. Enabled with the gocv build tag.
func Annotate(data []byte, detections []models.Detection, prof *profile.Profile) ([]byte, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.New("decoding image: empty frame")
	}

	for _, d := range detections {
		rect := image.Rect(int(d.BBox[0]), int(d.BBox[1]), int(d.BBox[2]), int(d.BBox[3]))
		gocv.Rectangle(&mat, rect, boxColor(d.Class, prof), 2)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, errors.Wrap(err, "encoding jpeg")
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
