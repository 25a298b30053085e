package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/testutil"
	"github.com/riceguard/backend/internal/vision"
)

// makeJPEG renders a flat test image of the given size.
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 220, G: 210, B: 180, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestAnalyzer_Analyze(t *testing.T) {
	engine := &testutil.MockEngine{
		Detections: []models.Detection{
			{Class: models.ClassWholeGrain, Confidence: 0.9, BBox: [4]float64{10, 10, 30, 20}},
			{Class: models.ClassWholeGrain, Confidence: 0.8, BBox: [4]float64{40, 10, 60, 20}},
			{Class: models.ClassBrokenGrain, Confidence: 0.7, BBox: [4]float64{10, 40, 25, 50}},
		},
	}

	a := New(engine, nil, 0)
	result, err := a.Analyze(context.Background(), makeJPEG(t, 100, 80))
	require.NoError(t, err)

	require.Equal(t, 3, result.TotalGrains)
	require.Equal(t, 2, result.WholeGrains)
	require.Equal(t, 1, result.BrokenGrains)
	require.Equal(t, result.TotalGrains, result.WholeGrains+result.BrokenGrains)
	require.Equal(t, 33.33, result.BrokenPercentage)
	require.Equal(t, 0.8, result.AvgModelConfidence)

	// The image is within bounds, so the engine sees the original dimensions.
	require.Equal(t, 100, engine.LastWidth)
	require.Equal(t, 80, engine.LastHeight)

	// The processed image must be a decodable base64 JPEG.
	annotated, err := base64.StdEncoding.DecodeString(result.ProcessedImage)
	require.NoError(t, err)
	decoded, err := vision.Decode(annotated)
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Bounds().Dx())
	require.Equal(t, 80, decoded.Bounds().Dy())
}

func TestAnalyzer_Analyze_NoDetections(t *testing.T) {
	a := New(&testutil.MockEngine{}, nil, 0)
	result, err := a.Analyze(context.Background(), makeJPEG(t, 50, 50))
	require.NoError(t, err)

	require.Equal(t, 0, result.TotalGrains)
	require.Equal(t, 0, result.WholeGrains)
	require.Equal(t, 0, result.BrokenGrains)
	require.Equal(t, 0.0, result.BrokenPercentage)
	require.Equal(t, 0.0, result.AvgModelConfidence)
	require.NotEmpty(t, result.ProcessedImage)
}

func TestAnalyzer_Analyze_ResizesLargeImages(t *testing.T) {
	engine := &testutil.MockEngine{}
	a := New(engine, nil, 64)

	_, err := a.Analyze(context.Background(), makeJPEG(t, 128, 64))
	require.NoError(t, err)
	require.Equal(t, 64, engine.LastWidth)
	require.Equal(t, 32, engine.LastHeight)
}

func TestAnalyzer_Analyze_EngineError(t *testing.T) {
	engineErr := errors.New("upstream unavailable")
	a := New(&testutil.MockEngine{Err: engineErr}, nil, 0)

	_, err := a.Analyze(context.Background(), makeJPEG(t, 50, 50))
	require.ErrorIs(t, err, engineErr)
}

func TestAnalyzer_Analyze_InvalidImage(t *testing.T) {
	a := New(&testutil.MockEngine{}, nil, 0)

	_, err := a.Analyze(context.Background(), []byte("definitely not an image"))
	require.ErrorIs(t, err, vision.ErrInvalidImage)
}

func TestAnalyzer_RoundingMatchesWireFormat(t *testing.T) {
	// 1 broken out of 7 grains: 14.285714...% -> 14.29,
	// confidences averaging 0.8571428... -> 0.857.
	detections := make([]models.Detection, 0, 7)
	for i := 0; i < 6; i++ {
		detections = append(detections, models.Detection{Class: models.ClassWholeGrain, Confidence: 0.9})
	}
	detections = append(detections, models.Detection{Class: models.ClassBrokenGrain, Confidence: 0.6})

	a := New(&testutil.MockEngine{Detections: detections}, nil, 0)
	result, err := a.Analyze(context.Background(), makeJPEG(t, 50, 50))
	require.NoError(t, err)

	require.Equal(t, 14.29, result.BrokenPercentage)
	require.Equal(t, 0.857, result.AvgModelConfidence)
}
