// Package analyzer orchestrates the analysis pipeline: downscale, remote
// inference, grading and annotation.
package analyzer

import (
	"context"
	"encoding/base64"
	"math"

	"github.com/riceguard/backend/internal/inference"
	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/profile"
	"github.com/riceguard/backend/internal/vision"
)

// DefaultMaxLongSide matches the largest input the workflow model accepts.
const DefaultMaxLongSide = 1280

// Analyzer turns a raw uploaded image into an AnalysisResult.
type Analyzer struct {
	engine      inference.Engine
	profile     *profile.Profile
	maxLongSide int
}

// New creates an analyzer. A nil profile falls back to the built-in default;
// a zero maxLongSide falls back to DefaultMaxLongSide.
func New(engine inference.Engine, prof *profile.Profile, maxLongSide int) *Analyzer {
	if prof == nil {
		prof = profile.Default()
	}
	if maxLongSide <= 0 {
		maxLongSide = DefaultMaxLongSide
	}
	return &Analyzer{
		engine:      engine,
		profile:     prof,
		maxLongSide: maxLongSide,
	}
}

// Ready reports whether the underlying inference engine is configured.
func (a *Analyzer) Ready() error {
	return a.engine.Ready()
}

// Analyze runs the full pipeline on the uploaded image bytes.
// The returned result upholds WholeGrains + BrokenGrains == TotalGrains.
func (a *Analyzer) Analyze(ctx context.Context, imageData []byte) (*models.AnalysisResult, error) {
	resized, err := vision.ResizeLongSide(imageData, a.maxLongSide)
	if err != nil {
		return nil, err
	}

	img, err := vision.Decode(resized)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	detections, err := a.engine.Infer(ctx, resized, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	var whole, broken int
	var confSum float64
	for _, d := range detections {
		switch d.Class {
		case models.ClassBrokenGrain:
			broken++
		default:
			whole++
		}
		confSum += d.Confidence
	}

	total := whole + broken
	var brokenPct, avgConf float64
	if total > 0 {
		brokenPct = float64(broken) / float64(total) * 100
	}
	if len(detections) > 0 {
		avgConf = confSum / float64(len(detections))
	}

	annotated, err := vision.Annotate(resized, detections, a.profile)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisResult{
		TotalGrains:        total,
		WholeGrains:        whole,
		BrokenGrains:       broken,
		BrokenPercentage:   round(brokenPct, 2),
		AvgModelConfidence: round(avgConf, 3),
		ProcessedImage:     base64.StdEncoding.EncodeToString(annotated),
	}, nil
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
