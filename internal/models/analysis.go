package models

// GrainClass identifies a grain category returned by the inference model.
type GrainClass string

const (
	ClassWholeGrain  GrainClass = "whole_grain"
	ClassBrokenGrain GrainClass = "broken_grain"
)

// Detection is a single grain found by the inference model.
// The bounding box is in corner form, clamped to the image bounds.
type Detection struct {
	Class      GrainClass `json:"class"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"` // x1, y1, x2, y2
}

// AnalysisResult is the payload returned by POST /analyze.
// Invariant: WholeGrains + BrokenGrains == TotalGrains.
type AnalysisResult struct {
	TotalGrains        int     `json:"total_grains"`
	WholeGrains        int     `json:"whole_grains"`
	BrokenGrains       int     `json:"broken_grains"`
	BrokenPercentage   float64 `json:"broken_percentage"`
	AvgModelConfidence float64 `json:"avg_model_confidence"`
	ProcessedImage     string  `json:"processed_image"` // base64 JPEG with boxes drawn
}
