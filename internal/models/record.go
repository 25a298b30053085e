package models

import "time"

// AnalysisRecord is an in-memory summary of a completed analysis.
// The processed image is intentionally not retained here.
type AnalysisRecord struct {
	ID                 string    `json:"id" msgpack:"id"`
	FileName           string    `json:"fileName" msgpack:"fileName"`
	FileSize           int64     `json:"fileSize" msgpack:"fileSize"`
	TotalGrains        int       `json:"totalGrains" msgpack:"totalGrains"`
	WholeGrains        int       `json:"wholeGrains" msgpack:"wholeGrains"`
	BrokenGrains       int       `json:"brokenGrains" msgpack:"brokenGrains"`
	BrokenPercentage   float64   `json:"brokenPercentage" msgpack:"brokenPercentage"`
	AvgModelConfidence float64   `json:"avgModelConfidence" msgpack:"avgModelConfidence"`
	DurationMs         int64     `json:"durationMs" msgpack:"durationMs"`
	AnalyzedAt         time.Time `json:"analyzedAt" msgpack:"analyzedAt"`
}
