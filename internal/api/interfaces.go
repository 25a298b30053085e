// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/riceguard/backend/internal/models"
)

// AnalyzeHandler handles image analysis requests
type AnalyzeHandler interface {
	HandleAnalyze(c echo.Context) error
}

// HistoryHandler handles recent-analysis listing
type HistoryHandler interface {
	HandleListAnalyses(c echo.Context) error
	HandleListAnalysesMsgpack(c echo.Context) error
	HandleGetAnalysis(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Analyzer defines the interface needed from the analysis pipeline.
// This allows mocking in tests.
type Analyzer interface {
	Ready() error
	Analyze(ctx context.Context, imageData []byte) (*models.AnalysisResult, error)
}
