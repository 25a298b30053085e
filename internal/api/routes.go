// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/riceguard/backend/internal/history"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Analyzer  Analyzer
	Inference InferenceStatus
	History   *history.Manager
	Version   string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Analyze AnalyzeHandler
	History HistoryHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Inference),
		Analyze: NewAnalyzeHandler(deps.Analyzer, deps.History),
		History: NewHistoryHandler(deps.History),
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
// The /analyze and /health paths are kept at the root for compatibility with
// existing clients; the history endpoints live under /api.
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)
	e.POST("/analyze", handlers.Analyze.HandleAnalyze)

	historyGroup := e.Group("/api/analyses")
	historyGroup.GET("", handlers.History.HandleListAnalyses)
	historyGroup.GET("/msgpack", handlers.History.HandleListAnalysesMsgpack)
	historyGroup.GET("/:id", handlers.History.HandleGetAnalysis)
}
