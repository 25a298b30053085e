// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// InferenceStatus describes whether the remote inference is usable.
type InferenceStatus interface {
	Ready() error
	Workspace() string
	WorkflowID() string
}

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	inference InferenceStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, inference InferenceStatus) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		inference: inference,
	}
}

// HandleHealth returns server health plus inference configuration state.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	payload := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}

	if h.inference != nil {
		payload["roboflow_configured"] = h.inference.Ready() == nil
		payload["workspace_configured"] = h.inference.Workspace() != "" && h.inference.Workspace() != "your-workspace"
		payload["workflow_id"] = h.inference.WorkflowID()
	}

	return c.JSON(http.StatusOK, payload)
}
