// handlers_history.go - Recent analysis listing handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/riceguard/backend/internal/history"
	"github.com/vmihailenco/msgpack/v5"
)

// defaultHistoryLimit bounds the list endpoints unless the caller asks for less.
const defaultHistoryLimit = 50

// HistoryHandlerImpl implements the HistoryHandler interface
type HistoryHandlerImpl struct {
	history *history.Manager
}

// NewHistoryHandler creates a new history handler instance
func NewHistoryHandler(hist *history.Manager) HistoryHandler {
	return &HistoryHandlerImpl{history: hist}
}

// HandleListAnalyses returns recent analysis records as JSON, newest first.
func (h *HistoryHandlerImpl) HandleListAnalyses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.history.List(listLimit(c)))
}

// HandleListAnalysesMsgpack returns the same records msgpack-encoded, which
// the dashboard uses to refresh cheaply.
func (h *HistoryHandlerImpl) HandleListAnalysesMsgpack(c echo.Context) error {
	data, err := msgpack.Marshal(h.history.List(listLimit(c)))
	if err != nil {
		return NewInternalError("failed to encode records", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleGetAnalysis returns a single record by ID.
func (h *HistoryHandlerImpl) HandleGetAnalysis(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	record, ok := h.history.Get(id)
	if !ok {
		return NewNotFoundError("analysis", id)
	}

	return c.JSON(http.StatusOK, record)
}

func listLimit(c echo.Context) int {
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultHistoryLimit
}
