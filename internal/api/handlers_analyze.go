// handlers_analyze.go - Image analysis handler
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/riceguard/backend/internal/history"
	"github.com/riceguard/backend/internal/inference"
	"github.com/riceguard/backend/internal/vision"
)

// AnalyzeHandlerImpl implements the AnalyzeHandler interface
type AnalyzeHandlerImpl struct {
	analyzer Analyzer
	history  *history.Manager
}

// NewAnalyzeHandler creates a new analyze handler instance. The history
// manager is optional; when nil, results are simply not recorded.
func NewAnalyzeHandler(analyzer Analyzer, hist *history.Manager) AnalyzeHandler {
	return &AnalyzeHandlerImpl{
		analyzer: analyzer,
		history:  hist,
	}
}

// HandleAnalyze accepts a multipart image under field name "file", runs the
// analysis pipeline and returns the metrics plus the annotated image.
func (h *AnalyzeHandlerImpl) HandleAnalyze(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	if err := h.analyzer.Ready(); err != nil {
		return NewServiceUnavailableError(err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	started := time.Now()
	result, err := h.analyzer.Analyze(c.Request().Context(), imageData)
	if err != nil {
		return mapAnalysisError(err)
	}

	if h.history != nil {
		h.history.Add(file.Filename, file.Size, result, time.Since(started))
	}

	return c.JSON(http.StatusOK, result)
}

// mapAnalysisError converts pipeline failures into API errors: undecodable
// inputs are the caller's fault, upstream inference failures are a bad
// gateway, everything else is internal.
func mapAnalysisError(err error) *APIError {
	var upstream *inference.UpstreamError
	if errors.As(err, &upstream) {
		return NewBadGatewayError(upstream.Error())
	}
	if errors.Is(err, vision.ErrInvalidImage) {
		return NewBadRequestError("invalid image", err)
	}
	return NewInternalError("analysis failed", err)
}
