// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError represents a structured API error response. The body always
// carries a `detail` string, which is what the frontend and CLI surface.
type APIError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(detail string, cause error) *APIError {
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", detail, cause)
	}
	return &APIError{
		Status: http.StatusBadRequest,
		Code:   "BAD_REQUEST",
		Detail: detail,
	}
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Code:   "VALIDATION_ERROR",
		Detail: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status: http.StatusNotFound,
		Code:   "NOT_FOUND",
		Detail: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(detail string, cause error) *APIError {
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", detail, cause)
	}
	return &APIError{
		Status: http.StatusInternalServerError,
		Code:   "INTERNAL_ERROR",
		Detail: detail,
	}
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(detail string) *APIError {
	return &APIError{
		Status: http.StatusServiceUnavailable,
		Code:   "SERVICE_UNAVAILABLE",
		Detail: detail,
	}
}

// NewBadGatewayError creates a 502 error for upstream inference failures
func NewBadGatewayError(detail string) *APIError {
	return &APIError{
		Status: http.StatusBadGateway,
		Code:   "UPSTREAM_ERROR",
		Detail: detail,
	}
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status: e.Code,
			Code:   "HTTP_ERROR",
			Detail: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = &APIError{
			Status: http.StatusInternalServerError,
			Code:   "UNKNOWN_ERROR",
			Detail: err.Error(),
		}
	}

	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}
