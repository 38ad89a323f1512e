// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/jobs"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/storage"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
		Field:   field,
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// FromError converts domain errors into API errors. Unknown errors become a 500 with
// the cause in Details.
func FromError(err error) *APIError {
	var (
		apiErr     *APIError
		parseErr   *logindex.ParseError
		kindErr    *logindex.KindMismatchError
		invalidErr *logindex.ValidationError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &kindErr):
		return &APIError{
			Status:  http.StatusConflict,
			Code:    "INCOMPATIBLE_LOG_TYPES",
			Message: "logs with different index types cannot be compared",
			Details: kindErr.Error(),
		}
	case errors.As(err, &parseErr):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "PARSE_ERROR",
			Message: fmt.Sprintf("invalid %s index value", parseErr.Kind),
			Details: parseErr.Error(),
		}
	case errors.As(err, &invalidErr):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: invalidErr.Error(),
			Field:   invalidErr.Field,
		}
	case errors.Is(err, catalog.ErrLogNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, storage.ErrFileNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, jobs.ErrUnknownJobType):
		return &APIError{Status: http.StatusBadRequest, Code: "UNKNOWN_JOB_TYPE", Message: err.Error()}
	case errors.Is(err, jobs.ErrQueueFull), errors.Is(err, jobs.ErrStopped):
		return NewServiceUnavailableError(err.Error())
	}
	return NewInternalError("An unexpected error occurred", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	} else {
		apiErr = FromError(err)
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
