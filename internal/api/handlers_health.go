// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/models"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	jobs    JobService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, jobs JobService) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		jobs:    jobs,
	}
}

// HandleHealth returns server health status with a count of unfinished jobs
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	pending := 0
	if h.jobs != nil {
		for _, job := range h.jobs.List() {
			if job.Status == models.JobStatusOrdered || job.Status == models.JobStatusStarted {
				pending++
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"version":     h.version,
		"pendingJobs": pending,
	})
}
