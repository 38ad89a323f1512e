// handlers_jobs.go - Job submission and polling handlers
package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/models"
)

// JobHandlerImpl implements the JobHandler interface
type JobHandlerImpl struct {
	jobs JobService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobService) JobHandler {
	return &JobHandlerImpl{jobs: jobs}
}

// HandleSubmitJob validates and queues a job. The body is the job payload.
func (h *JobHandlerImpl) HandleSubmitJob(c echo.Context) error {
	jobType := c.Param("jobType")
	if jobType == "" {
		return NewValidationError("jobType")
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("Failed to read request body", err)
	}
	if len(strings.TrimSpace(string(payload))) == 0 {
		return NewValidationError("payload")
	}

	info, err := h.jobs.Submit(c.Request().Context(), models.JobType(jobType), payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleGetJob returns the current state of a job, including its report once finished
func (h *JobHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}
	info, ok := h.jobs.Get(id)
	if !ok {
		return NewNotFoundError("Job", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleListJobs returns all known jobs, newest first. The optional status query
// parameter filters by status.
func (h *JobHandlerImpl) HandleListJobs(c echo.Context) error {
	status := models.JobStatus(c.QueryParam("status"))
	list := make([]models.JobInfo, 0)
	for _, job := range h.jobs.List() {
		if status != "" && job.Status != status {
			continue
		}
		list = append(list, job)
	}
	return c.JSON(http.StatusOK, list)
}
