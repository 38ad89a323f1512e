// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/models"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// LogHandler serves log headers and curve metadata from the catalog
type LogHandler interface {
	HandleListLogs(c echo.Context) error
	HandleGetLog(c echo.Context) error
	HandlePutLog(c echo.Context) error
	HandleDeleteLog(c echo.Context) error
	HandleGetCurves(c echo.Context) error
}

// CompareHandler handles curve comparison and index helpers
type CompareHandler interface {
	HandleCompareCurves(c echo.Context) error
	HandleCompareDateTime(c echo.Context) error
	HandleValidateOffset(c echo.Context) error
}

// ImportHandler handles import file upload and overlap checks
type ImportHandler interface {
	HandleUploadImportFile(c echo.Context) error
	HandleListImportFiles(c echo.Context) error
	HandleImportOverlap(c echo.Context) error
}

// JobHandler handles job submission and polling
type JobHandler interface {
	HandleSubmitJob(c echo.Context) error
	HandleGetJob(c echo.Context) error
	HandleListJobs(c echo.Context) error
}

// JobStreamHandler pushes job status changes over a WebSocket
type JobStreamHandler interface {
	HandleJobStream(c echo.Context) error
}

// JobService defines the job operations the handlers need
// This allows mocking in tests
type JobService interface {
	Submit(ctx context.Context, jobType models.JobType, payload []byte) (models.JobInfo, error)
	Get(id string) (models.JobInfo, bool)
	List() []models.JobInfo
	Subscribe() (<-chan models.JobInfo, func())
}
