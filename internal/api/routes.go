// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Catalog  catalog.Store
	Files    storage.Store
	Jobs     JobService
	Detector logindex.Detector
	Version  string

	// AllowedFileTypes lists accepted import file extensions, empty allows all
	AllowedFileTypes []string
	// WebSocketMaxMessageSize caps inbound WebSocket frames in bytes
	WebSocketMaxMessageSize int64
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Logs      LogHandler
	Compare   CompareHandler
	Import    ImportHandler
	Jobs      JobHandler
	JobStream JobStreamHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Jobs),
		Logs:      NewLogHandler(deps.Catalog),
		Compare:   NewCompareHandler(deps.Catalog, deps.Detector),
		Import:    NewImportHandler(deps.Catalog, deps.Files, deps.AllowedFileTypes),
		Jobs:      NewJobHandler(deps.Jobs),
		JobStream: NewJobStreamHandler(deps.Jobs, deps.WebSocketMaxMessageSize),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Catalog routes
	logGroup := apiGroup.Group("/wells/:wellUid/wellbores/:wellboreUid/logs")
	logGroup.GET("", handlers.Logs.HandleListLogs)
	logGroup.GET("/:logUid", handlers.Logs.HandleGetLog)
	logGroup.PUT("/:logUid", handlers.Logs.HandlePutLog)
	logGroup.DELETE("/:logUid", handlers.Logs.HandleDeleteLog)
	logGroup.GET("/:logUid/curves", handlers.Logs.HandleGetCurves)

	// Comparison and index helpers
	apiGroup.POST("/compare/curves", handlers.Compare.HandleCompareCurves)
	apiGroup.POST("/compare/datetime", handlers.Compare.HandleCompareDateTime)
	apiGroup.POST("/offset/validate", handlers.Compare.HandleValidateOffset)

	// Import files
	importGroup := apiGroup.Group("/import")
	importGroup.POST("/files", handlers.Import.HandleUploadImportFile)
	importGroup.GET("/files", handlers.Import.HandleListImportFiles)
	importGroup.POST("/overlap", handlers.Import.HandleImportOverlap)

	// Jobs
	jobGroup := apiGroup.Group("/jobs")
	jobGroup.GET("", handlers.Jobs.HandleListJobs)
	jobGroup.POST("/:jobType", handlers.Jobs.HandleSubmitJob)
	jobGroup.GET("/:jobId", handlers.Jobs.HandleGetJob)

	RegisterWebSocketRoutes(e, handlers)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/ws/jobs", handlers.JobStream.HandleJobStream)
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	RequestLogging bool
	Timeout        time.Duration
	BodyLimit      string
	EnableCORS     bool
	AllowOrigins   []string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || strings.HasPrefix(path, "/api/jobs/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Timeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: cfg.Timeout,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
			},
			ErrorMessage: "Request timeout - query took too long",
		}))
	}

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
		},
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		origins := cfg.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
