package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/witsml-explorer/backend/internal/api"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/config"
	"github.com/witsml-explorer/backend/internal/jobs"
	"github.com/witsml-explorer/backend/internal/logging"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/storage"
	"github.com/witsml-explorer/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	configPath := filepath.Join(filepath.Dir(exePath), "WitsmlExplorer.config.xml")
	if p := os.Getenv("WITSML_CONFIG"); p != "" {
		configPath = p
	}

	// Load XML configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.SetLevel(cfg.Advanced.LogLevel)
	logger := logging.New("server")

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	store, err := catalog.NewDuckStore(cfg.Catalog.DatabaseFile, catalog.Options{
		Threads:     cfg.Catalog.Threads,
		MemoryLimit: cfg.Catalog.MemoryLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	if cfg.Catalog.SeedFile != "" {
		seed, err := catalog.LoadSeedFile(cfg.Catalog.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		n, err := seed.Apply(context.Background(), store)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		logger.Infof("seeded %d logs from %s", n, cfg.Catalog.SeedFile)
	}

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	jobMgr := jobs.NewManager(jobs.Options{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
		Timeout:   cfg.JobTimeout(),
	})
	defer jobMgr.Stop()
	jobs.NewService(store, fileStore).Register(jobMgr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background cleanup of finished jobs and old import files
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				jobsRemoved := jobMgr.Cleanup(cfg.JobRetention())
				filesRemoved := fileStore.Cleanup(cfg.JobRetention())
				if jobsRemoved > 0 || filesRemoved > 0 {
					logger.Infof("cleanup removed %d jobs and %d import files", jobsRemoved, filesRemoved)
				}
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Logger = logging.New("echo")

	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		Timeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		BodyLimit:      cfg.Server.BodyLimit,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   allowedOrigins(cfg.Server.AllowOrigins, embeddedMode),
	})

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Catalog:                 store,
		Files:                   fileStore,
		Jobs:                    jobMgr,
		Detector:                logindex.Detector{NormalizeTime: cfg.Comparison.NormalizeTimeIndex},
		Version:                 Version,
		AllowedFileTypes:        strings.Split(cfg.Storage.AllowedFileTypes, ","),
		WebSocketMaxMessageSize: int64(cfg.Advanced.WebSocketMaxMessageSize) * 1024,
	}))

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warnf("failed to register static routes: %v", err)
		} else {
			logger.Info("serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "API only"
	if embeddedMode {
		mode = "Air-Gapped (Embedded)"
	}
	logger.Infof("WITSML Explorer backend %s (built %s), mode %s", Version, BuildTime, mode)
	logger.Infof("config %s, data dir %s, catalog %s", configPath, cfg.GetDataDir(), cfg.Catalog.DatabaseFile)
	logger.Infof("listening on http://%s", cfg.GetServerAddr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// allowedOrigins splits the configured origin list. Development builds without an
// embedded frontend only accept the local dev servers.
func allowedOrigins(configured string, embedded bool) []string {
	if !embedded {
		return []string{
			"http://localhost:5173", "http://127.0.0.1:5173",
			"http://localhost:3000", "http://127.0.0.1:3000",
		}
	}
	var origins []string
	for _, o := range strings.Split(configured, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
