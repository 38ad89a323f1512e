// Package config provides XML-based configuration management for air-gapped deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"WitsmlExplorer"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Curve catalog configuration
	Catalog CatalogConfig `xml:"Catalog"`

	// Log comparison behaviour
	Comparison ComparisonConfig `xml:"Comparison"`

	// Background job settings
	Jobs JobsConfig `xml:"Jobs"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	AllowedFileTypes string `xml:"AllowedFileTypes"`
}

// CatalogConfig locates the DuckDB catalog and its optional seed file
type CatalogConfig struct {
	DatabaseFile string `xml:"DatabaseFile"`
	SeedFile     string `xml:"SeedFile"`
	Threads      int    `xml:"DuckDBThreads"`
	MemoryLimit  string `xml:"DuckDBMemoryLimit"`
}

// ComparisonConfig tunes the curve index mismatch detector
type ComparisonConfig struct {
	// NormalizeTimeIndex compares date time indexes by instant instead of by text
	NormalizeTimeIndex bool `xml:"NormalizeTimeIndex"`
}

// JobsConfig sizes the background job pool
type JobsConfig struct {
	Workers                int `xml:"Workers"`
	QueueSize              int `xml:"QueueSize"`
	TimeoutMinutes         int `xml:"TimeoutMinutes"`
	RetentionMinutes       int `xml:"RetentionMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "100M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			AllowedFileTypes: ".csv,.txt",
		},
		Catalog: CatalogConfig{
			DatabaseFile: "./data/catalog.duckdb",
			SeedFile:     "",
			Threads:      4,
			MemoryLimit:  "1GB",
		},
		Comparison: ComparisonConfig{
			NormalizeTimeIndex: false,
		},
		Jobs: JobsConfig{
			Workers:                2,
			QueueSize:              64,
			TimeoutMinutes:         10,
			RetentionMinutes:       60,
			CleanupIntervalMinutes: 5,
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			EnableRequestLogging:    true,
			WebSocketMaxMessageSize: 64,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- WITSML Explorer Backend Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR moves every directory that still sits under the default data directory
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		defaults := DefaultConfig()
		if c.Storage.UploadsDirectory == defaults.Storage.UploadsDirectory {
			c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
		}
		if c.Catalog.DatabaseFile == defaults.Catalog.DatabaseFile {
			c.Catalog.DatabaseFile = filepath.Join(dataDir, "catalog.duckdb")
		}
		c.Storage.DataDirectory = dataDir
	}

	if level := os.Getenv("WITSML_LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Catalog.DatabaseFile,
		&c.Catalog.SeedFile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// JobTimeout is the per-job run limit, zero when unlimited.
func (c *AppConfig) JobTimeout() time.Duration {
	return time.Duration(c.Jobs.TimeoutMinutes) * time.Minute
}

// JobRetention is how long finished jobs and import files are kept.
func (c *AppConfig) JobRetention() time.Duration {
	return time.Duration(c.Jobs.RetentionMinutes) * time.Minute
}

// CleanupInterval is the period of the retention sweep.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Jobs.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Jobs.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}
	if c.Catalog.DatabaseFile != "" {
		dirs = append(dirs, filepath.Dir(c.Catalog.DatabaseFile))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
