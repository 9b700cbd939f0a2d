// Package config provides YAML-based configuration for the photo cycler.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingDirectory is returned when a required directory does not exist
// and creation is disabled.
var ErrMissingDirectory = errors.New("directory does not exist")

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Cycler  CyclerConfig  `yaml:"cycler"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int    `yaml:"port"`
	BindAddress          string `yaml:"bind_address"`
	ExternalURL          string `yaml:"external_url"` // used in the thing description; derived from the request when empty
	ReadTimeout          int    `yaml:"read_timeout_seconds"`
	WriteTimeout         int    `yaml:"write_timeout_seconds"`
	IdleTimeout          int    `yaml:"idle_timeout_seconds"`
	EnableCORS           bool   `yaml:"enable_cors"`
	EnableMetrics        bool   `yaml:"enable_metrics"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// StorageConfig contains filesystem locations
type StorageConfig struct {
	PhotosDirectory   string `yaml:"photos_directory"`
	StaticDirectory   string `yaml:"static_directory"`
	CurrentName       string `yaml:"current_name"`
	CreateDirectories bool   `yaml:"create_directories"`
}

// CyclerConfig contains timer settings
type CyclerConfig struct {
	UpdateRate  float64 `yaml:"update_rate_seconds"`
	MinPeriodMs int     `yaml:"min_period_ms"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 8888,
			BindAddress:          "0.0.0.0",
			ReadTimeout:          30,
			WriteTimeout:         30,
			IdleTimeout:          120,
			EnableCORS:           true,
			EnableMetrics:        true,
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			PhotosDirectory:   "./photos",
			StaticDirectory:   "./static",
			CurrentName:       "current.jpg",
			CreateDirectories: true,
		},
		Cycler: CyclerConfig{
			UpdateRate:  5,
			MinPeriodMs: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config.finish(filepath.Dir(configPath))
	}

	return loadFile(configPath)
}

// LoadConfigIfExists loads configPath when it exists and otherwise returns the
// defaults without writing anything. Relative paths in the defaults resolve
// against the working directory.
func LoadConfigIfExists(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig().finish(".")
	}

	return loadFile(configPath)
}

func loadFile(configPath string) (*AppConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep sensible values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config.finish(filepath.Dir(configPath))
}

// finish applies environment overrides, resolves relative paths against
// configDir and validates the result.
func (c *AppConfig) finish(configDir string) (*AppConfig, error) {
	// Apply environment variable overrides
	c.applyEnvironmentOverrides()

	// Resolve relative paths
	c.resolvePaths(configDir)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Photo Cycler configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if rate := c.Cycler.UpdateRate; math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fmt.Errorf("cycler.update_rate_seconds must be a finite number >= 0, got %g", rate)
	}
	if c.Cycler.MinPeriodMs <= 0 {
		return fmt.Errorf("cycler.min_period_ms must be > 0, got %d", c.Cycler.MinPeriodMs)
	}
	if c.Storage.PhotosDirectory == "" || c.Storage.StaticDirectory == "" {
		return fmt.Errorf("storage.photos_directory and storage.static_directory are required")
	}
	if c.Storage.CurrentName == "" || filepath.Base(c.Storage.CurrentName) != c.Storage.CurrentName {
		return fmt.Errorf("storage.current_name must be a plain file name, got %q", c.Storage.CurrentName)
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

	if dir := os.Getenv("PHOTOS_DIR"); dir != "" {
		c.Storage.PhotosDirectory = dir
	}

	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		c.Storage.StaticDirectory = dir
	}

	if rate := os.Getenv("UPDATE_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			c.Cycler.UpdateRate = r
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if abs, err := filepath.Abs(configDir); err == nil {
		configDir = abs
	}
	if !filepath.IsAbs(c.Storage.PhotosDirectory) {
		c.Storage.PhotosDirectory = filepath.Join(configDir, c.Storage.PhotosDirectory)
	}
	if !filepath.IsAbs(c.Storage.StaticDirectory) {
		c.Storage.StaticDirectory = filepath.Join(configDir, c.Storage.StaticDirectory)
	}
}

// SetDirectories overrides both directories, resolving them against the
// working directory. Empty values keep the configured paths.
func (c *AppConfig) SetDirectories(photos, static string) error {
	if photos != "" {
		abs, err := filepath.Abs(photos)
		if err != nil {
			return fmt.Errorf("resolving photos path: %w", err)
		}
		c.Storage.PhotosDirectory = abs
	}
	if static != "" {
		abs, err := filepath.Abs(static)
		if err != nil {
			return fmt.Errorf("resolving static path: %w", err)
		}
		c.Storage.StaticDirectory = abs
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// MinPeriod returns the shortest timer period.
func (c *AppConfig) MinPeriod() time.Duration {
	return time.Duration(c.Cycler.MinPeriodMs) * time.Millisecond
}

// EnsureDirectories checks the photos and static directories, creating them
// when create is set.
func (c *AppConfig) EnsureDirectories(create bool) error {
	dirs := []string{
		c.Storage.PhotosDirectory,
		c.Storage.StaticDirectory,
	}

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat directory %s: %w", dir, err)
		}
		if !create {
			return fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
