// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	BackendURL              string
	AutoRefreshInterval     time.Duration
	DatabasePath            string
	PresetsPath             string
	OccupancyAlertThreshold float64
	LogFile                 string
	LogLevel                string
}

// Default values
const (
	defaultBackendURL              = "https://hospital-analytics.onrender.com"
	defaultAutoRefreshInterval     = 60 * time.Second
	defaultOccupancyAlertThreshold = 90.0
	defaultLogLevel                = "info"

	appDirName = "hospital-dashboard"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		BackendURL:              strings.TrimRight(getEnvString("BACKEND_URL", defaultBackendURL), "/"),
		AutoRefreshInterval:     getEnvDuration("AUTO_REFRESH_INTERVAL", defaultAutoRefreshInterval),
		DatabasePath:            getEnvString("DATABASE_PATH", getDefaultPath("history.db")),
		PresetsPath:             getEnvString("PRESETS_PATH", getDefaultPath("presets.json")),
		OccupancyAlertThreshold: getEnvFloat("OCCUPANCY_ALERT_THRESHOLD", defaultOccupancyAlertThreshold),
		LogFile:                 getEnvString("LOG_FILE", ""),
		LogLevel:                getEnvString("LOG_LEVEL", defaultLogLevel),
	}

	if err := validateBackendURL(cfg.BackendURL); err != nil {
		return nil, err
	}

	if cfg.AutoRefreshInterval <= 0 {
		return nil, fmt.Errorf("AUTO_REFRESH_INTERVAL must be positive, got %v", cfg.AutoRefreshInterval)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure presets directory exists
	if err := ensureDir(filepath.Dir(cfg.PresetsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AlertsEnabled reports whether occupancy alerts are configured.
func (c *Config) AlertsEnabled() bool {
	return c.OccupancyAlertThreshold > 0
}

// validateBackendURL requires an absolute http(s) URL.
func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid BACKEND_URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL %q: missing host", raw)
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory location
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultPath returns name inside the application config directory.
func getDefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
// A trailing "%" is ignored.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		value = strings.TrimSuffix(strings.TrimSpace(value), "%")
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
