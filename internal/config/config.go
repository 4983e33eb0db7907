package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"sheetimport/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Sheets   SheetsConfig
	Import   ImportConfig
	Notify   NotifyConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. An empty URL selects the
// in-memory task store.
type DatabaseConfig struct {
	URL string
}

// SheetsConfig holds remote spreadsheet settings
type SheetsConfig struct {
	BaseURL      string
	FetchTimeout time.Duration
}

// ImportConfig holds import session settings
type ImportConfig struct {
	MaxUploadBytes int64
	SessionTTL     time.Duration
	DirectoryFile  string
}

// NotifyConfig holds notification rendering settings
type NotifyConfig struct {
	Sender     string
	AppBaseURL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Sheets: SheetsConfig{
			BaseURL:      getEnvOrDefault("SHEETS_BASE_URL", "https://docs.google.com"),
			FetchTimeout: getEnvDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
		},
		Import: ImportConfig{
			MaxUploadBytes: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 10<<20),
			SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", time.Hour),
			DirectoryFile:  getEnvOrDefault("DIRECTORY_FILE", ""),
		},
		Notify: NotifyConfig{
			Sender:     getEnvOrDefault("NOTIFY_SENDER", "noreply@sheetimport.local"),
			AppBaseURL: getEnvOrDefault("APP_BASE_URL", ""),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	u, err := url.Parse(c.Sheets.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("SHEETS_BASE_URL must be an absolute URL")
	}
	if c.Sheets.FetchTimeout <= 0 {
		return errors.ConfigInvalid("FETCH_TIMEOUT must be positive")
	}
	if c.Import.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Import.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
