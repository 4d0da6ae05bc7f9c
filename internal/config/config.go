// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package config provides layered configuration loading for Activitylens.
//
// Configuration sources, in increasing priority:
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/activitylens/internal/models"
)

// Config is the root configuration for the application.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	API       APIConfig       `koanf:"api"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Exports   ExportsConfig   `koanf:"exports"`
	Views     ViewsConfig     `koanf:"views"`
	Redaction RedactionConfig `koanf:"redaction"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// Debug includes error details such as stack context in API error
	// responses. Never enable in production.
	Debug bool `koanf:"debug"`
}

// DatabaseConfig holds DuckDB settings for the activity store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()

	// SeedMockData loads a small synthetic activity set on startup.
	// Development only.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// APIConfig holds pagination bounds for listing endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// AnalyticsConfig holds aggregation and caching settings.
//
// Colors maps event tags to display colors; events without a configured
// color fall back to semantic keyword matching and then palette rotation.
type AnalyticsConfig struct {
	CacheTTL        time.Duration     `koanf:"cache_ttl"`
	TimelineMaxDays int               `koanf:"timeline_max_days"`
	HeatmapDays     int               `koanf:"heatmap_days"`
	AnomalyWindow   int               `koanf:"anomaly_window_days"`
	TopUsersLimit   int               `koanf:"top_users_limit"`
	Colors          map[string]string `koanf:"colors"`
}

// ExportsConfig holds export pipeline settings.
//
// MaxRecords is a hard cap: filters matching more records are rejected,
// never truncated. QueueThreshold decides the synchronous/asynchronous
// split. Fields under Job* control the background job runner.
type ExportsConfig struct {
	Dir            string   `koanf:"dir"`
	Formats        []string `koanf:"formats"`
	Columns        []string `koanf:"columns"`
	MaxRecords     int      `koanf:"max_records"`
	QueueThreshold int      `koanf:"queue_threshold"`

	JobStorePath string        `koanf:"job_store_path"`
	JobTimeout   time.Duration `koanf:"job_timeout"`
	JobTries     int           `koanf:"job_tries"`
	StatusTTL    time.Duration `koanf:"status_ttl"`

	CleanupAfter   time.Duration `koanf:"cleanup_after"`
	CleanupAutoRun bool          `koanf:"cleanup_auto_run"`

	// DownloadBaseURL prefixes generated download links, e.g.
	// "/api/v1/exports/download".
	DownloadBaseURL string `koanf:"download_base_url"`
}

// ViewsConfig holds saved-view store settings.
type ViewsConfig struct {
	MaxPerUser int           `koanf:"max_per_user"`
	TTL        time.Duration `koanf:"ttl"`
}

// RedactionConfig controls masking of sensitive property values in
// displays and exports. Disabling turns masking off entirely.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Patterns []string `koanf:"patterns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DefaultColumns is the export column order used when none is configured.
var DefaultColumns = []string{"id", "date_time", "causer", "event", "subject", "description", "changes"}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8459,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			Environment:     "development",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			Debug:           false,
		},
		Database: DatabaseConfig{
			Path:         "/data/activitylens.duckdb",
			MaxMemory:    "2GB",
			Threads:      0,
			SeedMockData: false,
		},
		API: APIConfig{
			DefaultPageSize: 25,
			MaxPageSize:     100,
		},
		Analytics: AnalyticsConfig{
			CacheTTL:        time.Hour,
			TimelineMaxDays: 90,
			HeatmapDays:     365,
			AnomalyWindow:   30,
			TopUsersLimit:   10,
			Colors:          map[string]string{},
		},
		Exports: ExportsConfig{
			Dir:             "/data/exports",
			Formats:         []string{"csv", "json", "xlsx", "pdf"},
			Columns:         DefaultColumns,
			MaxRecords:      10000,
			QueueThreshold:  1000,
			JobStorePath:    "/data/export-jobs",
			JobTimeout:      5 * time.Minute,
			JobTries:        3,
			StatusTTL:       24 * time.Hour,
			CleanupAfter:    24 * time.Hour,
			CleanupAutoRun:  true,
			DownloadBaseURL: "/api/v1/exports/download",
		},
		Views: ViewsConfig{
			MaxPerUser: 10,
			TTL:        30 * 24 * time.Hour,
		},
		Redaction: RedactionConfig{
			Enabled:  true,
			Patterns: models.DefaultRedactionPatterns,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Analytics.CacheTTL < 0 {
		return fmt.Errorf("analytics.cache_ttl must not be negative")
	}
	if c.Analytics.TimelineMaxDays < 1 {
		return fmt.Errorf("analytics.timeline_max_days must be positive, got %d", c.Analytics.TimelineMaxDays)
	}
	if c.Analytics.HeatmapDays < 1 {
		return fmt.Errorf("analytics.heatmap_days must be positive, got %d", c.Analytics.HeatmapDays)
	}
	if c.Exports.MaxRecords < 1 {
		return fmt.Errorf("exports.max_records must be positive, got %d", c.Exports.MaxRecords)
	}
	if c.Exports.QueueThreshold > c.Exports.MaxRecords {
		return fmt.Errorf("exports.queue_threshold (%d) must be <= exports.max_records (%d)",
			c.Exports.QueueThreshold, c.Exports.MaxRecords)
	}
	if c.Exports.JobTries < 1 {
		return fmt.Errorf("exports.job_tries must be positive, got %d", c.Exports.JobTries)
	}
	if len(c.Exports.Formats) == 0 {
		return fmt.Errorf("exports.formats must not be empty")
	}
	for _, f := range c.Exports.Formats {
		switch f {
		case "csv", "json", "xlsx", "pdf":
		default:
			return fmt.Errorf("exports.formats contains unknown format %q", f)
		}
	}
	if c.Views.MaxPerUser < 1 {
		return fmt.Errorf("views.max_per_user must be positive, got %d", c.Views.MaxPerUser)
	}
	if c.Redaction.Enabled && len(c.Redaction.Patterns) == 0 {
		return fmt.Errorf("redaction.patterns must not be empty when redaction is enabled")
	}
	return nil
}

// RedactionPatterns returns the key patterns to mask, or nil when
// redaction is disabled.
func (c *RedactionConfig) RedactionPatterns() []string {
	if !c.Enabled {
		return nil
	}
	return c.Patterns
}

// FormatEnabled reports whether an export format is enabled in configuration.
func (c *ExportsConfig) FormatEnabled(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}
