// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package config loads the layered runtime configuration: built-in
// defaults, then an optional YAML file, then environment variables.
// ENV > file > defaults.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/auditorium/internal/export/delivery"
)

// Config is the full runtime configuration tree.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Export    ExportConfig    `koanf:"export"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	SMTP      SMTPConfig      `koanf:"smtp"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// APIConfig bounds list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig configures where audit events come from. SeedPath is a JSON
// file loaded into memory at startup; when DuckDB is enabled the events are
// also persisted there and reloaded on restart.
type StoreConfig struct {
	SeedPath      string `koanf:"seed_path"`
	DuckDBEnabled bool   `koanf:"duckdb_enabled"`
	DuckDBPath    string `koanf:"duckdb_path"`
	DuckDBMemory  string `koanf:"duckdb_max_memory"`
}

// ExportConfig configures export delivery.
type ExportConfig struct {
	// OutputDir receives rendered artifacts; empty disables writing.
	OutputDir string `koanf:"output_dir"`
	// JournalDir holds the badger delivery journal; empty runs in-memory.
	JournalDir string `koanf:"journal_dir"`
}

// SchedulerConfig configures recurring exports.
type SchedulerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	CheckInterval    time.Duration `koanf:"check_interval"`
	ExecutionTimeout time.Duration `koanf:"execution_timeout"`
	Timezone         string        `koanf:"timezone"`
}

// SMTPConfig is the mail relay for scheduled exports. It aliases the
// delivery package's type so the sender can be built straight from config.
type SMTPConfig = delivery.SMTPConfig

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("config: default page size must be positive")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("config: max page size %d below default %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Store.DuckDBEnabled && c.Store.DuckDBPath == "" {
		return fmt.Errorf("config: duckdb enabled without a path")
	}
	if c.Scheduler.Enabled {
		if c.Scheduler.CheckInterval <= 0 {
			return fmt.Errorf("config: scheduler check interval must be positive")
		}
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("config: scheduler timezone: %w", err)
		}
	}
	if c.SMTP.Host != "" {
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("config: smtp port %d out of range", c.SMTP.Port)
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("config: smtp host set without a from address")
		}
	}
	return nil
}

// MailEnabled reports whether a relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}
