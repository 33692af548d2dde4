// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, scan queue) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the ingest service.
type Config struct {

	// Server settings
	AdminAddr   string `env:"ADMIN_ADDR"   envDefault:":8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationsPath is the filesystem path to the SQL migrations directory.
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis), used only for metadata-response caching.
	RedisURL string `env:"REDIS_URL,required"`

	// Metadata catalog client (Bangumi-compatible).
	BangumiAPIKey string `env:"BANGUMI_API_KEY"`

	// Scan pipeline / watcher / scheduler tuning.
	WatchDebounce        time.Duration `env:"WATCH_DEBOUNCE"          envDefault:"500ms"`
	MetadataHTTPTimeout  time.Duration `env:"METADATA_HTTP_TIMEOUT"   envDefault:"10s"`
	ScanHistoryRetention time.Duration `env:"SCAN_HISTORY_RETENTION"  envDefault:"24h"`
	ShutdownGrace        time.Duration `env:"SHUTDOWN_GRACE"          envDefault:"30s"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
