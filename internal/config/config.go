// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package config provides configuration management for AddonSync.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//
//  1. Built-in defaults
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (ADDONSYNC_ prefix, "__" as level delimiter,
//     e.g. ADDONSYNC_SERVER__PORT=8466)
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Stremio StremioConfig `koanf:"stremio"`
	Sync    SyncConfig    `koanf:"sync"`
	Storage StorageConfig `koanf:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// CORSOrigins lists allowed origins for the trigger/status API.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is the per-IP request budget per minute.
	RateLimit int `koanf:"rate_limit" validate:"min=1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// StremioConfig holds settings for the external addon-collection service.
type StremioConfig struct {
	// APIURL is the base URL of the Stremio-compatible API.
	APIURL string `koanf:"api_url" validate:"required,url"`

	// Timeout bounds every collection get/set call. Collection call
	// timeouts are fatal to the sync attempt that hit them.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// SyncConfig holds reconciliation engine settings.
type SyncConfig struct {
	// Interval is the scheduled full-sync period. Zero disables the
	// scheduler; manual triggers still work.
	Interval time.Duration `koanf:"interval"`

	// GroupConcurrency bounds parallel user syncs during a group sync.
	GroupConcurrency int `koanf:"group_concurrency" validate:"min=1"`

	// ManifestTimeout bounds each manifest fetch. On timeout the fetch
	// degrades to stored fallback data instead of failing the sync.
	ManifestTimeout time.Duration `koanf:"manifest_timeout" validate:"gt=0"`

	// ManifestConcurrency bounds parallel manifest fetches per sync.
	ManifestConcurrency int `koanf:"manifest_concurrency" validate:"min=1"`

	// ManifestRateLimit is the sustained manifest fetch rate (req/s)
	// shared across all syncs.
	ManifestRateLimit float64 `koanf:"manifest_rate_limit" validate:"gt=0"`

	// RetryAttempts and RetryDelay shape the backoff applied to
	// retryable collection calls.
	RetryAttempts int           `koanf:"retry_attempts" validate:"min=1"`
	RetryDelay    time.Duration `koanf:"retry_delay" validate:"gt=0"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Path is the BadgerDB data directory.
	Path string `koanf:"path" validate:"required"`

	// Secret derives the AES key protecting stored credentials.
	Secret string `koanf:"secret" validate:"required,min=16"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8466,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Stremio: StremioConfig{
			APIURL:  "https://api.strem.io",
			Timeout: 30 * time.Second,
		},
		Sync: SyncConfig{
			Interval:            0, // scheduler off unless configured
			GroupConcurrency:    4,
			ManifestTimeout:     10 * time.Second,
			ManifestConcurrency: 5,
			ManifestRateLimit:   10,
			RetryAttempts:       3,
			RetryDelay:          time.Second,
		},
		Storage: StorageConfig{
			Path: "/data/addonsync",
		},
	}
}

// Validate checks the configuration for structural errors. Called once
// after Load; the engine assumes a validated config.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}
