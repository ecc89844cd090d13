// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

// Package main is the entry point for the AddonSync server.
//
// AddonSync centrally manages Stremio addon collections for groups of
// users: operators curate an ordered addon list per group, and the
// server reconciles each member's live collection against it while
// preserving position-locked protected addons.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, config.yaml,
//     ADDONSYNC_* environment variables)
//  2. Storage: BadgerDB for users, groups, and collection snapshots
//  3. Stremio client: collection get/set behind a circuit breaker
//  4. Manifest resolver: rate-limited fetches with typed degradation
//  5. Sync manager: reconciliation engine plus optional scheduler
//  6. HTTP server: sync triggers, status polling, health, metrics
//
// # Configuration
//
// All settings can be supplied via config.yaml or environment
// variables with the ADDONSYNC_ prefix, using "__" to separate levels:
//
//	export ADDONSYNC_STORAGE__SECRET=$(openssl rand -base64 24)
//	export ADDONSYNC_SERVER__PORT=8466
//	export ADDONSYNC_SYNC__INTERVAL=12h
//	./addonsync
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (configurable timeout)
//   - Stops the sync scheduler and closes the database
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strmforge/addonsync/internal/api"
	"github.com/strmforge/addonsync/internal/config"
	"github.com/strmforge/addonsync/internal/logging"
	"github.com/strmforge/addonsync/internal/manifest"
	"github.com/strmforge/addonsync/internal/store"
	"github.com/strmforge/addonsync/internal/stremio"
	syncengine "github.com/strmforge/addonsync/internal/sync"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger for config errors; config not yet available.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("stremio_api", cfg.Stremio.APIURL).
		Str("storage_path", cfg.Storage.Path).
		Msg("Starting AddonSync")

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	encryptor, err := config.NewCredentialEncryptor(cfg.Storage.Secret)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize credential encryption")
	}

	client := stremio.NewCircuitBreakerClient(stremio.NewClient(cfg.Stremio.APIURL, cfg.Stremio.Timeout, stremio.RetryConfig{
		Attempts: cfg.Sync.RetryAttempts,
		Delay:    cfg.Sync.RetryDelay,
	}))
	if err := client.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to reach Stremio API (will retry on demand)")
	} else {
		logging.Info().Msg("Connected to Stremio API")
	}

	resolver := manifest.NewResolver(manifest.Options{
		Timeout:   cfg.Sync.ManifestTimeout,
		RateLimit: cfg.Sync.ManifestRateLimit,
		Burst:     cfg.Sync.ManifestConcurrency,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := syncengine.NewManager(db, client, resolver, encryptor, cfg)
	if err := manager.Start(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start sync manager")
	}
	defer func() {
		if err := manager.Stop(); err != nil {
			logging.Error().Err(err).Msg("Error stopping sync manager")
		}
	}()

	router := api.NewRouter(api.NewHandler(manager, version), &api.MiddlewareConfig{
		CORSAllowedOrigins:   cfg.Server.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.Server.RateLimit,
		RateLimitWindow:      time.Minute,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
