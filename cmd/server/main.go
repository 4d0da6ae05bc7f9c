// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package main is the entry point for the Activitylens server application.
//
// Activitylens is a self-hosted reporting service over an append-only audit
// activity store. It serves filtered activity timelines, analytics rollups,
// file exports, and per-user saved views through a REST API backed by DuckDB.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from config file and environment variables (Koanf v2)
//  2. Database: Open DuckDB, apply schema migrations, optionally seed mock data
//  3. Analytics: Aggregation service with TTL result cache
//  4. Export pipeline: Badger-backed job store, export service, Watermill worker
//  5. Saved views: In-memory per-user view store
//  6. HTTP Server: Chi router with rate limiting, CORS, and Prometheus metrics
//
// All long-running components run under a suture supervisor tree so that a
// crashing export worker cannot take down the request path.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (ACTIVITYLENS_ prefix, e.g. ACTIVITYLENS_SERVER_PORT)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the export worker and cleanup sweeper
//   - Closes the job store and database
//
// # Example Usage
//
// Development with seeded data:
//
//	export ACTIVITYLENS_DATABASE_PATH=:memory:
//	export ACTIVITYLENS_DATABASE_SEED_MOCK_DATA=true
//	export ACTIVITYLENS_SERVER_ENVIRONMENT=development
//	./activitylens
//
// Production:
//
//	export ACTIVITYLENS_DATABASE_PATH=/data/activity.db
//	export ACTIVITYLENS_EXPORTS_DIR=/data/exports
//	export ACTIVITYLENS_SERVER_CORS_ORIGINS=https://admin.example.com
//	./activitylens
//
// # Port 8459
//
// The default port 8459 has no special meaning beyond avoiding collisions
// with common development ports.
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

	"github.com/tomtom215/activitylens/internal/analytics"
	"github.com/tomtom215/activitylens/internal/api"
	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/database"
	"github.com/tomtom215/activitylens/internal/export"
	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/models"
	"github.com/tomtom215/activitylens/internal/supervisor"
	"github.com/tomtom215/activitylens/internal/supervisor/services"
	"github.com/tomtom215/activitylens/internal/views"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Activitylens with supervisor tree")

	// Apply sensitive-property masking before any request can render
	// properties or exports.
	models.SetRedactionPatterns(cfg.Redaction.RedactionPatterns())
	if !cfg.Redaction.Enabled {
		logging.Warn().Msg("Property redaction is DISABLED; sensitive values will appear in responses and exports")
	}

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("export_dir", cfg.Exports.Dir).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")

	// Initialize database (applies migrations, seeds mock data if enabled)
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Analytics aggregation service with result cache
	analyticsSvc := analytics.New(db, &cfg.Analytics)

	// Export pipeline: job store, service, background worker
	jobs, err := export.NewJobStore(cfg.Exports.JobStorePath, cfg.Exports.StatusTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open export job store")
	}
	defer func() {
		if err := jobs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing export job store")
		}
	}()

	exportSvc, err := export.NewService(db, &cfg.Exports, jobs)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize export service")
	}

	worker, err := export.NewWorker(exportSvc, &cfg.Exports)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize export worker")
	}
	defer func() {
		if err := worker.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing export worker")
		}
	}()

	// Saved views
	viewStore := views.New(&cfg.Views)

	// HTTP surface
	handler := api.NewHandler(db, analyticsSvc, exportSvc, viewStore, cfg)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Job layer: export worker plus the periodic export directory sweeper
	tree.AddJobService(services.NewExportWorkerService(worker))
	logging.Info().Msg("Export worker added to supervisor tree")

	if cfg.Exports.CleanupAutoRun {
		tree.AddJobService(services.NewCleanupService(exportSvc, time.Hour))
		logging.Info().
			Dur("retention", cfg.Exports.CleanupAfter).
			Msg("Export cleanup sweeper added to supervisor tree")
	} else {
		logging.Info().Msg("Export cleanup auto-run disabled")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
