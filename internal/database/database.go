// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package database provides DuckDB-backed access to the append-only activity
// store: filtered listing with pagination, aggregate analytics queries, and
// the actor resolver registry for polymorphic causer/subject references.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn      *sql.DB
	cfg       *config.DatabaseConfig
	resolvers *ResolverRegistry

	// jsonAvailable tracks whether the json extension loaded; property-key
	// filters degrade to a substring match when it did not.
	jsonAvailable bool
}

// New creates a new database connection and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network
	// environments. The json extension is loaded explicitly below.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:          conn,
		cfg:           cfg,
		jsonAvailable: true,
	}
	db.resolvers = NewResolverRegistry(db)

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.SeedMockData {
		if err := db.seedMockData(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Mock data seeding failed")
		}
	}

	return db, nil
}

// configureConnectionPool tunes the sql.DB pool. DuckDB is embedded, so a
// small pool is enough; connections share the same database instance.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(0)
}

// initialize loads extensions and creates tables.
func (db *DB) initialize() error {
	db.loadJSONExtension()

	if err := db.createTables(); err != nil {
		return err
	}

	return nil
}

// loadJSONExtension loads the DuckDB json extension used by property-key
// filters. Failure is not fatal: property-key filters fall back to a
// substring match on the raw document.
func (db *DB) loadJSONExtension() {
	for _, stmt := range []string{"INSTALL json", "LOAD json"} {
		if _, err := db.conn.Exec(stmt); err != nil {
			logging.Warn().Err(err).Str("statement", stmt).Msg("JSON extension unavailable")
			db.jsonAvailable = false
			return
		}
	}
}

// IsJSONAvailable returns whether the json extension is available.
func (db *DB) IsJSONAvailable() bool {
	return db.jsonAvailable
}

// createTables creates the activity store schema.
func (db *DB) createTables() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS activities_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS activities (
			id BIGINT PRIMARY KEY DEFAULT nextval('activities_id_seq'),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			event TEXT NOT NULL DEFAULT '',
			causer_type TEXT,
			causer_id BIGINT,
			subject_type TEXT,
			subject_id BIGINT,
			properties TEXT,
			description TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS actors (
			actor_type TEXT NOT NULL,
			actor_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (actor_type, actor_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_event ON activities(event)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_causer ON activities(causer_type, causer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_subject ON activities(subject_type, subject_id)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Resolvers returns the actor resolver registry.
func (db *DB) Resolvers() *ResolverRegistry {
	return db.resolvers
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
