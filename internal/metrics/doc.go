// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

/*
Package metrics provides Prometheus metrics collection for observability.

# Overview

The package instruments:
  - API request latency and throughput
  - Database query performance (DuckDB)
  - Export pipeline throughput, job lifecycle, and cleanup
  - Cache hit/miss rates
  - Saved view churn

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8459/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - activity_records_total: Records in the activity store (gauge)

Export Metrics:
  - exports_total: Completed exports (counter)
    Labels: format, mode (sync, async)
  - export_records: Records per export (histogram)
  - export_duration_seconds: Render duration (histogram)
    Labels: format
  - export_errors_total: Failed exports (counter)
    Labels: format, error_type (validation, render, capacity)
  - export_rejections_total: Exports rejected by the record cap (counter)
  - export_jobs_queued_total: Exports queued for background processing (counter)
  - export_jobs_in_flight: Jobs currently processing (gauge)
  - export_job_retries_total: Job retry attempts (counter)
  - export_files_cleaned_total: Expired export files removed (counter)
  - export_downloads_total: Download attempts (counter)
    Labels: result (ok, not_found, forbidden)

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters)
    Labels: cache_type (analytics, views)
  - cache_entries: Current entries (gauge)
    Labels: cache_type

Saved View Metrics:
  - saved_views_created_total, saved_views_deleted_total,
    saved_views_evicted_total (counters)

System Metrics:
  - app_info: Version and build information (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Uptime (gauge)

# Usage

Record helpers wrap the raw collectors:

	defer func(start time.Time) {
		metrics.RecordDBQuery("SELECT", "activity_log", time.Since(start), err)
	}(time.Now())

Metrics registration uses promauto, so collectors register with the default
registry at package initialization.
*/
package metrics
