// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation covering:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Export pipeline throughput and job lifecycle
// - Cache efficiency
// - Saved view churn

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBActivityRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "activity_records_total",
			Help: "Current number of activity records in the store",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Export Pipeline Metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of completed exports",
		},
		[]string{"format", "mode"}, // mode: "sync", "async"
	)

	ExportRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_records",
			Help:    "Number of records per rendered export",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000, 10000},
		},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Duration of export rendering in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"format"},
	)

	ExportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_errors_total",
			Help: "Total number of failed exports",
		},
		[]string{"format", "error_type"}, // error_type: "validation", "render", "capacity"
	)

	ExportRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_rejections_total",
			Help: "Total number of exports rejected by the record cap",
		},
	)

	ExportJobsQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_jobs_queued_total",
			Help: "Total number of exports queued for background processing",
		},
	)

	ExportJobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "export_jobs_in_flight",
			Help: "Current number of export jobs being processed",
		},
	)

	ExportJobRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_job_retries_total",
			Help: "Total number of export job retry attempts",
		},
	)

	ExportFilesCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_files_cleaned_total",
			Help: "Total number of expired export files removed",
		},
	)

	ExportDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_downloads_total",
			Help: "Total number of export file downloads",
		},
		[]string{"result"}, // "ok", "not_found", "forbidden"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "analytics", "views"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Saved View Metrics
	SavedViewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saved_views_created_total",
			Help: "Total number of saved views created",
		},
	)

	SavedViewsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saved_views_deleted_total",
			Help: "Total number of saved views deleted",
		},
	)

	SavedViewsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saved_views_evicted_total",
			Help: "Total number of saved views evicted by the per-user cap",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordExport records a completed or failed export render.
func RecordExport(format, mode string, records int, duration time.Duration, err error) {
	ExportDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err != nil {
		errorType := "render"
		errorMsg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(errorMsg, "validation"), strings.Contains(errorMsg, "not enabled"):
			errorType = "validation"
		case strings.Contains(errorMsg, "exceed"), strings.Contains(errorMsg, "maximum"):
			errorType = "capacity"
		}
		ExportErrors.WithLabelValues(format, errorType).Inc()
		return
	}
	ExportsTotal.WithLabelValues(format, mode).Inc()
	ExportRecords.Observe(float64(records))
}

// RecordExportRejection records an export rejected by the record cap.
func RecordExportRejection() {
	ExportRejections.Inc()
}

// RecordExportQueued records an export handed to the background worker.
func RecordExportQueued() {
	ExportJobsQueued.Inc()
}

// TrackExportJob tracks in-flight background export jobs.
func TrackExportJob(inc bool) {
	if inc {
		ExportJobsInFlight.Inc()
	} else {
		ExportJobsInFlight.Dec()
	}
}

// RecordExportDownload records a download attempt and its outcome.
func RecordExportDownload(result string) {
	ExportDownloads.WithLabelValues(result).Inc()
}

// RecordExportCleanup records removed expired export files.
func RecordExportCleanup(removed int) {
	if removed > 0 {
		ExportFilesCleaned.Add(float64(removed))
	}
}

// RecordCacheAccess records one cache lookup.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordCacheEviction records evicted cache entries.
func RecordCacheEviction(cacheType string, count int64) {
	if count > 0 {
		CacheEvictions.WithLabelValues(cacheType).Add(float64(count))
	}
}

// SetCacheSize sets the current entry count for a cache.
func SetCacheSize(cacheType string, totalKeys int64) {
	CacheSize.WithLabelValues(cacheType).Set(float64(totalKeys))
}

// RecordSavedView records saved view lifecycle events.
func RecordSavedView(created, deleted, evicted int) {
	if created > 0 {
		SavedViewsCreated.Add(float64(created))
	}
	if deleted > 0 {
		SavedViewsDeleted.Add(float64(deleted))
	}
	if evicted > 0 {
		SavedViewsEvicted.Add(float64(evicted))
	}
}
