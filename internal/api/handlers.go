// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/activitylens/internal/analytics"
	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/database"
	"github.com/tomtom215/activitylens/internal/export"
	"github.com/tomtom215/activitylens/internal/views"
)

// Handler bundles the service dependencies every endpoint reaches for.
type Handler struct {
	db        *database.DB
	analytics *analytics.Service
	exports   *export.Service
	views     *views.Store
	cfg       *config.Config
	startTime time.Time
}

// NewHandler creates the API handler set over the given services.
func NewHandler(db *database.DB, analyticsSvc *analytics.Service, exportSvc *export.Service, viewStore *views.Store, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		analytics: analyticsSvc,
		exports:   exportSvc,
		views:     viewStore,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// HealthStatus is the payload of the /health endpoint.
type HealthStatus struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Health reports liveness plus a database round-trip check. A failing
// database degrades the status but still answers 200 so load balancers can
// distinguish "struggling" from "gone".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:        "healthy",
		Database:      "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
	}

	WriteSuccess(w, r, status)
}

// CacheStats exposes analytics cache hit/miss counters and key counts.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.analytics.CacheStats())
}

// ClearCache drops all cached analytics aggregates.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.analytics.ClearCache()
	NewResponseWriter(w, r).NoContent()
}
