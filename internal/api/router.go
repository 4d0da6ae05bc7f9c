// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/middleware"
)

// NewRouter assembles the chi router: global middleware, the /api/v1 route
// groups with per-group rate limits, /health, and the Prometheus scrape
// endpoint at /metrics.
func NewRouter(h *Handler, cfg *config.ServerConfig) *chi.Mux {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-ID", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,

		RateLimitRequests: cfg.RateLimitReqs,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimitDisabled: cfg.RateLimitDisabled,
	})

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
	r.Use(mw.CORS())
	r.Use(APISecurityHeaders())

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Get("/health", h.Health)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/activities", func(r chi.Router) {
			r.Use(mw.RateLimitCustom(RateLimitRead))
			r.Get("/", h.ListActivities)
			r.Get("/recent", h.RecentActivities)
			r.Get("/grouped", h.GroupedTimeline)
			r.Get("/filters", h.AvailableFilters)
			r.Get("/suggestions", h.SearchSuggestions)
			r.Get("/suggestions/descriptions", h.DescriptionSuggestions)
			r.Get("/{id}", h.GetActivity)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(mw.RateLimitCustom(RateLimitAnalytics))
			r.Get("/summary", h.AnalyticsSummary)
			r.Get("/events", h.EventBreakdown)
			r.Get("/top-users", h.TopUsers)
			r.Get("/popular-subjects", h.PopularSubjects)
			r.Get("/timeline", h.AnalyticsTimeline)
			r.Get("/heatmap", h.Heatmap)
			r.Get("/anomalies", h.Anomalies)
			r.Get("/trends", h.Trends)
			r.Get("/users/{type}/{id}", h.UserProfile)
			r.Get("/cache/stats", h.CacheStats)
			r.Post("/cache/clear", h.ClearCache)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimitCustom(RateLimitExport))
				r.Post("/", h.CreateExport)
				r.Post("/cleanup", h.RunExportCleanup)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimitCustom(RateLimitDownload))
				r.Get("/formats", h.ExportFormats)
				r.Get("/status/{jobID}", h.ExportStatus)
				r.Get("/download/{filename}", h.DownloadExport)
			})
		})

		r.Route("/views", func(r chi.Router) {
			r.Use(mw.RateLimitCustom(RateLimitWrite))
			r.Get("/", h.ListViews)
			r.Post("/", h.CreateView)
			r.Get("/{id}", h.GetView)
			r.Delete("/{id}", h.DeleteView)
		})
	})

	return r
}
