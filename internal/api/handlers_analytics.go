// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// AnalyticsSummary handles GET /api/v1/analytics/summary: headline totals,
// unique causer counts, and period-over-period change for the filtered set.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	summary, err := h.analytics.Summary(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(summary)
}

// EventBreakdown handles GET /api/v1/analytics/events: per-event counts,
// percentages, and chart colors.
func (h *Handler) EventBreakdown(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	breakdown, err := h.analytics.EventBreakdown(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"events": breakdown})
}

// TopUsers handles GET /api/v1/analytics/top-users: the most active causers
// with their dominant event types.
func (h *Handler) TopUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	users, err := h.analytics.TopUsers(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"users": users})
}

// PopularSubjects handles GET /api/v1/analytics/popular-subjects: which
// entity types are acted upon most.
func (h *Handler) PopularSubjects(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	subjects, err := h.analytics.PopularSubjects(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"subjects": subjects})
}

// AnalyticsTimeline handles GET /api/v1/analytics/timeline: daily activity
// counts over the filtered range, zero-filled for gap days.
func (h *Handler) AnalyticsTimeline(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	points, err := h.analytics.Timeline(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"timeline": points})
}

// Heatmap handles GET /api/v1/analytics/heatmap: per-day intensity levels
// over a trailing window for calendar-heatmap rendering.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	req := HeatmapRequest{Days: getIntParam(r, "days", 0)}
	if err := validateRequest(&req); err != nil {
		rw.FromError(err)
		return
	}

	days, err := h.analytics.Heatmap(r.Context(), filter, req.Days)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"days": days})
}

// Anomalies handles GET /api/v1/analytics/anomalies: days whose activity
// count sits more than two standard deviations above the window mean.
func (h *Handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	anomalies, err := h.analytics.Anomalies(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"anomalies": anomalies})
}

// Trends handles GET /api/v1/analytics/trends: per-event daily series
// shaped for stacked chart rendering.
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	trends, err := h.analytics.Trends(r.Context(), filter)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(trends)
}

// UserProfile handles GET /api/v1/analytics/users/{type}/{id}: a single
// causer's activity profile with event and subject breakdowns.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	causerType := chi.URLParam(r, "type")
	raw := chi.URLParam(r, "id")
	causerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		rw.ValidationFailed("causer id must be an integer", map[string]interface{}{
			"field": "id",
			"value": raw,
		})
		return
	}

	profile, err := h.analytics.UserProfile(r.Context(), causerType, causerID)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(profile)
}
