// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/activitylens/internal/models"
)

// ListActivities handles GET /api/v1/activities: a filtered, paginated
// listing ordered newest first. Pages past the end return an empty list
// with accurate pagination metadata, never an error.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	page, perPage := parsePagination(r, h.cfg.API.DefaultPageSize, h.cfg.API.MaxPageSize)

	result, err := h.db.ListActivities(r.Context(), filter, page, perPage)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(result)
}

// GetActivity handles GET /api/v1/activities/{id}.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		rw.ValidationFailed("activity id must be an integer", map[string]interface{}{
			"field": "id",
			"value": raw,
		})
		return
	}

	activity, err := h.db.GetActivity(r.Context(), id)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(activity)
}

// RecentActivities handles GET /api/v1/activities/recent: the latest
// records within a trailing window, for dashboard tickers.
func (h *Handler) RecentActivities(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := RecentRequest{
		Hours: getIntParam(r, "hours", 24),
		Limit: getIntParam(r, "limit", 50),
	}
	if err := validateRequest(&req); err != nil {
		rw.FromError(err)
		return
	}

	activities, err := h.db.RecentActivities(r.Context(), req.Hours, req.Limit)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{
		"activities": activities,
		"hours":      req.Hours,
	})
}

// GroupedTimeline handles GET /api/v1/activities/grouped: a paginated
// listing bucketed into calendar days with human-friendly labels
// ("Today", "Yesterday", weekday names).
func (h *Handler) GroupedTimeline(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFilter(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	page, perPage := parsePagination(r, h.cfg.API.DefaultPageSize, h.cfg.API.MaxPageSize)

	result, err := h.db.ListActivities(r.Context(), filter, page, perPage)
	if err != nil {
		rw.FromError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"groups":     models.GroupActivitiesByDate(result.Activities, time.Now()),
		"pagination": result.Pagination,
	})
}

// AvailableFilters handles GET /api/v1/activities/filters: the distinct
// event, causer, and subject types present in the store, for populating
// filter dropdowns. Served through the analytics cache.
func (h *Handler) AvailableFilters(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filters, err := h.analytics.AvailableFilters(r.Context())
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(filters)
}

// SearchSuggestions handles GET /api/v1/activities/suggestions: prefix
// autocompletion across actor names, subject types, and descriptions.
func (h *Handler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggest(w, r, h.db.SearchSuggestions)
}

// DescriptionSuggestions handles GET /api/v1/activities/suggestions/descriptions:
// prefix autocompletion over descriptions only.
func (h *Handler) DescriptionSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggest(w, r, h.db.DescriptionSuggestions)
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request, source func(ctx context.Context, prefix string, limit int) ([]string, error)) {
	rw := NewResponseWriter(w, r)

	req := SuggestionsRequest{
		Query: r.URL.Query().Get("q"),
		Limit: getIntParam(r, "limit", 10),
	}
	if err := validateRequest(&req); err != nil {
		rw.FromError(err)
		return
	}

	suggestions, err := source(r.Context(), req.Query, req.Limit)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"suggestions": suggestions})
}
