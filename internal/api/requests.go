// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/activitylens/internal/models"
	"github.com/tomtom215/activitylens/internal/validation"
)

// SuggestionsRequest holds the validated query parameters for the
// autocomplete endpoints.
type SuggestionsRequest struct {
	Query string `validate:"omitempty,max=255"`
	Limit int    `validate:"min=1,max=50"`
}

// RecentRequest holds the validated query parameters for /activities/recent.
type RecentRequest struct {
	Hours int `validate:"min=1,max=720"`
	Limit int `validate:"min=1,max=500"`
}

// HeatmapRequest holds the validated query parameters for /analytics/heatmap.
type HeatmapRequest struct {
	Days int `validate:"omitempty,min=1,max=365"`
}

// parseFilter builds an ActivityFilter from query parameters and validates
// it. Every parameter is optional; an empty query string yields the
// match-everything filter.
func parseFilter(r *http.Request) (*models.ActivityFilter, error) {
	q := r.URL.Query()

	filter := &models.ActivityFilter{
		Search:      strings.TrimSpace(q.Get("search")),
		DatePreset:  q.Get("date_preset"),
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		CauserType:  q.Get("causer_type"),
		CauserID:    q.Get("causer_id"),
		SubjectType: q.Get("subject_type"),
		SubjectID:   q.Get("subject_id"),
		PropertyKey: q.Get("property_key"),
	}
	if raw := q.Get("event_types"); raw != "" {
		for _, et := range strings.Split(raw, ",") {
			if et = strings.TrimSpace(et); et != "" {
				filter.EventTypes = append(filter.EventTypes, et)
			}
		}
	}

	if err := validateRequest(filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// validateRequest runs struct validation and converts failures into the
// service-level ValidationError the response writer knows how to classify.
func validateRequest(req interface{}) error {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return models.NewValidationError(apiErr.Message, apiErr.Details)
}

// parsePagination extracts page/per_page with configured defaults. Values
// are clamped rather than rejected: page floors at 1, per_page at the
// configured maximum. Non-numeric input falls back to the default.
func parsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = getIntParam(r, "page", 1)
	if page < 1 {
		page = 1
	}

	perPage = getIntParam(r, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// getIntParam parses an integer query parameter, returning the default for
// missing or malformed values.
func getIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// userScope resolves the saved-view owner from the X-User-ID header.
// Requests without the header share the anonymous scope.
func userScope(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return models.AnonymousUser
}
