// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/models"
)

// ListViews handles GET /api/v1/views: the caller's saved filter presets,
// newest first. Scoping comes from the X-User-ID header; absent headers
// share the anonymous scope.
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"views": h.views.List(userScope(r)),
	})
}

// CreateView handles POST /api/v1/views. Exceeding the per-user cap evicts
// the oldest view rather than rejecting the new one.
func (h *Handler) CreateView(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var view models.SavedView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		rw.ValidationFailed("request body must be valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	created, err := h.views.Create(userScope(r), &view)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.SuccessStatus(http.StatusCreated, created)
}

// GetView handles GET /api/v1/views/{id}.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	view, err := h.views.Get(userScope(r), chi.URLParam(r, "id"))
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(view)
}

// DeleteView handles DELETE /api/v1/views/{id}. Deletion is idempotent:
// deleting a missing view still answers 204.
func (h *Handler) DeleteView(w http.ResponseWriter, r *http.Request) {
	h.views.Delete(userScope(r), chi.URLParam(r, "id"))
	NewResponseWriter(w, r).NoContent()
}
