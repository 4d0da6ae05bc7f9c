// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package api

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/metrics"
	"github.com/tomtom215/activitylens/internal/models"
)

// CreateExport handles POST /api/v1/exports. Small result sets render
// inline and answer 200 with the file's download URL; large ones are queued
// and answer 202 with a job id to poll.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.ValidationFailed("request body must be valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := validateRequest(&req); err != nil {
		rw.FromError(err)
		return
	}

	outcome, err := h.exports.Export(r.Context(), &req)
	if err != nil {
		rw.FromError(err)
		return
	}

	if outcome.Queued != nil {
		rw.SuccessStatus(http.StatusAccepted, outcome.Queued)
		return
	}
	rw.Success(outcome.Result)
}

// ExportFormats handles GET /api/v1/exports/formats, advertising the
// enabled formats and limits so clients can build their export dialog
// without hardcoding server configuration.
func (h *Handler) ExportFormats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{
		"formats":         h.cfg.Exports.Formats,
		"columns":         h.cfg.Exports.Columns,
		"max_records":     h.cfg.Exports.MaxRecords,
		"queue_threshold": h.cfg.Exports.QueueThreshold,
	})
}

// ExportStatus handles GET /api/v1/exports/status/{jobID}. Unknown and
// expired jobs answer 200 with a not_found status record, matching the
// polling contract: clients poll the same URL until a terminal status.
func (h *Handler) ExportStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	job, err := h.exports.Status(chi.URLParam(r, "jobID"))
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(job)
}

// DownloadExport handles GET /api/v1/exports/download/{filename}. File
// names are confined to the export directory: traversal attempts answer
// 403, missing or expired files 404.
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name := chi.URLParam(r, "filename")

	path, err := h.exports.ResolveDownload(name)
	if err != nil {
		metrics.RecordExportDownload("rejected")
		rw.FromError(err)
		return
	}

	metrics.RecordExportDownload("served")

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// RunExportCleanup handles POST /api/v1/exports/cleanup: an on-demand sweep
// of export files older than the retention window.
func (h *Handler) RunExportCleanup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	removed, err := h.exports.Cleanup()
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(map[string]interface{}{"removed": removed})
}
