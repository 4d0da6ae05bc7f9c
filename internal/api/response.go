// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package api provides the HTTP surface of the activity reporting service:
// a chi router under /api/v1, standardized response envelopes, and handlers
// for activity queries, analytics, exports, and saved views.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/export"
	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/models"
)

// ErrCodeForbidden marks download requests rejected by path confinement.
// The remaining error codes live in the models package next to the error
// types they classify.
const ErrCodeForbidden = "FORBIDDEN"

// ResponseWriter provides methods for writing standardized API responses.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.SuccessStatus(http.StatusOK, data)
}

// SuccessStatus writes a successful response with an explicit status code.
// Asynchronous export acceptance uses 202, view creation 201.
func (rw *ResponseWriter) SuccessStatus(status int, data interface{}) {
	rw.writeJSON(status, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
		},
	})
}

// NoContent writes a 204 No Content response.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code and API error.
func (rw *ResponseWriter) Error(status int, code, message string, details map[string]interface{}) {
	rw.writeJSON(status, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// FromError classifies a service error and writes the matching response:
// validation failures are 422, missing resources 404, path confinement
// violations 403, and everything else a 500 with a generic message so
// internals never leak to clients.
func (rw *ResponseWriter) FromError(err error) {
	if errors.Is(err, export.ErrPathTraversal) {
		logger := logging.Ctx(rw.r.Context())
		logger.Warn().
			Str("path", rw.r.URL.Path).
			Msg("Download request escaped export directory")
		rw.Error(http.StatusForbidden, ErrCodeForbidden, "download path not allowed", nil)
		return
	}

	switch models.ErrorCode(err) {
	case models.CodeValidationError:
		rw.Error(http.StatusUnprocessableEntity, models.CodeValidationError, err.Error(), models.ErrorDetails(err))
	case models.CodeNotFound:
		rw.Error(http.StatusNotFound, models.CodeNotFound, err.Error(), nil)
	default:
		logger := logging.Ctx(rw.r.Context())
		logger.Error().
			Err(err).
			Str("path", rw.r.URL.Path).
			Msg("Request failed")
		rw.Error(http.StatusInternalServerError, models.CodeSystemError, "an internal error occurred", nil)
	}
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, models.CodeNotFound, message, nil)
}

// ValidationFailed writes a 422 with structured field details.
func (rw *ResponseWriter) ValidationFailed(message string, details map[string]interface{}) {
	rw.Error(http.StatusUnprocessableEntity, models.CodeValidationError, message, details)
}

// writeJSON writes JSON response with proper headers.
func (rw *ResponseWriter) writeJSON(status int, body models.APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)

	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logger := logging.Ctx(rw.r.Context())
		logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// RateLimited is the httprate limit handler: it writes a 429 in the standard
// envelope instead of httprate's plain-text default.
func RateLimited(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Error(http.StatusTooManyRequests, models.CodeRateLimited,
		"too many requests, retry later", nil)
}

// WriteSuccess is a convenience function for handlers that don't need the
// full ResponseWriter.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	NewResponseWriter(w, r).Success(data)
}

// WriteError is a convenience function for writing classified errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	NewResponseWriter(w, r).FromError(err)
}
