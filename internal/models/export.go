// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"time"
)

// Export formats accepted by the export pipeline.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Export job status values. A status lookup against an expired or unknown
// job id returns StatusNotFound.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNotFound   = "not_found"
)

// ExportRequest describes a single export: the filter to materialize, the
// output format, and optional column overrides.
//
// Columns defaults to the configured column list when empty. Known column
// names: id, date_time, causer, event, subject, description, changes,
// properties.
type ExportRequest struct {
	Filter  ActivityFilter `json:"filter"`
	Format  string         `json:"format" validate:"required,oneof=csv json xlsx pdf"`
	Columns []string       `json:"columns,omitempty" validate:"omitempty,dive,oneof=id date_time causer event subject description changes properties"`
}

// ExportJob tracks the lifecycle of an export: pending on enqueue,
// processing when execution starts, then terminal completed (with a
// download URL) or failed (with an error message). Job records expire
// after a fixed retention window.
type ExportJob struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message,omitempty"`
	DownloadURL *string   `json:"download_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final state.
func (j *ExportJob) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// ExportResult is returned by the synchronous export path: the rendered
// file's name, its download URL, and the record count it contains.
type ExportResult struct {
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	Records     int    `json:"records"`
	Format      string `json:"format"`
}

// ExportQueued is returned by the asynchronous export path. The caller polls
// job status with the returned id.
type ExportQueued struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// ExportInfo is the envelope written at the top of JSON exports.
type ExportInfo struct {
	ExportedAt    time.Time      `json:"exported_at"`
	RecordCount   int            `json:"record_count"`
	Filters       ActivityFilter `json:"filters"`
	Columns       []string       `json:"columns"`
	FormatVersion string         `json:"format_version"`
}

// ExportFormatVersion is the JSON export envelope version.
const ExportFormatVersion = "1.0"
