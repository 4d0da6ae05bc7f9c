// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

/*
Package models defines data structures for the Activitylens application.

This package contains all data models used throughout the application:
activity records, filter specifications, analytics payloads, export jobs,
saved views, and the standard API envelope. It serves as the single source
of truth for data structure definitions.

Key Components:

  - Activity: Audit record read from the append-only activity store
  - ActivityFilter: Immutable filter specification (date presets, causer/
    subject constraints, event types, free-text search, property-key check)
  - AnalyticsSummary, EventBreakdownEntry, HeatmapDay, Anomaly, UserProfile:
    analytics payloads
  - ExportRequest, ExportJob, ExportResult: export pipeline types
  - SavedView: named per-user filter preset
  - APIResponse, APIError, Metadata, Pagination: standard HTTP envelope

Error Taxonomy:

  - ValidationError: bad input, never retried
  - NotFoundError: missing activity, job, view, or file
  - SystemError: storage or render failure

All models use goccy/go-json compatible struct tags for serialization.
*/
package models
