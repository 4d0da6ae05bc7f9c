// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "activity_log",
			duration:  10 * time.Millisecond,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "actors",
			duration:  5 * time.Millisecond,
		},
		{
			name:      "failed query with short error",
			operation: "SELECT",
			table:     "activity_log",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error truncated to 50 chars",
			operation: "DELETE",
			table:     "activity_log",
			duration:  50 * time.Millisecond,
			err:       errors.New(strings.Repeat("x", 120)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}

	truncated := strings.Repeat("x", 50)
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("DELETE", "activity_log", truncated)); got != 1 {
		t.Errorf("Truncated error counter = %v, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("GET", "/api/v1/analytics/summary", "200", 25*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/analytics/summary", "200", 30*time.Millisecond)
	RecordAPIRequest("POST", "/api/v1/exports", "422", 5*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/analytics/summary", "200")); got != 2 {
		t.Errorf("Request counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/exports", "422")); got != 1 {
		t.Errorf("Request counter = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+2 {
		t.Errorf("Active requests = %v, want %v", got, before+2)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("Active requests = %v, want %v", got, before)
	}
}

func TestRecordExport(t *testing.T) {
	RecordExport("csv", "sync", 120, 100*time.Millisecond, nil)
	RecordExport("csv", "async", 5000, time.Second, nil)
	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("csv", "sync")); got != 1 {
		t.Errorf("Sync export counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("csv", "async")); got != 1 {
		t.Errorf("Async export counter = %v, want 1", got)
	}
}

func TestRecordExportErrorCategories(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errorType string
	}{
		{"render failure", errors.New("write /exports/out.pdf: no space left"), "render"},
		{"disabled format", errors.New("format is not enabled"), "validation"},
		{"record cap", errors.New("export exceeds the maximum of 10000"), "capacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ExportErrors.WithLabelValues("pdf", tt.errorType))
			RecordExport("pdf", "sync", 0, time.Millisecond, tt.err)
			after := testutil.ToFloat64(ExportErrors.WithLabelValues("pdf", tt.errorType))
			if after != before+1 {
				t.Errorf("Error counter %q = %v, want %v", tt.errorType, after, before+1)
			}
		})
	}
}

func TestTrackExportJob(t *testing.T) {
	before := testutil.ToFloat64(ExportJobsInFlight)

	TrackExportJob(true)
	if got := testutil.ToFloat64(ExportJobsInFlight); got != before+1 {
		t.Errorf("In-flight jobs = %v, want %v", got, before+1)
	}
	TrackExportJob(false)
	if got := testutil.ToFloat64(ExportJobsInFlight); got != before {
		t.Errorf("In-flight jobs = %v, want %v", got, before)
	}
}

func TestRecordExportCleanup(t *testing.T) {
	before := testutil.ToFloat64(ExportFilesCleaned)
	RecordExportCleanup(0)
	RecordExportCleanup(3)
	if got := testutil.ToFloat64(ExportFilesCleaned); got != before+3 {
		t.Errorf("Cleaned counter = %v, want %v", got, before+3)
	}
}

func TestRecordCacheAccess(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("analytics"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("analytics"))

	RecordCacheAccess("analytics", true)
	RecordCacheAccess("analytics", false)
	RecordCacheAccess("analytics", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("analytics")); got != hitsBefore+1 {
		t.Errorf("Hits = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("analytics")); got != missesBefore+2 {
		t.Errorf("Misses = %v, want %v", got, missesBefore+2)
	}
}

func TestRecordSavedView(t *testing.T) {
	createdBefore := testutil.ToFloat64(SavedViewsCreated)
	evictedBefore := testutil.ToFloat64(SavedViewsEvicted)

	RecordSavedView(1, 0, 0)
	RecordSavedView(1, 0, 1)
	RecordSavedView(0, 1, 0)

	if got := testutil.ToFloat64(SavedViewsCreated); got != createdBefore+2 {
		t.Errorf("Created = %v, want %v", got, createdBefore+2)
	}
	if got := testutil.ToFloat64(SavedViewsEvicted); got != evictedBefore+1 {
		t.Errorf("Evicted = %v, want %v", got, evictedBefore+1)
	}
}

func TestSetCacheSize(t *testing.T) {
	SetCacheSize("views", 7)
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("views")); got != 7 {
		t.Errorf("Cache size = %v, want 7", got)
	}
	SetCacheSize("views", 0)
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("views")); got != 0 {
		t.Errorf("Cache size = %v, want 0", got)
	}
}
