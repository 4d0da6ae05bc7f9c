// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/activitylens/internal/models"
)

func strPtr(s string) *string { return &s }
func i64Ptr(i int64) *int64   { return &i }

func TestRowWithFullRecord(t *testing.T) {
	a := models.Activity{
		ID:          42,
		CreatedAt:   time.Date(2026, 8, 19, 10, 30, 0, 0, time.UTC),
		Event:       "updated",
		CauserType:  strPtr("User"),
		CauserID:    i64Ptr(7),
		CauserName:  "Alice Hammond",
		SubjectType: strPtr("Invoice"),
		SubjectID:   i64Ptr(99),
		Description: "Invoice updated",
		Properties: map[string]interface{}{
			"old":        map[string]interface{}{"status": "draft"},
			"attributes": map[string]interface{}{"status": "sent"},
		},
	}

	row := Row(&a, []string{ColID, ColDateTime, ColCauser, ColEvent, ColSubject, ColDescription, ColChanges})
	want := []string{
		"42",
		"2026-08-19 10:30:00",
		"Alice Hammond",
		"updated",
		"Invoice #99",
		"Invoice updated",
		`status: "draft" -> "sent"`,
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("Row = %v, want %v", row, want)
	}
}

func TestRowFallbacks(t *testing.T) {
	a := models.Activity{ID: 1, CreatedAt: time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)}

	row := Row(&a, []string{ColCauser, ColEvent, ColSubject, ColChanges})
	want := []string{"System", "unknown", "N/A", "No changes tracked"}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("Row = %v, want %v", row, want)
	}
}

func TestFlatRecord(t *testing.T) {
	a := models.Activity{ID: 5, CreatedAt: time.Date(2026, 8, 19, 8, 0, 0, 0, time.UTC), Event: "created"}

	record := FlatRecord(&a, []string{ColID, ColEvent})
	if record[ColID] != "5" || record[ColEvent] != "created" {
		t.Errorf("FlatRecord = %v", record)
	}
	if len(record) != 2 {
		t.Errorf("FlatRecord has %d keys, want 2", len(record))
	}
}

func TestHeaders(t *testing.T) {
	headers := Headers([]string{ColID, ColDateTime, ColChanges, "custom_col"})
	want := []string{"ID", "Date & Time", "Changes", "custom_col"}
	if !reflect.DeepEqual(headers, want) {
		t.Errorf("Headers = %v, want %v", headers, want)
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, 8, 19, 10, 30, 0, 0, time.UTC)
	name := exportFileName(now, "csv")

	const prefix = "activity_log_export_20260819_103000_"
	if len(name) != len(prefix)+8+len(".csv") {
		t.Errorf("Unexpected name length: %q", name)
	}
	if name[:len(prefix)] != prefix {
		t.Errorf("Name = %q, want prefix %q", name, prefix)
	}

	// Random suffix makes names collision-resistant.
	if other := exportFileName(now, "csv"); other == name {
		t.Errorf("Two generated names collided: %q", name)
	}
}
