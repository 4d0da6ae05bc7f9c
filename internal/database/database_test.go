// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent resource exhaustion in CI.
// When many tests run in parallel, too many concurrent DuckDB CGO calls can cause hangs.
// Setting to 1 fully serializes database creation to prevent resource contention.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes database creation for short periods to reduce contention.
var testDBMutex sync.Mutex

// setupTestDB creates a new in-memory test database with timeout protection.
// Uses a 120-second timeout to fail fast if DuckDB hangs during connection.
//
// Concurrency control:
// - Semaphore limits concurrent database operations to 1 (fully serialized)
// - Semaphore is held for the ENTIRE test lifecycle, not just DB creation
// - Semaphore is released via t.Cleanup() when the test completes
//
// DuckDB CGO calls can hang when multiple connections do concurrent
// operations under CI resource pressure, so only one test ever holds an
// active connection at a time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			_ = res.db.Close()
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

func strPtr(s string) *string { return &s }
func i64Ptr(i int64) *int64   { return &i }

func mustInsert(t *testing.T, db *DB, a models.Activity) int64 {
	t.Helper()
	id, err := db.InsertActivity(context.Background(), &a)
	if err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}
	return id
}

// seedFixtures loads a deterministic record set used across query tests.
// Record timestamps count backwards from base, one hour apart, so insertion
// order matches reverse chronological order.
func seedFixtures(t *testing.T, db *DB) time.Time {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	if err := db.UpsertActor(ctx, "User", 1, "Alice Hammond"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}
	if err := db.UpsertActor(ctx, "User", 2, "Ben Okafor"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}

	fixtures := []models.Activity{
		{
			Event: "created", Description: "Invoice created",
			CauserType: strPtr("User"), CauserID: i64Ptr(1),
			SubjectType: strPtr("Invoice"), SubjectID: i64Ptr(10),
		},
		{
			Event: "updated", Description: "Invoice status changed",
			CauserType: strPtr("User"), CauserID: i64Ptr(1),
			SubjectType: strPtr("Invoice"), SubjectID: i64Ptr(10),
			Properties: map[string]interface{}{
				"old":        map[string]interface{}{"status": "draft"},
				"attributes": map[string]interface{}{"status": "sent"},
			},
		},
		{
			Event: "deleted", Description: "Customer removed",
			CauserType: strPtr("User"), CauserID: i64Ptr(2),
			SubjectType: strPtr("Customer"), SubjectID: i64Ptr(5),
			Properties: map[string]interface{}{"reason": nil},
		},
		{
			Event: "login", Description: "Successful login",
			CauserType: strPtr("User"), CauserID: i64Ptr(2),
		},
		{
			Event: "created", Description: "Nightly report generated",
			SubjectType: strPtr("Report"), SubjectID: i64Ptr(7),
		},
	}
	for i, a := range fixtures {
		a.CreatedAt = base.Add(-time.Duration(i) * time.Hour)
		mustInsert(t, db, a)
	}
	return base
}

func TestInsertAndGetActivity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, "User", 1, "Alice Hammond"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}

	id := mustInsert(t, db, models.Activity{
		Event:       "updated",
		Description: "Profile updated",
		CauserType:  strPtr("User"),
		CauserID:    i64Ptr(1),
		SubjectType: strPtr("Account"),
		SubjectID:   i64Ptr(3),
		Properties: map[string]interface{}{
			"attributes": map[string]interface{}{"email": "new@example.com"},
		},
	})
	if id == 0 {
		t.Fatal("Expected non-zero assigned id")
	}

	got, err := db.GetActivity(ctx, id)
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if got.Event != "updated" {
		t.Errorf("Event = %q, want %q", got.Event, "updated")
	}
	if got.CauserName != "Alice Hammond" {
		t.Errorf("CauserName = %q, want %q", got.CauserName, "Alice Hammond")
	}
	attrs, ok := got.Properties["attributes"].(map[string]interface{})
	if !ok || attrs["email"] != "new@example.com" {
		t.Errorf("Properties did not round-trip: %v", got.Properties)
	}
	if got.SubjectDisplay() != "Account #3" {
		t.Errorf("SubjectDisplay = %q, want %q", got.SubjectDisplay(), "Account #3")
	}
}

func TestGetActivityNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetActivity(context.Background(), 99999)
	if err == nil {
		t.Fatal("Expected error for missing activity")
	}
	if !models.IsNotFoundError(err) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestListActivitiesOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	page, err := db.ListActivities(ctx, &models.ActivityFilter{}, 1, 25)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(page.Activities) != 5 {
		t.Fatalf("Expected 5 activities, got %d", len(page.Activities))
	}
	for i := 1; i < len(page.Activities); i++ {
		prev, cur := page.Activities[i-1], page.Activities[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Errorf("Activities not newest-first at index %d", i)
		}
	}
}

func TestListActivitiesTieBreakByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Identical timestamps: higher id must come first.
	ts := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	first := mustInsert(t, db, models.Activity{Event: "created", CreatedAt: ts, Description: "first"})
	second := mustInsert(t, db, models.Activity{Event: "created", CreatedAt: ts, Description: "second"})

	page, err := db.ListActivities(ctx, &models.ActivityFilter{}, 1, 25)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(page.Activities) != 2 {
		t.Fatalf("Expected 2 activities, got %d", len(page.Activities))
	}
	if page.Activities[0].ID != second || page.Activities[1].ID != first {
		t.Errorf("Tie-break order wrong: got ids [%d, %d], want [%d, %d]",
			page.Activities[0].ID, page.Activities[1].ID, second, first)
	}
}

func TestListActivitiesPagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	page, err := db.ListActivities(ctx, &models.ActivityFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(page.Activities) != 2 {
		t.Errorf("Page 1 size = %d, want 2", len(page.Activities))
	}
	if page.Pagination.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Pagination.Total)
	}
	if page.Pagination.LastPage != 3 {
		t.Errorf("LastPage = %d, want 3", page.Pagination.LastPage)
	}
	if page.Pagination.From != 1 || page.Pagination.To != 2 {
		t.Errorf("From/To = %d/%d, want 1/2", page.Pagination.From, page.Pagination.To)
	}

	last, err := db.ListActivities(ctx, &models.ActivityFilter{}, 3, 2)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(last.Activities) != 1 {
		t.Errorf("Page 3 size = %d, want 1", len(last.Activities))
	}
	if last.Pagination.From != 5 || last.Pagination.To != 5 {
		t.Errorf("From/To = %d/%d, want 5/5", last.Pagination.From, last.Pagination.To)
	}

	// A page beyond the last is an empty page with intact totals, not an error.
	beyond, err := db.ListActivities(ctx, &models.ActivityFilter{}, 10, 2)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(beyond.Activities) != 0 {
		t.Errorf("Out-of-range page size = %d, want 0", len(beyond.Activities))
	}
	if beyond.Pagination.Total != 5 {
		t.Errorf("Out-of-range Total = %d, want 5", beyond.Pagination.Total)
	}
	if beyond.Pagination.From != 0 || beyond.Pagination.To != 0 {
		t.Errorf("Out-of-range From/To = %d/%d, want 0/0", beyond.Pagination.From, beyond.Pagination.To)
	}
}

func TestFilterByEventTypes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	page, err := db.ListActivities(ctx, &models.ActivityFilter{
		EventTypes: []string{"created", "login"},
	}, 1, 25)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(page.Activities) != 3 {
		t.Fatalf("Expected 3 activities, got %d", len(page.Activities))
	}
	for _, a := range page.Activities {
		if a.Event != "created" && a.Event != "login" {
			t.Errorf("Unexpected event %q in filtered result", a.Event)
		}
	}
}

func TestFilterByCauser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	tests := []struct {
		name   string
		filter models.ActivityFilter
		want   int
	}{
		{"type and id", models.ActivityFilter{CauserType: "User", CauserID: "2"}, 2},
		{"type only", models.ActivityFilter{CauserType: "User"}, 4},
		{"non-numeric id ignored", models.ActivityFilter{CauserType: "User", CauserID: "abc"}, 4},
		{"no matches", models.ActivityFilter{CauserType: "User", CauserID: "77"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := db.CountActivities(ctx, &tt.filter)
			if err != nil {
				t.Fatalf("CountActivities failed: %v", err)
			}
			if count != tt.want {
				t.Errorf("Count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestFilterBySubject(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	count, err := db.CountActivities(ctx, &models.ActivityFilter{
		SubjectType: "Invoice",
		SubjectID:   "10",
	})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestFilterByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	// Fixtures span 2026-08-20 08:00 through 12:00 UTC.
	count, err := db.CountActivities(ctx, &models.ActivityFilter{
		DatePreset: models.PresetCustom,
		StartDate:  "2026-08-20",
		EndDate:    "2026-08-20",
	})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Count = %d, want 5", count)
	}

	count, err = db.CountActivities(ctx, &models.ActivityFilter{
		DatePreset: models.PresetCustom,
		StartDate:  "2026-08-21",
	})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d, want 0", count)
	}
}

func TestFilterSearch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	tests := []struct {
		name   string
		search string
		want   int
	}{
		{"description substring", "invoice", 2},
		{"actor name", "okafor", 2},
		{"subject type", "report", 1},
		{"no match", "zzz-nothing", 0},
		{"like metacharacters literal", "100%", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := db.CountActivities(ctx, &models.ActivityFilter{Search: tt.search})
			if err != nil {
				t.Fatalf("CountActivities failed: %v", err)
			}
			if count != tt.want {
				t.Errorf("Count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestFilterByPropertyKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	// "old" exists on the updated fixture only.
	count, err := db.CountActivities(ctx, &models.ActivityFilter{PropertyKey: "old"})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count for key 'old' = %d, want 1", count)
	}

	// A key holding JSON null still counts as present.
	count, err = db.CountActivities(ctx, &models.ActivityFilter{PropertyKey: "reason"})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count for key 'reason' = %d, want 1", count)
	}

	count, err = db.CountActivities(ctx, &models.ActivityFilter{PropertyKey: "missing"})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count for absent key = %d, want 0", count)
	}
}

func TestRecentActivities(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	recent, err := db.RecentActivities(ctx, 0, 3)
	if err != nil {
		t.Fatalf("RecentActivities failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 activities, got %d", len(recent))
	}
	if recent[0].Description != "Invoice created" {
		t.Errorf("First recent = %q, want newest fixture", recent[0].Description)
	}
}

func TestAvailableFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	filters, err := db.AvailableFilters(ctx)
	if err != nil {
		t.Fatalf("AvailableFilters failed: %v", err)
	}
	wantEvents := []string{"created", "deleted", "login", "updated"}
	if len(filters.EventTypes) != len(wantEvents) {
		t.Fatalf("EventTypes = %v, want %v", filters.EventTypes, wantEvents)
	}
	for i, e := range wantEvents {
		if filters.EventTypes[i] != e {
			t.Errorf("EventTypes[%d] = %q, want %q", i, filters.EventTypes[i], e)
		}
	}
	if len(filters.CauserTypes) != 1 || filters.CauserTypes[0] != "User" {
		t.Errorf("CauserTypes = %v, want [User]", filters.CauserTypes)
	}
	if len(filters.SubjectTypes) != 3 {
		t.Errorf("SubjectTypes = %v, want 3 entries", filters.SubjectTypes)
	}
}

func TestDescriptionSuggestions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	suggestions, err := db.DescriptionSuggestions(ctx, "invoice", 10)
	if err != nil {
		t.Fatalf("DescriptionSuggestions failed: %v", err)
	}
	if len(suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2 entries", suggestions)
	}
}

func TestSeedMockDataIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.seedMockData(ctx); err != nil {
		t.Fatalf("seedMockData failed: %v", err)
	}
	first, err := db.CountActivities(ctx, &models.ActivityFilter{})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if first == 0 {
		t.Fatal("Expected seeded records")
	}

	// Second run against a non-empty store is a no-op.
	if err := db.seedMockData(ctx); err != nil {
		t.Fatalf("seedMockData failed: %v", err)
	}
	second, err := db.CountActivities(ctx, &models.ActivityFilter{})
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if second != first {
		t.Errorf("Record count changed on reseed: %d -> %d", first, second)
	}
}

func TestHealthCheck(t *testing.T) {
	db := setupTestDB(t)
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
