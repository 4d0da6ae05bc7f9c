// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/activitylens/internal/models"
)

func TestCountInRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := seedFixtures(t, db)

	// Fixtures run from base-4h to base, one per hour.
	count, err := db.CountInRange(ctx, &models.ActivityFilter{}, base.Add(-90*time.Minute), base)
	if err != nil {
		t.Fatalf("CountInRange failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}

	// Range bounds intersect with filter conditions.
	count, err = db.CountInRange(ctx, &models.ActivityFilter{EventTypes: []string{"login"}}, base.Add(-24*time.Hour), base)
	if err != nil {
		t.Fatalf("CountInRange failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Filtered count = %d, want 1", count)
	}
}

func TestCountsByDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for day, n := range map[int]int{1: 2, 3: 1} {
		for i := 0; i < n; i++ {
			mustInsert(t, db, models.Activity{
				Event:     "created",
				CreatedAt: time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC),
			})
		}
	}

	counts, err := db.CountsByDay(ctx, &models.ActivityFilter{},
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 5, 23, 59, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("CountsByDay failed: %v", err)
	}

	// Empty days are absent, not zero.
	want := []DayCount{
		{Date: "2026-08-01", Count: 2},
		{Date: "2026-08-03", Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("CountsByDay = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestEventBreakdownCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	counts, err := db.EventBreakdownCounts(ctx, &models.ActivityFilter{})
	if err != nil {
		t.Fatalf("EventBreakdownCounts failed: %v", err)
	}

	// Largest first, alphabetical among ties.
	want := []EventCount{
		{Event: "created", Count: 2},
		{Event: "deleted", Count: 1},
		{Event: "login", Count: 1},
		{Event: "updated", Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("Breakdown = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestTopCausers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	counts, err := db.TopCausers(ctx, &models.ActivityFilter{}, 10)
	if err != nil {
		t.Fatalf("TopCausers failed: %v", err)
	}

	// The system-caused fixture must not appear.
	want := []CauserCount{
		{CauserType: "User", CauserID: 1, Count: 2},
		{CauserType: "User", CauserID: 2, Count: 2},
	}
	if len(counts) != len(want) {
		t.Fatalf("TopCausers = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestTopCausersLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	counts, err := db.TopCausers(ctx, &models.ActivityFilter{}, 1)
	if err != nil {
		t.Fatalf("TopCausers failed: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(counts))
	}
}

func TestCountDistinctCausers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := seedFixtures(t, db)

	count, err := db.CountDistinctCausers(ctx, &models.ActivityFilter{}, base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountDistinctCausers failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Distinct causers = %d, want 2", count)
	}

	// A cutoff after the newest record excludes everyone.
	count, err = db.CountDistinctCausers(ctx, &models.ActivityFilter{}, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("CountDistinctCausers failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Distinct causers = %d, want 0", count)
	}
}

func TestCauserStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := seedFixtures(t, db)

	total, first, last, err := db.CauserStats(ctx, "User", 1)
	if err != nil {
		t.Fatalf("CauserStats failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Total = %d, want 2", total)
	}
	if first == nil || last == nil {
		t.Fatal("Expected non-nil first/last timestamps")
	}
	if !first.Equal(base.Add(-time.Hour)) {
		t.Errorf("First = %v, want %v", first, base.Add(-time.Hour))
	}
	if !last.Equal(base) {
		t.Errorf("Last = %v, want %v", last, base)
	}

	total, first, last, err = db.CauserStats(ctx, "User", 99)
	if err != nil {
		t.Fatalf("CauserStats failed: %v", err)
	}
	if total != 0 || first != nil || last != nil {
		t.Errorf("Unknown causer: total=%d first=%v last=%v, want zero values", total, first, last)
	}
}

func TestCauserBreakdowns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedFixtures(t, db)

	events, err := db.CauserEventBreakdown(ctx, "User", 2)
	if err != nil {
		t.Fatalf("CauserEventBreakdown failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Event breakdown = %v, want 2 entries", events)
	}

	subjects, err := db.CauserSubjectBreakdown(ctx, "User", 2)
	if err != nil {
		t.Fatalf("CauserSubjectBreakdown failed: %v", err)
	}
	// User 2 deleted a Customer and performed a subject-less login.
	foundCustomer, foundEmpty := false, false
	for _, kc := range subjects {
		switch kc.Key {
		case "Customer":
			foundCustomer = kc.Count == 1
		case "":
			foundEmpty = kc.Count == 1
		}
	}
	if !foundCustomer || !foundEmpty {
		t.Errorf("Subject breakdown = %v, want Customer and empty keys with count 1", subjects)
	}
}

func TestCauserCountsByDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := seedFixtures(t, db)

	counts, err := db.CauserCountsByDay(ctx, "User", 1, base.Add(-48*time.Hour), base)
	if err != nil {
		t.Fatalf("CauserCountsByDay failed: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("CauserCountsByDay = %v, want 1 entry", counts)
	}
	if counts[0].Date != "2026-08-20" || counts[0].Count != 2 {
		t.Errorf("counts[0] = %v, want {2026-08-20 2}", counts[0])
	}
}

func TestEarliestActivity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, ok, err := db.EarliestActivity(ctx, &models.ActivityFilter{})
	if err != nil {
		t.Fatalf("EarliestActivity failed: %v", err)
	}
	if ok {
		t.Error("Expected ok=false on empty store")
	}

	base := seedFixtures(t, db)
	earliest, ok, err := db.EarliestActivity(ctx, &models.ActivityFilter{})
	if err != nil {
		t.Fatalf("EarliestActivity failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected ok=true after seeding")
	}
	if !earliest.Equal(base.Add(-4 * time.Hour)) {
		t.Errorf("Earliest = %v, want %v", earliest, base.Add(-4*time.Hour))
	}
}
