// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/tomtom215/activitylens/internal/models"
)

func TestResolveFromActorTable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, "User", 1, "Alice Hammond"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}

	name, ok := db.Resolvers().Resolve(ctx, "User", 1)
	if !ok || name != "Alice Hammond" {
		t.Errorf("Resolve = %q/%v, want Alice Hammond/true", name, ok)
	}

	if _, ok := db.Resolvers().Resolve(ctx, "User", 99); ok {
		t.Error("Expected unknown actor to not resolve")
	}
}

func TestUpsertActorUpdates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, "User", 1, "Old Name"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}
	if err := db.UpsertActor(ctx, "User", 1, "New Name"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}

	name, ok := db.Resolvers().Resolve(ctx, "User", 1)
	if !ok || name != "New Name" {
		t.Errorf("Resolve = %q/%v, want New Name/true", name, ok)
	}
}

func TestDeleteActor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, "User", 1, "Alice Hammond"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}
	if err := db.DeleteActor(ctx, "User", 1); err != nil {
		t.Fatalf("DeleteActor failed: %v", err)
	}
	if _, ok := db.Resolvers().Resolve(ctx, "User", 1); ok {
		t.Error("Expected deleted actor to not resolve")
	}
}

func TestCustomResolverPrecedence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Table entry exists, but a registered resolver wins.
	if err := db.UpsertActor(ctx, "ApiClient", 7, "Table Name"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}
	db.Resolvers().Register("ApiClient", func(_ context.Context, id int64) (string, bool) {
		return fmt.Sprintf("Client %d", id), true
	})

	name, ok := db.Resolvers().Resolve(ctx, "ApiClient", 7)
	if !ok || name != "Client 7" {
		t.Errorf("Resolve = %q/%v, want Client 7/true", name, ok)
	}
}

func TestResolveCausersFillsNames(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, "User", 1, "Alice Hammond"); err != nil {
		t.Fatalf("UpsertActor failed: %v", err)
	}

	activities := []models.Activity{
		{Event: "created", CauserType: strPtr("User"), CauserID: i64Ptr(1)},
		{Event: "created", CauserType: strPtr("User"), CauserID: i64Ptr(1)},
		{Event: "created", CauserType: strPtr("User"), CauserID: i64Ptr(2)},
		{Event: "created"},
	}
	db.Resolvers().ResolveCausers(ctx, activities)

	if activities[0].CauserName != "Alice Hammond" || activities[1].CauserName != "Alice Hammond" {
		t.Errorf("Resolved names = %q, %q, want Alice Hammond for both",
			activities[0].CauserName, activities[1].CauserName)
	}
	if activities[2].CauserName != "" {
		t.Errorf("Unresolvable causer name = %q, want empty", activities[2].CauserName)
	}
	if activities[3].CauserName != "" {
		t.Errorf("System record name = %q, want empty", activities[3].CauserName)
	}
	if activities[2].CauserDisplay() != "User #2" {
		t.Errorf("Fallback display = %q, want User #2", activities[2].CauserDisplay())
	}
}
