// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/models"
)

// seedMockData loads a small synthetic activity set for development
// environments. It only runs against an empty store so restarts do not
// pile up duplicate records. The generator is seeded deterministically,
// repeated runs against a fresh database produce the same data.
func (db *DB) seedMockData(ctx context.Context) error {
	existing, err := db.CountActivities(ctx, &models.ActivityFilter{})
	if err != nil {
		return err
	}
	if existing > 0 {
		logging.Debug().Int("existing", existing).Msg("Skipping mock data seed, store not empty")
		return nil
	}

	actors := []struct {
		typeTag string
		id      int64
		name    string
	}{
		{"User", 1, "Alice Hammond"},
		{"User", 2, "Ben Okafor"},
		{"User", 3, "Carla Vance"},
		{"User", 4, "Dmitri Solokov"},
		{"ApiClient", 1, "Billing Integration"},
	}
	for _, actor := range actors {
		if err := db.UpsertActor(ctx, actor.typeTag, actor.id, actor.name); err != nil {
			return err
		}
	}

	events := []string{"created", "updated", "deleted", "login", "exported"}
	subjects := []string{"Invoice", "Customer", "Report", "Account"}
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	const records = 250
	for i := 0; i < records; i++ {
		age := time.Duration(rng.Intn(60*24)) * time.Hour
		createdAt := now.Add(-age)
		event := events[rng.Intn(len(events))]

		activity := models.Activity{
			CreatedAt:   createdAt,
			Event:       event,
			Description: fmt.Sprintf("%s record %d", event, i+1),
		}

		// roughly one in six records is system-caused
		if rng.Intn(6) != 0 {
			actor := actors[rng.Intn(len(actors))]
			activity.CauserType = &actor.typeTag
			activity.CauserID = &actor.id
		}

		if event != "login" {
			subjectType := subjects[rng.Intn(len(subjects))]
			subjectID := int64(rng.Intn(40) + 1)
			activity.SubjectType = &subjectType
			activity.SubjectID = &subjectID
		}

		if event == "updated" {
			activity.Properties = map[string]interface{}{
				"old":        map[string]interface{}{"status": "draft"},
				"attributes": map[string]interface{}{"status": "published"},
			}
		}

		if _, err := db.InsertActivity(ctx, &activity); err != nil {
			return err
		}
	}

	logging.Info().Int("records", records).Int("actors", len(actors)).Msg("Seeded mock activity data")
	return nil
}
