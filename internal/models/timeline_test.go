// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"testing"
	"time"
)

func TestHumanDateLabel(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, 8, 19, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"same day", time.Date(2026, 8, 19, 0, 30, 0, 0, time.UTC), "Today"},
		{"previous day", time.Date(2026, 8, 18, 23, 59, 0, 0, time.UTC), "Yesterday"},
		{"within week", time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC), "Saturday"},
		{"same year", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), "March 2"},
		{"older year", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), "December 31, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanDateLabel(tt.date, now); got != tt.want {
				t.Errorf("HumanDateLabel(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestHumanDateLabelNonUTC(t *testing.T) {
	// Day boundaries follow now's zone, not UTC. At UTC+13 an early-morning
	// local timestamp still belongs to the local "Today" even though its UTC
	// instant falls on the previous UTC day.
	zone := time.FixedZone("UTC+13", 13*60*60)
	now := time.Date(2026, 8, 19, 20, 0, 0, 0, zone)

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"local early morning", time.Date(2026, 8, 19, 1, 0, 0, 0, zone), "Today"},
		{"same instant stored in utc", time.Date(2026, 8, 18, 12, 0, 0, 0, time.UTC), "Today"},
		{"local previous day", time.Date(2026, 8, 18, 23, 0, 0, 0, zone), "Yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanDateLabel(tt.date, now); got != tt.want {
				t.Errorf("HumanDateLabel(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestGroupActivitiesByDate(t *testing.T) {
	now := time.Date(2026, 8, 19, 15, 0, 0, 0, time.UTC)
	activities := []Activity{
		{ID: 3, CreatedAt: time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)},
		{ID: 2, CreatedAt: time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)},
		{ID: 1, CreatedAt: time.Date(2026, 8, 18, 17, 0, 0, 0, time.UTC)},
	}

	groups := GroupActivitiesByDate(activities, now)
	if len(groups) != 2 {
		t.Fatalf("Groups = %d, want 2", len(groups))
	}
	if groups[0].Label != "Today" || len(groups[0].Activities) != 2 {
		t.Errorf("First group = %q with %d records, want Today with 2",
			groups[0].Label, len(groups[0].Activities))
	}
	if groups[1].Label != "Yesterday" || len(groups[1].Activities) != 1 {
		t.Errorf("Second group = %q with %d records, want Yesterday with 1",
			groups[1].Label, len(groups[1].Activities))
	}
	if groups[0].Activities[0].ID != 3 {
		t.Error("Input order not preserved within group")
	}
}
