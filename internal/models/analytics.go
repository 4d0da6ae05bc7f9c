// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"time"
)

// AnalyticsSummary holds the headline counters computed over a filtered
// activity set. The date-bounded counters re-apply the filter with an
// injected date bound; ActiveUsers counts distinct causers with activity
// in a trailing 30-day window.
type AnalyticsSummary struct {
	Total       int `json:"total"`
	Today       int `json:"today"`
	ThisWeek    int `json:"this_week"`
	ThisMonth   int `json:"this_month"`
	ActiveUsers int `json:"active_users"`
}

// EventBreakdownEntry is one row of the event-type breakdown: the event tag,
// its count, its percentage of the filtered total (0 when the total is 0),
// and a display color resolved via the configured mapping, semantic keyword
// match, or palette rotation.
type EventBreakdownEntry struct {
	Event      string  `json:"event"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// TopUserEntry is one row of the top-users ranking. Entries whose causer no
// longer resolves are excluded before ranking.
type TopUserEntry struct {
	CauserType string `json:"causer_type"`
	CauserID   int64  `json:"causer_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// TimelinePoint is a single day in the activity timeline: the day's count
// plus its percentage of the maximum daily count across the range (0 when
// the maximum is 0).
type TimelinePoint struct {
	Date       string  `json:"date"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HeatmapDay is a single day in the trailing-window heatmap. Level is a 0-4
// intensity bucket derived from (count / max-count-in-window) * 100:
// count 0 -> 0; <25 -> 1; <50 -> 2; <75 -> 3; >=75 -> 4.
type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Anomaly flags a day whose count exceeds mean + 2 standard deviations of
// the daily counts in the trailing window.
//
// Fields:
//   - Expected: the window mean rounded to the nearest integer
//   - Deviation: how many standard deviations the count sits above the mean,
//     rounded to 2 decimals
type Anomaly struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	Expected  int     `json:"expected"`
	Deviation float64 `json:"deviation"`
}

// BreakdownEntry is a generic grouped count with percentage of the parent
// total, used for per-user event and subject breakdowns.
type BreakdownEntry struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// UserProfile aggregates one causer's activity: total count, first and last
// activity timestamps, event/subject breakdowns (percentages of the user's
// own total), and a fixed 30-day daily series zero-filled for idle days.
type UserProfile struct {
	CauserType       string           `json:"causer_type"`
	CauserID         int64            `json:"causer_id"`
	Name             string           `json:"name"`
	Total            int              `json:"total"`
	FirstActivity    *time.Time       `json:"first_activity,omitempty"`
	LastActivity     *time.Time       `json:"last_activity,omitempty"`
	EventBreakdown   []BreakdownEntry `json:"event_breakdown"`
	SubjectBreakdown []BreakdownEntry `json:"subject_breakdown"`
	DailyActivity    []TimelinePoint  `json:"daily_activity"`
	RecentActivities []Activity       `json:"recent_activities"`
}

// TrendDataset is one event type's zero-filled daily series within an
// ActivityTrends response, shaped for direct chart consumption.
type TrendDataset struct {
	Event string `json:"event"`
	Color string `json:"color"`
	Data  []int  `json:"data"`
}

// ActivityTrends carries per-event daily series sharing one date axis.
type ActivityTrends struct {
	Dates    []string       `json:"dates"`
	Datasets []TrendDataset `json:"datasets"`
}
