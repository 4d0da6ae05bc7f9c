// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import "time"

// DateGroup is one calendar day's worth of records in a grouped timeline
// page, with a human-friendly label.
type DateGroup struct {
	Date       string     `json:"date"`
	Label      string     `json:"label"`
	Activities []Activity `json:"activities"`
}

// HumanDateLabel renders a date relative to now: "Today", "Yesterday", the
// weekday name within the trailing week, "January 2" within the same year,
// else "January 2, 2006".
// Days are compared in now's location so the boundary falls on the local
// midnight rather than the UTC one.
func HumanDateLabel(date, now time.Time) string {
	day := startOfDay(date.In(now.Location()))
	today := startOfDay(now)

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.After(today.AddDate(0, 0, -7)) && day.Before(today):
		return day.Weekday().String()
	case day.Year() == today.Year():
		return day.Format("January 2")
	default:
		return day.Format("January 2, 2006")
	}
}

// GroupActivitiesByDate buckets an already-ordered activity slice into
// per-day groups, preserving the input order within and across groups.
func GroupActivitiesByDate(activities []Activity, now time.Time) []DateGroup {
	groups := []DateGroup{}
	index := map[string]int{}

	for _, a := range activities {
		key := a.CreatedAt.Format(DateFormat)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{
				Date:  key,
				Label: HumanDateLabel(a.CreatedAt, now),
			})
		}
		groups[i].Activities = append(groups[i].Activities, a)
	}
	return groups
}
