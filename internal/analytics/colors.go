// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package analytics

import "strings"

// defaultPalette is the rotation fallback for events with no configured or
// semantic color, indexed by first-seen order.
var defaultPalette = []string{
	"#10b981", "#3b82f6", "#ef4444", "#f59e0b", "#8b5cf6", "#ec4899",
	"#14b8a6", "#f97316", "#6366f1", "#84cc16", "#06b6d4", "#a855f7",
}

// semanticColors maps event-name keywords to colors. Ordered so substring
// matching is deterministic when an event matches several keywords.
var semanticColors = []struct {
	keyword string
	color   string
}{
	{"creat", "#10b981"},
	{"add", "#10b981"},
	{"restor", "#10b981"},
	{"updat", "#3b82f6"},
	{"edit", "#3b82f6"},
	{"chang", "#3b82f6"},
	{"delet", "#ef4444"},
	{"remov", "#ef4444"},
	{"destroy", "#ef4444"},
	{"fail", "#ef4444"},
	{"error", "#ef4444"},
	{"login", "#14b8a6"},
	{"logout", "#f59e0b"},
	{"export", "#8b5cf6"},
	{"import", "#8b5cf6"},
}

// colorResolver assigns display colors to event tags. Resolution order:
// configured mapping, semantic keyword match, then palette rotation in
// first-seen order. A resolver is not safe for concurrent use; build one
// per computation.
type colorResolver struct {
	configured map[string]string
	assigned   map[string]string
	nextIndex  int
}

func newColorResolver(configured map[string]string) *colorResolver {
	return &colorResolver{
		configured: configured,
		assigned:   map[string]string{},
	}
}

func (r *colorResolver) colorFor(event string) string {
	if c, ok := r.assigned[event]; ok {
		return c
	}

	color := r.resolve(event)
	r.assigned[event] = color
	return color
}

func (r *colorResolver) resolve(event string) string {
	if c, ok := r.configured[event]; ok {
		return c
	}

	lower := strings.ToLower(event)
	for _, sc := range semanticColors {
		if strings.Contains(lower, sc.keyword) {
			return sc.color
		}
	}

	c := defaultPalette[r.nextIndex%len(defaultPalette)]
	r.nextIndex++
	return c
}
