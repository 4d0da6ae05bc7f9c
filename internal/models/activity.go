// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Activity represents a single audit record from the append-only activity store.
// Records are never mutated after creation; this system only reads them.
//
// Causer and subject are polymorphic references (type tag + numeric id) that may
// point to entities that no longer exist. Display helpers degrade gracefully:
// a missing causer renders as "System", a missing subject as "N/A".
//
// Fields:
//   - ID: unique integer, stable, monotonic by insertion
//   - CreatedAt: insertion timestamp, immutable
//   - Event: short free-form tag (e.g. "created", "updated", "deleted")
//   - CauserType/CauserID: actor reference (nil for system-caused events)
//   - SubjectType/SubjectID: affected entity reference (nil when absent)
//   - Properties: arbitrary key-value document, optionally containing
//     "old"/"attributes" sub-maps describing a before/after diff
//   - Description: free-text human-readable summary
type Activity struct {
	ID          int64                  `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Event       string                 `json:"event"`
	CauserType  *string                `json:"causer_type,omitempty"`
	CauserID    *int64                 `json:"causer_id,omitempty"`
	SubjectType *string                `json:"subject_type,omitempty"`
	SubjectID   *int64                 `json:"subject_id,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Description string                 `json:"description"`

	// CauserName is the resolved display name of the causer, populated by
	// the resolver registry. Empty when the causer is absent or unresolvable.
	CauserName string `json:"causer_name,omitempty"`
}

// HasCauser reports whether the activity carries a causer reference.
func (a *Activity) HasCauser() bool {
	return a.CauserType != nil && a.CauserID != nil
}

// HasSubject reports whether the activity carries a subject reference.
func (a *Activity) HasSubject() bool {
	return a.SubjectType != nil && a.SubjectID != nil
}

// CauserDisplay returns the causer's display name, falling back to "System"
// for system-caused events or unresolvable causers.
func (a *Activity) CauserDisplay() string {
	if a.CauserName != "" {
		return a.CauserName
	}
	if a.HasCauser() {
		return fmt.Sprintf("%s #%d", shortTypeName(*a.CauserType), *a.CauserID)
	}
	return "System"
}

// SubjectDisplay returns the subject as "Type #id" or "N/A" when absent.
func (a *Activity) SubjectDisplay() string {
	if !a.HasSubject() {
		return "N/A"
	}
	return fmt.Sprintf("%s #%d", shortTypeName(*a.SubjectType), *a.SubjectID)
}

// EventDisplay returns the event tag, falling back to "unknown" when empty.
func (a *Activity) EventDisplay() string {
	if a.Event == "" {
		return "unknown"
	}
	return a.Event
}

// OldValues returns the "old" sub-map of the properties document, or nil.
func (a *Activity) OldValues() map[string]interface{} {
	return subMap(a.Properties, "old")
}

// NewValues returns the "attributes" sub-map of the properties document, or nil.
func (a *Activity) NewValues() map[string]interface{} {
	return subMap(a.Properties, "attributes")
}

// ChangeSummary produces a compact human-readable summary of the before/after
// diff carried in the properties document, e.g.
//
//	status: "draft" -> "published"; title: added
//
// Returns "No changes tracked" when the record carries no diff.
func (a *Activity) ChangeSummary() string {
	oldVals := a.OldValues()
	newVals := a.NewValues()
	if len(oldVals) == 0 && len(newVals) == 0 {
		return "No changes tracked"
	}

	keys := make([]string, 0, len(newVals)+len(oldVals))
	seen := make(map[string]bool, len(newVals)+len(oldVals))
	for k := range newVals {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range oldVals {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		oldV, hadOld := oldVals[k]
		newV, hasNew := newVals[k]
		switch {
		case hadOld && hasNew:
			if fmt.Sprint(oldV) == fmt.Sprint(newV) {
				continue
			}
			if IsSensitiveKey(k) {
				parts = append(parts, fmt.Sprintf("%s: %s", k, RedactedPlaceholder))
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s -> %s", k, formatValue(oldV), formatValue(newV)))
		case hasNew:
			parts = append(parts, fmt.Sprintf("%s: added", k))
		default:
			parts = append(parts, fmt.Sprintf("%s: removed", k))
		}
	}
	if len(parts) == 0 {
		return "No changes tracked"
	}
	return strings.Join(parts, "; ")
}

// PropertiesJSON returns the properties document as a JSON string with
// sensitive values redacted, or an empty string when the record has no
// properties.
func (a *Activity) PropertiesJSON() string {
	if len(a.Properties) == 0 {
		return ""
	}
	data, err := json.Marshal(RedactProperties(a.Properties))
	if err != nil {
		return ""
	}
	return string(data)
}

// shortTypeName strips a namespaced type tag down to its final segment,
// so "App\\Models\\User" and "models.User" both render as "User".
func shortTypeName(t string) string {
	if idx := strings.LastIndexAny(t, "\\./"); idx >= 0 && idx < len(t)-1 {
		return t[idx+1:]
	}
	return t
}

func subMap(props map[string]interface{}, key string) map[string]interface{} {
	if props == nil {
		return nil
	}
	if m, ok := props[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprint(val)
	}
}
