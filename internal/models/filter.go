// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"fmt"
	"strconv"
	"time"
)

// Date preset names accepted by ActivityFilter.DatePreset.
// PresetCustom is a sentinel: it defers to the explicit StartDate/EndDate
// fields instead of resolving a range itself.
const (
	PresetToday      = "today"
	PresetYesterday  = "yesterday"
	PresetLast7Days  = "last_7_days"
	PresetLast30Days = "last_30_days"
	PresetThisMonth  = "this_month"
	PresetLastMonth  = "last_month"
	PresetCustom     = "custom"
)

// DateFormat is the wire format for explicit filter dates.
const DateFormat = "2006-01-02"

// ActivityFilter is the immutable filter specification applied to activity
// queries, analytics, and exports. All fields are independently optional;
// the zero value matches all records.
//
// Fields:
//   - Search: free-text substring match across description and
//     causer/subject display fields
//   - DatePreset: named date range (see Preset* constants); takes precedence
//     over StartDate/EndDate unless set to "custom"
//   - StartDate/EndDate: explicit inclusive date range, "2006-01-02" format
//   - CauserType/CauserID: actor constraint; either or both may be set.
//     Non-numeric ids are treated as absent
//   - SubjectType/SubjectID: affected-entity constraint, same semantics
//   - EventTypes: match any record whose event is in the set (empty = no filter)
//   - PropertyKey: match records whose properties document contains the key,
//     regardless of its value
type ActivityFilter struct {
	Search      string   `json:"search,omitempty" validate:"omitempty,max=255"`
	DatePreset  string   `json:"date_preset,omitempty" validate:"omitempty,oneof=today yesterday last_7_days last_30_days this_month last_month custom"`
	StartDate   string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CauserType  string   `json:"causer_type,omitempty" validate:"omitempty,max=255"`
	CauserID    string   `json:"causer_id,omitempty"`
	SubjectType string   `json:"subject_type,omitempty" validate:"omitempty,max=255"`
	SubjectID   string   `json:"subject_id,omitempty"`
	EventTypes  []string `json:"event_types,omitempty" validate:"omitempty,dive,max=100"`
	PropertyKey string   `json:"property_key,omitempty" validate:"omitempty,max=255"`
}

// IsEmpty reports whether the filter carries no constraints at all.
func (f *ActivityFilter) IsEmpty() bool {
	return f.Search == "" &&
		f.DatePreset == "" &&
		f.StartDate == "" &&
		f.EndDate == "" &&
		f.CauserType == "" &&
		f.CauserID == "" &&
		f.SubjectType == "" &&
		f.SubjectID == "" &&
		len(f.EventTypes) == 0 &&
		f.PropertyKey == ""
}

// NumericCauserID returns the causer id as an integer. Non-numeric or empty
// ids are treated as absent, never as query errors.
func (f *ActivityFilter) NumericCauserID() (int64, bool) {
	return parseNumericID(f.CauserID)
}

// NumericSubjectID returns the subject id as an integer, absent when
// non-numeric or empty.
func (f *ActivityFilter) NumericSubjectID() (int64, bool) {
	return parseNumericID(f.SubjectID)
}

func parseNumericID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// DateRange resolves the filter's effective [start, end] bounds at evaluation
// time, relative to now. A named preset wins over explicit dates unless the
// preset is "custom". Explicit end dates are extended to the end of the day
// so the range is inclusive.
//
// Returns nil bounds when the filter carries no date constraint. A malformed
// explicit date fails the whole evaluation with a ValidationError.
func (f *ActivityFilter) DateRange(now time.Time) (start, end *time.Time, err error) {
	if f.DatePreset != "" && f.DatePreset != PresetCustom {
		s, e, ok := resolvePreset(f.DatePreset, now)
		if !ok {
			return nil, nil, NewValidationError(fmt.Sprintf("unknown date preset %q", f.DatePreset), map[string]interface{}{
				"field": "date_preset",
				"value": f.DatePreset,
			})
		}
		return &s, &e, nil
	}

	if f.StartDate != "" {
		t, perr := time.ParseInLocation(DateFormat, f.StartDate, now.Location())
		if perr != nil {
			return nil, nil, NewValidationError(fmt.Sprintf("invalid start_date %q, expected YYYY-MM-DD", f.StartDate), map[string]interface{}{
				"field": "start_date",
				"value": f.StartDate,
			})
		}
		start = &t
	}
	if f.EndDate != "" {
		t, perr := time.ParseInLocation(DateFormat, f.EndDate, now.Location())
		if perr != nil {
			return nil, nil, NewValidationError(fmt.Sprintf("invalid end_date %q, expected YYYY-MM-DD", f.EndDate), map[string]interface{}{
				"field": "end_date",
				"value": f.EndDate,
			})
		}
		eod := endOfDay(t)
		end = &eod
	}
	return start, end, nil
}

// resolvePreset maps a preset name to concrete bounds relative to now.
func resolvePreset(preset string, now time.Time) (start, end time.Time, ok bool) {
	today := startOfDay(now)
	switch preset {
	case PresetToday:
		return today, endOfDay(now), true
	case PresetYesterday:
		y := today.AddDate(0, 0, -1)
		return y, endOfDay(y), true
	case PresetLast7Days:
		return today.AddDate(0, 0, -6), endOfDay(now), true
	case PresetLast30Days:
		return today.AddDate(0, 0, -29), endOfDay(now), true
	case PresetThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, endOfDay(now), true
	case PresetLastMonth:
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		firstOfLast := firstOfThis.AddDate(0, -1, 0)
		return firstOfLast, firstOfThis.Add(-time.Nanosecond), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
