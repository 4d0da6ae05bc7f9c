// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/activitylens/internal/models"
)

// DayCount is a per-day aggregate row ("2006-01-02" date keys).
type DayCount struct {
	Date  string
	Count int
}

// EventCount is a per-event aggregate row.
type EventCount struct {
	Event string
	Count int
}

// KeyCount is a generic grouped count keyed by a string column.
type KeyCount struct {
	Key   string
	Count int
}

// CauserCount is a per-causer aggregate row.
type CauserCount struct {
	CauserType string
	CauserID   int64
	Count      int
}

// CountInRange counts records matching the filter with an additional
// created_at bound layered on top. The extra bound intersects with any
// date constraint already in the filter.
func (db *DB) CountInRange(ctx context.Context, filter *models.ActivityFilter, start, end time.Time) (int, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return 0, err
	}
	clauses = append(clauses, "a.created_at >= ?", "a.created_at <= ?")
	args = append(args, start, end)

	var count int
	query := `SELECT COUNT(*) FROM activities a` + whereSQL(clauses)
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, models.NewSystemError("count activities in range", err)
	}
	return count, nil
}

// CountsByDay returns per-day counts for records matching the filter within
// [start, end]. Days with no activity are absent from the result; callers
// zero-fill as needed.
func (db *DB) CountsByDay(ctx context.Context, filter *models.ActivityFilter, start, end time.Time) ([]DayCount, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, "a.created_at >= ?", "a.created_at <= ?")
	args = append(args, start, end)

	query := `SELECT strftime(a.created_at, '%Y-%m-%d') AS day, COUNT(*) AS cnt
		FROM activities a` + whereSQL(clauses) + `
		GROUP BY day
		ORDER BY day`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewSystemError("query counts by day", err)
	}
	defer closeRows(rows)

	counts := []DayCount{}
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, models.NewSystemError("scan counts by day", err)
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// EventBreakdownCounts groups matching records by event tag, largest first.
// Ties break alphabetically so the order is stable across runs.
func (db *DB) EventBreakdownCounts(ctx context.Context, filter *models.ActivityFilter) ([]EventCount, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}

	query := `SELECT a.event, COUNT(*) AS cnt
		FROM activities a` + whereSQL(clauses) + `
		GROUP BY a.event
		ORDER BY cnt DESC, a.event ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewSystemError("query event breakdown", err)
	}
	defer closeRows(rows)

	counts := []EventCount{}
	for rows.Next() {
		var ec EventCount
		if err := rows.Scan(&ec.Event, &ec.Count); err != nil {
			return nil, models.NewSystemError("scan event breakdown", err)
		}
		counts = append(counts, ec)
	}
	return counts, rows.Err()
}

// SubjectTypeBreakdownCounts groups matching records by subject type,
// largest first. Records without a subject are skipped.
func (db *DB) SubjectTypeBreakdownCounts(ctx context.Context, filter *models.ActivityFilter) ([]KeyCount, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, "a.subject_type IS NOT NULL")

	query := `SELECT a.subject_type, COUNT(*) AS cnt
		FROM activities a` + whereSQL(clauses) + `
		GROUP BY a.subject_type
		ORDER BY cnt DESC, a.subject_type ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewSystemError("query subject breakdown", err)
	}
	defer closeRows(rows)

	counts := []KeyCount{}
	for rows.Next() {
		var kc KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, models.NewSystemError("scan subject breakdown", err)
		}
		counts = append(counts, kc)
	}
	return counts, rows.Err()
}

// EventDayCount is a per-event per-day aggregate row.
type EventDayCount struct {
	Event string
	Date  string
	Count int
}

// CountsByDayPerEvent returns per-event per-day counts within [start, end],
// feeding trend chart datasets.
func (db *DB) CountsByDayPerEvent(ctx context.Context, filter *models.ActivityFilter, start, end time.Time) ([]EventDayCount, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, "a.created_at >= ?", "a.created_at <= ?")
	args = append(args, start, end)

	query := `SELECT a.event, strftime(a.created_at, '%Y-%m-%d') AS day, COUNT(*) AS cnt
		FROM activities a` + whereSQL(clauses) + `
		GROUP BY a.event, day
		ORDER BY a.event, day`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewSystemError("query counts by day per event", err)
	}
	defer closeRows(rows)

	counts := []EventDayCount{}
	for rows.Next() {
		var edc EventDayCount
		if err := rows.Scan(&edc.Event, &edc.Date, &edc.Count); err != nil {
			return nil, models.NewSystemError("scan counts by day per event", err)
		}
		counts = append(counts, edc)
	}
	return counts, rows.Err()
}

// TopCausers groups matching records by causer, largest first. System-caused
// records (no causer) are excluded. Callers filter out causers that no
// longer resolve, so the limit here should over-fetch.
func (db *DB) TopCausers(ctx context.Context, filter *models.ActivityFilter, limit int) ([]CauserCount, error) {
	if limit < 1 {
		limit = 10
	}

	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, "a.causer_type IS NOT NULL", "a.causer_id IS NOT NULL")

	query := `SELECT a.causer_type, a.causer_id, COUNT(*) AS cnt
		FROM activities a` + whereSQL(clauses) + `
		GROUP BY a.causer_type, a.causer_id
		ORDER BY cnt DESC, a.causer_type ASC, a.causer_id ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewSystemError("query top causers", err)
	}
	defer closeRows(rows)

	counts := []CauserCount{}
	for rows.Next() {
		var cc CauserCount
		if err := rows.Scan(&cc.CauserType, &cc.CauserID, &cc.Count); err != nil {
			return nil, models.NewSystemError("scan top causers", err)
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// CountDistinctCausers counts distinct (causer_type, causer_id) pairs with
// activity on or after since, within the filter's constraints.
func (db *DB) CountDistinctCausers(ctx context.Context, filter *models.ActivityFilter, since time.Time) (int, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return 0, err
	}
	clauses = append(clauses, "a.causer_type IS NOT NULL", "a.causer_id IS NOT NULL", "a.created_at >= ?")
	args = append(args, since)

	query := `SELECT COUNT(*) FROM (
		SELECT DISTINCT a.causer_type, a.causer_id
		FROM activities a` + whereSQL(clauses) + `
	) t`

	var count int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, models.NewSystemError("count distinct causers", err)
	}
	return count, nil
}

// CauserStats returns one causer's total record count and first/last
// activity timestamps. A causer with no records has total 0 and nil bounds.
func (db *DB) CauserStats(ctx context.Context, typeTag string, id int64) (total int, first, last *time.Time, err error) {
	var (
		firstTS sql.NullTime
		lastTS  sql.NullTime
	)
	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at), MAX(created_at)
		FROM activities
		WHERE causer_type = ? AND causer_id = ?`,
		typeTag, id).Scan(&total, &firstTS, &lastTS)
	if err != nil {
		return 0, nil, nil, models.NewSystemError("query causer stats", err)
	}

	if firstTS.Valid {
		first = &firstTS.Time
	}
	if lastTS.Valid {
		last = &lastTS.Time
	}
	return total, first, last, nil
}

// CauserEventBreakdown groups one causer's records by event tag.
func (db *DB) CauserEventBreakdown(ctx context.Context, typeTag string, id int64) ([]KeyCount, error) {
	return db.causerGroupedCounts(ctx, typeTag, id, "event")
}

// CauserSubjectBreakdown groups one causer's records by subject type.
// Records without a subject group under the empty key.
func (db *DB) CauserSubjectBreakdown(ctx context.Context, typeTag string, id int64) ([]KeyCount, error) {
	return db.causerGroupedCounts(ctx, typeTag, id, "subject_type")
}

func (db *DB) causerGroupedCounts(ctx context.Context, typeTag string, id int64, column string) ([]KeyCount, error) {
	// column is one of two compile-time constants, never user input
	query := `SELECT COALESCE(` + column + `, ''), COUNT(*) AS cnt
		FROM activities
		WHERE causer_type = ? AND causer_id = ?
		GROUP BY 1
		ORDER BY cnt DESC, 1 ASC`

	rows, err := db.conn.QueryContext(ctx, query, typeTag, id)
	if err != nil {
		return nil, models.NewSystemError("query causer breakdown", err)
	}
	defer closeRows(rows)

	counts := []KeyCount{}
	for rows.Next() {
		var kc KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, models.NewSystemError("scan causer breakdown", err)
		}
		counts = append(counts, kc)
	}
	return counts, rows.Err()
}

// CauserCountsByDay returns one causer's per-day counts within [start, end].
func (db *DB) CauserCountsByDay(ctx context.Context, typeTag string, id int64, start, end time.Time) ([]DayCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT strftime(created_at, '%Y-%m-%d') AS day, COUNT(*) AS cnt
		FROM activities
		WHERE causer_type = ? AND causer_id = ? AND created_at >= ? AND created_at <= ?
		GROUP BY day
		ORDER BY day`,
		typeTag, id, start, end)
	if err != nil {
		return nil, models.NewSystemError("query causer counts by day", err)
	}
	defer closeRows(rows)

	counts := []DayCount{}
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, models.NewSystemError("scan causer counts by day", err)
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// EarliestActivity returns the oldest record timestamp matching the filter,
// used to derive a timeline's effective start when the filter has no date
// bound. Returns ok=false for an empty result set.
func (db *DB) EarliestActivity(ctx context.Context, filter *models.ActivityFilter) (time.Time, bool, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return time.Time{}, false, err
	}

	var ts sql.NullTime
	query := `SELECT MIN(a.created_at) FROM activities a` + whereSQL(clauses)
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&ts); err != nil {
		return time.Time{}, false, models.NewSystemError("query earliest activity", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time, true, nil
}
