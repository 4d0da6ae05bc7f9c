// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/models"
)

// activityColumns is the canonical column list for activity row scans.
const activityColumns = `a.id, a.created_at, a.event, a.causer_type, a.causer_id,
	a.subject_type, a.subject_id, a.properties, a.description`

// InsertActivity appends a record to the activity store. When the record's
// ID is zero the store assigns the next sequence value. Returns the stored
// record's id.
//
// The store is append-only: there is no update or delete path.
func (db *DB) InsertActivity(ctx context.Context, a *models.Activity) (int64, error) {
	var props interface{}
	if len(a.Properties) > 0 {
		data, err := json.Marshal(a.Properties)
		if err != nil {
			return 0, fmt.Errorf("marshal properties: %w", err)
		}
		props = string(data)
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if a.ID != 0 {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO activities (id, created_at, event, causer_type, causer_id, subject_type, subject_id, properties, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, createdAt, a.Event, a.CauserType, a.CauserID, a.SubjectType, a.SubjectID, props, a.Description)
		if err != nil {
			return 0, fmt.Errorf("insert activity: %w", err)
		}
		return a.ID, nil
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO activities (created_at, event, causer_type, causer_id, subject_type, subject_id, properties, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		createdAt, a.Event, a.CauserType, a.CauserID, a.SubjectType, a.SubjectID, props, a.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	return id, nil
}

// ListActivities returns one deterministically ordered page of records
// matching the filter (newest first, id as tie-breaker) plus pagination
// metadata. Out-of-range pages return an empty page, not an error.
func (db *DB) ListActivities(ctx context.Context, filter *models.ActivityFilter, page, perPage int) (*models.ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	total, err := db.CountActivities(ctx, filter)
	if err != nil {
		return nil, err
	}

	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + activityColumns + ` FROM activities a` + whereSQL(clauses) +
		` ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewSystemError("query activities", err)
	}
	defer closeRows(rows)

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}

	db.resolvers.ResolveCausers(ctx, activities)

	return &models.ActivityPage{
		Activities: activities,
		Pagination: models.NewPagination(page, perPage, total),
	}, nil
}

// GetActivity fetches a single record by id. Returns NotFoundError when the
// id does not exist.
func (db *DB) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities a WHERE a.id = ?`, id)

	a, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("activity", strconv.FormatInt(id, 10))
		}
		return nil, models.NewSystemError("get activity", err)
	}

	if a.HasCauser() {
		if name, ok := db.resolvers.Resolve(ctx, *a.CauserType, *a.CauserID); ok {
			a.CauserName = name
		}
	}
	return a, nil
}

// CountActivities returns the number of records matching the filter.
func (db *DB) CountActivities(ctx context.Context, filter *models.ActivityFilter) (int, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return 0, err
	}

	var count int
	query := `SELECT COUNT(*) FROM activities a` + whereSQL(clauses)
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, models.NewSystemError("count activities", err)
	}
	return count, nil
}

// RecentActivities returns the latest records, newest first, optionally
// bounded to the trailing number of hours (0 means no time bound).
func (db *DB) RecentActivities(ctx context.Context, hours, limit int) ([]models.Activity, error) {
	if limit < 1 {
		limit = 10
	}

	where := ""
	args := []interface{}{}
	if hours > 0 {
		where = " WHERE a.created_at >= ?"
		args = append(args, time.Now().Add(-time.Duration(hours)*time.Hour))
	}
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities a`+where+` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, models.NewSystemError("query recent activities", err)
	}
	defer closeRows(rows)

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}

	db.resolvers.ResolveCausers(ctx, activities)
	return activities, nil
}

// AvailableFilters lists the distinct event, causer, and subject types
// present in the store, each sorted alphabetically.
func (db *DB) AvailableFilters(ctx context.Context) (*models.AvailableFilters, error) {
	result := &models.AvailableFilters{
		EventTypes:   []string{},
		CauserTypes:  []string{},
		SubjectTypes: []string{},
	}

	queries := []struct {
		sql  string
		dest *[]string
	}{
		{`SELECT DISTINCT event FROM activities WHERE event <> '' ORDER BY event`, &result.EventTypes},
		{`SELECT DISTINCT causer_type FROM activities WHERE causer_type IS NOT NULL ORDER BY causer_type`, &result.CauserTypes},
		{`SELECT DISTINCT subject_type FROM activities WHERE subject_type IS NOT NULL ORDER BY subject_type`, &result.SubjectTypes},
	}

	for _, q := range queries {
		rows, err := db.conn.QueryContext(ctx, q.sql)
		if err != nil {
			return nil, models.NewSystemError("query available filters", err)
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				closeRows(rows)
				return nil, models.NewSystemError("scan available filters", err)
			}
			*q.dest = append(*q.dest, v)
		}
		if err := rows.Err(); err != nil {
			closeRows(rows)
			return nil, models.NewSystemError("iterate available filters", err)
		}
		closeRows(rows)
	}

	return result, nil
}

// DescriptionSuggestions returns distinct descriptions matching a prefix,
// used for search autocompletion.
func (db *DB) DescriptionSuggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT description FROM activities
		WHERE description ILIKE ? ESCAPE '\'
		ORDER BY description
		LIMIT ?`,
		escapeLike(prefix)+"%", limit)
	if err != nil {
		return nil, models.NewSystemError("query suggestions", err)
	}
	defer closeRows(rows)

	suggestions := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, models.NewSystemError("scan suggestions", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// AllActivities returns every record matching the filter, newest first,
// bounded by limit. Used by the export pipeline after the row cap has been
// checked against the count.
func (db *DB) AllActivities(ctx context.Context, filter *models.ActivityFilter, limit int) ([]models.Activity, error) {
	clauses, args, err := db.buildFilterConditions(filter, time.Now())
	if err != nil {
		return nil, err
	}
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities a`+whereSQL(clauses)+
			` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, models.NewSystemError("query activities for export", err)
	}
	defer closeRows(rows)

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}

	db.resolvers.ResolveCausers(ctx, activities)
	return activities, nil
}

// SearchSuggestions combines actor names, subject types, and descriptions
// matching a prefix into one autocompletion list, capped at limit.
func (db *DB) SearchSuggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit < 1 {
		limit = 10
	}
	pattern := escapeLike(prefix) + "%"

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT s FROM (
			SELECT name AS s FROM actors WHERE name ILIKE ? ESCAPE '\'
			UNION ALL
			SELECT subject_type AS s FROM activities WHERE subject_type ILIKE ? ESCAPE '\'
			UNION ALL
			SELECT description AS s FROM activities WHERE description ILIKE ? ESCAPE '\'
		) t
		ORDER BY s
		LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, models.NewSystemError("query search suggestions", err)
	}
	defer closeRows(rows)

	suggestions := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, models.NewSystemError("scan search suggestions", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanActivity scans one activity row, decoding the properties document.
func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		a           models.Activity
		causerType  sql.NullString
		causerID    sql.NullInt64
		subjectType sql.NullString
		subjectID   sql.NullInt64
		props       sql.NullString
	)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.Event, &causerType, &causerID,
		&subjectType, &subjectID, &props, &a.Description); err != nil {
		return nil, err
	}

	if causerType.Valid {
		a.CauserType = &causerType.String
	}
	if causerID.Valid {
		a.CauserID = &causerID.Int64
	}
	if subjectType.Valid {
		a.SubjectType = &subjectType.String
	}
	if subjectID.Valid {
		a.SubjectID = &subjectID.Int64
	}
	if props.Valid && props.String != "" {
		if err := json.Unmarshal([]byte(props.String), &a.Properties); err != nil {
			// Tolerate malformed documents written by external producers.
			a.Properties = map[string]interface{}{"_raw": props.String}
		}
	}

	return &a, nil
}

func scanActivities(rows *sql.Rows) ([]models.Activity, error) {
	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, models.NewSystemError("scan activity", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewSystemError("iterate activities", err)
	}
	return activities, nil
}

func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}
