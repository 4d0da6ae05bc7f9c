// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/activitylens/internal/models"
)

// appendInClause is a generic helper for building SQL IN clauses.
//
// Example:
//
//	appendInClause("a.event", []string{"created", "updated"}, &clauses, &args)
//	// Adds: "a.event IN (?, ?)" to clauses
//	// Adds: ["created", "updated"] to args
func appendInClause(columnName string, values []string, whereClauses *[]string, args *[]interface{}) {
	if len(values) == 0 {
		return
	}

	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}

	*whereClauses = append(*whereClauses, fmt.Sprintf("%s IN (%s)", columnName, strings.Join(placeholders, ", ")))
}

// buildFilterConditions builds WHERE clause conditions and args from an
// ActivityFilter. Conditions reference the activities table under alias "a"
// and are self-contained (the free-text search resolves causer names via a
// correlated subquery, so callers never need an extra join).
//
// All filter fields combine with AND logic. Non-numeric causer/subject ids
// are treated as absent. A malformed date fails the whole evaluation.
func (db *DB) buildFilterConditions(filter *models.ActivityFilter, now time.Time) ([]string, []interface{}, error) {
	whereClauses := []string{}
	args := []interface{}{}

	start, end, err := filter.DateRange(now)
	if err != nil {
		return nil, nil, err
	}
	if start != nil {
		whereClauses = append(whereClauses, "a.created_at >= ?")
		args = append(args, *start)
	}
	if end != nil {
		whereClauses = append(whereClauses, "a.created_at <= ?")
		args = append(args, *end)
	}

	if filter.CauserType != "" {
		whereClauses = append(whereClauses, "a.causer_type = ?")
		args = append(args, filter.CauserType)
	}
	if id, ok := filter.NumericCauserID(); ok {
		whereClauses = append(whereClauses, "a.causer_id = ?")
		args = append(args, id)
	}

	if filter.SubjectType != "" {
		whereClauses = append(whereClauses, "a.subject_type = ?")
		args = append(args, filter.SubjectType)
	}
	if id, ok := filter.NumericSubjectID(); ok {
		whereClauses = append(whereClauses, "a.subject_id = ?")
		args = append(args, id)
	}

	appendInClause("a.event", filter.EventTypes, &whereClauses, &args)

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		whereClauses = append(whereClauses, `(a.description ILIKE ? ESCAPE '\'
			OR COALESCE(a.causer_type, '') ILIKE ? ESCAPE '\'
			OR COALESCE(a.subject_type, '') ILIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM actors ac
				WHERE ac.actor_type = a.causer_type
				  AND ac.actor_id = a.causer_id
				  AND ac.name ILIKE ? ESCAPE '\'
			))`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if filter.PropertyKey != "" {
		clause, keyArgs := db.propertyKeyCondition(filter.PropertyKey)
		whereClauses = append(whereClauses, clause)
		args = append(args, keyArgs...)
	}

	return whereClauses, args, nil
}

// propertyKeyCondition matches records whose properties document contains the
// given top-level key, regardless of its value. Uses json_extract when the
// json extension is loaded, otherwise falls back to a substring match on the
// raw document.
func (db *DB) propertyKeyCondition(key string) (string, []interface{}) {
	if db.jsonAvailable {
		path := fmt.Sprintf(`$."%s"`, strings.ReplaceAll(key, `"`, `\"`))
		return `(a.properties IS NOT NULL AND json_extract(a.properties, ?) IS NOT NULL)`, []interface{}{path}
	}
	return `(a.properties IS NOT NULL AND a.properties LIKE ? ESCAPE '\')`,
		[]interface{}{fmt.Sprintf(`%%"%s"%%`, escapeLike(key))}
}

// whereSQL joins conditions into a WHERE clause, or returns an empty string
// when there are none.
func whereSQL(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
