// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"strconv"

	"github.com/tomtom215/activitylens/internal/models"
)

// Column identifiers accepted in export requests and configuration.
const (
	ColID          = "id"
	ColDateTime    = "date_time"
	ColCauser      = "causer"
	ColEvent       = "event"
	ColSubject     = "subject"
	ColDescription = "description"
	ColChanges     = "changes"
	ColProperties  = "properties"
)

// timestampFormat is the human-readable timestamp used in export rows.
const timestampFormat = "2006-01-02 15:04:05"

// columnHeaders maps column ids to display headers.
var columnHeaders = map[string]string{
	ColID:          "ID",
	ColDateTime:    "Date & Time",
	ColCauser:      "Causer",
	ColEvent:       "Event",
	ColSubject:     "Subject",
	ColDescription: "Description",
	ColChanges:     "Changes",
	ColProperties:  "Properties",
}

// Headers returns display headers for a column list. Unknown columns pass
// through verbatim.
func Headers(columns []string) []string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		if h, ok := columnHeaders[c]; ok {
			headers[i] = h
		} else {
			headers[i] = c
		}
	}
	return headers
}

// columnValue maps one activity field to its export cell, applying the
// display fallbacks for missing relations.
func columnValue(a *models.Activity, column string) string {
	switch column {
	case ColID:
		return strconv.FormatInt(a.ID, 10)
	case ColDateTime:
		return a.CreatedAt.Format(timestampFormat)
	case ColCauser:
		return a.CauserDisplay()
	case ColEvent:
		return a.EventDisplay()
	case ColSubject:
		return a.SubjectDisplay()
	case ColDescription:
		return a.Description
	case ColChanges:
		return a.ChangeSummary()
	case ColProperties:
		return a.PropertiesJSON()
	default:
		return ""
	}
}

// Row renders one activity as export cells in column order.
func Row(a *models.Activity, columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = columnValue(a, c)
	}
	return row
}

// FlatRecord renders one activity as a column-keyed map for structured
// exports.
func FlatRecord(a *models.Activity, columns []string) map[string]string {
	record := make(map[string]string, len(columns))
	for _, c := range columns {
		record[c] = columnValue(a, c)
	}
	return record
}
