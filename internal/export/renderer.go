// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package export materializes filtered activity sets into downloadable
// files. Four renderers (csv, json, xlsx, pdf) sit behind a registry with
// configured fallbacks; small result sets render synchronously while large
// ones run as background jobs with a badger-backed status store.
package export

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tomtom215/activitylens/internal/models"
)

// Document is the renderer input: the activity set plus everything needed
// to shape the output file.
type Document struct {
	Activities  []models.Activity
	Columns     []string
	Filter      models.ActivityFilter
	GeneratedAt time.Time
}

// Rows renders all activities as cell rows in column order.
func (d *Document) Rows() [][]string {
	rows := make([][]string, len(d.Activities))
	for i := range d.Activities {
		rows[i] = Row(&d.Activities[i], d.Columns)
	}
	return rows
}

// Renderer writes a document to a file in one output format.
type Renderer interface {
	// Format returns the format id this renderer produces.
	Format() string

	// Extension returns the file extension without the dot.
	Extension() string

	// Render writes the document to path. A failed render must not leave
	// a partial file behind where avoidable.
	Render(path string, doc *Document) error
}

// exportFileName builds a collision-resistant file name,
// activity_log_export_<timestamp>_<rand8>.<ext>.
func exportFileName(now time.Time, ext string) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("activity_log_export_%s.%s", now.Format("20060102_150405"), ext)
	}
	return fmt.Sprintf("activity_log_export_%s_%s.%s",
		now.Format("20060102_150405"), hex.EncodeToString(buf), ext)
}
