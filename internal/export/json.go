// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/models"
)

// jsonExport is the full JSON export document: an export_info envelope plus
// the flattened activity records.
type jsonExport struct {
	ExportInfo models.ExportInfo   `json:"export_info"`
	Activities []map[string]string `json:"activities"`
}

// JSONRenderer writes the structured-data export with its envelope.
type JSONRenderer struct{}

func (r *JSONRenderer) Format() string    { return models.FormatJSON }
func (r *JSONRenderer) Extension() string { return "json" }

func (r *JSONRenderer) Render(path string, doc *Document) error {
	records := make([]map[string]string, len(doc.Activities))
	for i := range doc.Activities {
		records[i] = FlatRecord(&doc.Activities[i], doc.Columns)
	}

	payload := jsonExport{
		ExportInfo: models.ExportInfo{
			ExportedAt:    doc.GeneratedAt,
			RecordCount:   len(doc.Activities),
			Filters:       doc.Filter,
			Columns:       doc.Columns,
			FormatVersion: models.ExportFormatVersion,
		},
		Activities: records,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode json export: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close json file: %w", err)
	}
	return nil
}
