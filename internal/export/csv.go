// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tomtom215/activitylens/internal/models"
)

// CSVRenderer writes RFC 4180 delimited text with a header row.
type CSVRenderer struct{}

func (r *CSVRenderer) Format() string    { return models.FormatCSV }
func (r *CSVRenderer) Extension() string { return "csv" }

func (r *CSVRenderer) Render(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Headers(doc.Columns)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range doc.Rows() {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close csv file: %w", err)
	}
	return nil
}
