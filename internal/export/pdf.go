// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/tomtom215/activitylens/internal/models"
)

// PDFRenderer writes a landscape table document with a repeated header row.
type PDFRenderer struct{}

func (r *PDFRenderer) Format() string    { return models.FormatPDF }
func (r *PDFRenderer) Extension() string { return "pdf" }

func (r *PDFRenderer) Render(path string, doc *Document) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)

	headers := Headers(doc.Columns)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right
	colWidth := usable / float64(len(headers))

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range headers {
			pdf.CellFormat(colWidth, 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(usable, 8, "Activity Log Export", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(usable, 5,
			fmt.Sprintf("Generated %s, %d records",
				doc.GeneratedAt.Format("2006-01-02 15:04:05"), len(doc.Activities)),
			"", 1, "L", false, 0, "")
		pdf.Ln(2)
		writeHeader()
	})

	pdf.AddPage()

	for _, row := range doc.Rows() {
		for _, v := range row {
			pdf.CellFormat(colWidth, 6, truncateCell(v, 60), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write pdf file: %w", err)
	}
	return nil
}

// truncateCell keeps table cells from overflowing their column. Counts
// runes, not bytes, so multi-byte text is never cut mid-character.
func truncateCell(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
