// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/activitylens/internal/models"
)

const xlsxSheet = "Activity Log"

// XLSXRenderer writes a spreadsheet via the excelize stream writer, which
// keeps memory flat for row-cap-sized exports.
type XLSXRenderer struct{}

func (r *XLSXRenderer) Format() string    { return models.FormatXLSX }
func (r *XLSXRenderer) Extension() string { return "xlsx" }

func (r *XLSXRenderer) Render(path string, doc *Document) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, len(doc.Columns))
	for i, h := range Headers(doc.Columns) {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range doc.Rows() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("compute cell name: %w", err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush stream writer: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("save xlsx file: %w", err)
	}
	return nil
}
