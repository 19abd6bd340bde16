package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/caplink/userpulse/internal/domain/model"
)

// sheetName is the single data sheet in the spreadsheet report.
const sheetName = "User Metrics"

// xlsxHeaders are the column headers, in column order.
var xlsxHeaders = []string{"User ID", "Name", "Company", "Total Posts", "Avg Chars"} //nolint:gochecknoglobals // fixed report layout

// Column sizing.
const (
	minColWidth   = 12.0
	colWidthSlack = 2.0
)

// writeXLSX renders the metrics table as a spreadsheet.
func writeXLSX(path string, ms []model.UserMetrics) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]float64, len(xlsxHeaders))

	for col, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}

		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		widths[col] = float64(len(h))
	}

	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, bold)
	}

	for row, m := range ms {
		values := []any{m.UserID, m.Name, m.Company, m.TotalPosts, m.AvgChars}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}

			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row+2, err)
			}

			if w := float64(len(fmt.Sprint(v))); w > widths[col] {
				widths[col] = w
			}
		}
	}

	// Fit each column to its longest value.
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}

		if w < minColWidth {
			w = minColWidth
		}

		_ = f.SetColWidth(sheetName, name, name, w+colWidthSlack)
	}

	if err := f.SaveAs(path); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}

	return nil
}
