// internal/export/export.go
package export

import (
	"expense-tracker/internal/report"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Monthly Breakdown"
	FileName    = "monthly_breakdown.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MonthlyWorkbook renders the pivot into a single-sheet xlsx:
// header row of months, one row per category, then the totals row.
func MonthlyWorkbook(t report.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	// 4 = "#,##0.00"
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("number style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("total style: %w", err)
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	if err := set(1, 1, "Category"); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for j, month := range t.Months {
		if err := set(j+2, 1, month); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, category := range t.Categories {
		row := i + 2
		if err := set(1, row, category); err != nil {
			return nil, fmt.Errorf("write category: %w", err)
		}
		for j, v := range t.Cells[i] {
			if err := set(j+2, row, v.InexactFloat64()); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	totalRow := len(t.Categories) + 2
	if err := set(1, totalRow, t.TotalLabel()); err != nil {
		return nil, fmt.Errorf("write total: %w", err)
	}
	for j, v := range t.Totals {
		if err := set(j+2, totalRow, v.InexactFloat64()); err != nil {
			return nil, fmt.Errorf("write total: %w", err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Months) + 1)
	if err != nil {
		return nil, fmt.Errorf("last column: %w", err)
	}
	styles := []struct {
		from, to string
		id       int
	}{
		{"A1", lastCol + "1", headerStyle},
		{"B2", fmt.Sprintf("%s%d", lastCol, totalRow), numberStyle},
		{fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), totalStyle},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(SheetName, s.from, s.to, s.id); err != nil {
			return nil, fmt.Errorf("apply style: %w", err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 18); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
