package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"scantab/internal/domain"
)

// Column display width margin and cap, in character units.
const (
	columnWidthMargin = 2
	maxColumnWidth    = 50
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Report"

// Workbook builds a single-sheet xlsx workbook from a table: header row of
// column labels, one row per data row, numeric columns written as numbers.
// Each column's display width is sized to its longest rendered value plus a
// small margin, capped at 50 character units.
func Workbook(table *domain.Table, sheetName string) (*excelize.File, error) {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	for col, label := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, label); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for r, row := range table.Rows {
		for col, cell := range row {
			if cell.Missing {
				continue
			}
			name, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			var value interface{} = cell.Text
			if table.Types[col] == domain.ColumnTypeNumber {
				value = cell.Number
			}
			if err := f.SetCellValue(sheetName, name, value); err != nil {
				return nil, fmt.Errorf("writing cell %s: %w", name, err)
			}
		}
	}

	for col := range table.Headers {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, colName, colName, columnWidth(table, col)); err != nil {
			return nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	return f, nil
}

// WriteWorkbook builds the workbook and writes it to w.
func WriteWorkbook(w io.Writer, table *domain.Table, sheetName string) error {
	f, err := Workbook(table, sheetName)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func columnWidth(table *domain.Table, col int) float64 {
	longest := len(table.Headers[col])
	for _, row := range table.Rows {
		if n := len(renderCell(row[col], table.Types[col])); n > longest {
			longest = n
		}
	}
	width := float64(longest + columnWidthMargin)
	if width > maxColumnWidth {
		width = maxColumnWidth
	}
	return width
}

// renderCell returns a cell's display string; missing cells render empty.
func renderCell(cell domain.Cell, colType domain.ColumnType) string {
	if cell.Missing {
		return ""
	}
	if colType == domain.ColumnTypeNumber {
		return strconv.FormatFloat(cell.Number, 'f', -1, 64)
	}
	return cell.Text
}
