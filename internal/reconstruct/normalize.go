package reconstruct

import (
	"fmt"
	"strconv"
	"strings"

	"scantab/internal/domain"
)

// Normalize turns a grid into a rectangular typed table. Rows are padded or
// truncated to the modal row width, the first row becomes the header, empty
// cells become missing markers, and each column is coerced to numeric when
// every non-missing value in it parses as a number.
//
// Grids with zero or one rows yield a header and no data rows.
func Normalize(grid Grid) *domain.Table {
	if len(grid) == 0 {
		return &domain.Table{}
	}

	width := modalWidth(grid)
	if width == 0 {
		return &domain.Table{}
	}

	rows := make([][]string, 0, len(grid))
	for _, row := range grid {
		rows = append(rows, normalizeRow(row, width))
	}

	table := &domain.Table{
		Headers: headerLabels(rows[0]),
		Types:   make([]domain.ColumnType, width),
	}
	for _, row := range rows[1:] {
		cells := make([]domain.Cell, width)
		for i, text := range row {
			if text == "" {
				cells[i] = domain.Cell{Missing: true}
			} else {
				cells[i] = domain.Cell{Text: text}
			}
		}
		table.Rows = append(table.Rows, cells)
	}

	coerceColumns(table)
	return table
}

// modalWidth returns the most frequent row length. Ties break toward the
// smallest width so the result is deterministic.
func modalWidth(grid Grid) int {
	counts := make(map[int]int)
	for _, row := range grid {
		counts[len(row)]++
	}

	width, best := 0, 0
	for w, n := range counts {
		if n > best || (n == best && w < width) {
			width, best = w, n
		}
	}
	return width
}

// normalizeRow pads short rows with empty cells on the right and truncates
// trailing cells from long ones.
func normalizeRow(row Row, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = row[i].Text
	}
	return out
}

// headerLabels converts the first normalized row into column labels,
// substituting positional labels for empty header cells.
func headerLabels(header []string) []string {
	labels := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			labels[i] = fmt.Sprintf("Column %d", i+1)
		} else {
			labels[i] = h
		}
	}
	return labels
}

// coerceColumns applies all-or-nothing numeric coercion per column: the
// column becomes numeric only when every non-missing value parses, and a
// column with no non-missing values stays text.
func coerceColumns(table *domain.Table) {
	for col := range table.Types {
		table.Types[col] = domain.ColumnTypeText

		numeric := false
		values := make([]float64, len(table.Rows))
		for i, row := range table.Rows {
			if row[col].Missing {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col].Text), 64)
			if err != nil {
				numeric = false
				break
			}
			values[i] = v
			numeric = true
		}
		if !numeric {
			continue
		}

		table.Types[col] = domain.ColumnTypeNumber
		for i := range table.Rows {
			if !table.Rows[i][col].Missing {
				table.Rows[i][col].Number = values[i]
			}
		}
	}
}
