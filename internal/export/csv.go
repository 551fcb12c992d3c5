package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"scantab/internal/domain"
)

// BOM is the UTF-8 byte order mark, prepended for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a table as CSV: BOM, header row, then data rows. Missing
// cells render as empty fields.
func WriteCSV(w io.Writer, table *domain.Table) error {
	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for col, cell := range row {
			record[col] = renderCell(cell, table.Types[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
