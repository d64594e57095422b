package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM lets spreadsheet tools detect accented labels correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func renderCSV(data Dataset) ([]byte, error) {
	buf := bytes.NewBuffer(append([]byte{}, utf8BOM...))
	writer := csv.NewWriter(buf)
	writer.Comma = ';'
	if err := writer.Write(data.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range data.Rows {
		if len(row) != len(data.Columns) {
			return nil, fmt.Errorf("csv row %d has %d cells, want %d", i, len(row), len(data.Columns))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
