// Package export renders tabular datasets as CSV or PDF documents.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ErrUnsupportedFormat is returned for formats other than csv and pdf.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// ParseFormat maps a query value to a Format. Empty defaults to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Dataset is an ordered table. Each row holds one cell per column.
type Dataset struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Render encodes the dataset in the requested format.
func Render(format Format, data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, errors.New("export: dataset has no columns")
	}
	switch format {
	case FormatCSV:
		return renderCSV(data)
	case FormatPDF:
		return renderPDF(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
