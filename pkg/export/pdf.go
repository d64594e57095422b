package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfUsableWidth = 277.0

func renderPDF(data Dataset) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	width := pdfUsableWidth / float64(len(data.Columns))
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range data.Columns {
			pdf.CellFormat(width, 8, tr(col), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom-12 {
			pdf.AddPage()
			header()
		}
		for i := range data.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(width, 7, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
