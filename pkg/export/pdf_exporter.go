package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// wideTableColumns is the column count above which statements switch to
// landscape so billing rows with all salary components stay readable.
const wideTableColumns = 6

// PDFExporter renders datasets into tabular PDF statements.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF statement from the dataset. Numeric columns are
// right-aligned and the footer summary row, if present, is emphasized.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	orientation, pageWidth := "P", 190.0
	if len(data.Headers) > wideTableColumns {
		orientation, pageWidth = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := pageWidth / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, e.align(data, header), false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(data.Footer) > 0 {
		pdf.SetFont("Arial", "B", 9)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, data.Footer[header], "1", 0, e.align(data, header), false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) align(data Dataset, header string) string {
	if data.Numeric[header] {
		return "R"
	}
	return ""
}
