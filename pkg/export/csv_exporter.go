package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is tabular report content. Headers fix the column order, rows map
// header names to cell values. Numeric marks amount/count columns so PDF
// output can right-align them, and Footer, when set, is appended as a
// summary row (totals for billing and work-log exports).
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	Numeric map[string]bool
	Footer  map[string]string
}

// record projects a row onto the header order.
func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. The title is omitted
// (CSV output is meant for spreadsheet import); the footer summary row, if
// present, is written last.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if len(data.Footer) > 0 {
		if err := writer.Write(data.record(data.Footer)); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
