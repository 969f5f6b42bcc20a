package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billingDataset() Dataset {
	return Dataset{
		Title:   "Billing Summary 2025-01",
		Headers: []string{"Faculty", "Month", "Net Salary"},
		Rows: []map[string]string{
			{"Faculty": "Dr. Rao", "Month": "2025-01", "Net Salary": "53000.00"},
			{"Faculty": "Dr. Iyer", "Month": "2025-01", "Net Salary": "51000.00"},
		},
		Numeric: map[string]bool{"Net Salary": true},
		Footer:  map[string]string{"Faculty": "Total (2 records)", "Net Salary": "104000.00"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	raw, err := NewCSVExporter().Render(billingDataset())
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "Faculty,Month,Net Salary", string(lines[0]))
	assert.Equal(t, "Dr. Rao,2025-01,53000.00", string(lines[1]))
}

func TestCSVExporterAppendsFooterRow(t *testing.T) {
	raw, err := NewCSVExporter().Render(billingDataset())
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	assert.Equal(t, "Total (2 records),,104000.00", string(lines[len(lines)-1]))
}

func TestCSVExporterOmitsTitle(t *testing.T) {
	raw, err := NewCSVExporter().Render(billingDataset())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Billing Summary")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterMissingCellsStayEmpty(t *testing.T) {
	raw, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"A", "B"},
		Rows:    []map[string]string{{"A": "1"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "1,\n")
}

func TestPDFExporterRenderProducesDocument(t *testing.T) {
	raw, err := NewPDFExporter().Render(billingDataset())
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{Title: "Empty"})
	require.Error(t, err)
}

func TestPDFExporterHandlesWideTables(t *testing.T) {
	data := Dataset{
		Title:   "Billing Summary",
		Headers: []string{"Employee ID", "Faculty", "Month", "Base Salary", "Allowances", "Deductions", "Net Salary", "Status"},
		Rows: []map[string]string{{
			"Employee ID": "EMP001", "Faculty": "Dr. Rao", "Month": "2025-01",
			"Base Salary": "50000.00", "Allowances": "5000.00", "Deductions": "2000.00",
			"Net Salary": "53000.00", "Status": "processed",
		}},
		Numeric: map[string]bool{"Base Salary": true, "Allowances": true, "Deductions": true, "Net Salary": true},
	}
	raw, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}
