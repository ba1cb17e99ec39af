package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, format)

	format, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	require.Equal(t, FormatPDF, format)
	require.Equal(t, "application/pdf", format.ContentType())

	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Name", "Batch"},
		Rows: []map[string]string{
			{"Name": "Asha Rao", "Batch": "evening"},
			{"Name": "Rao, Ravi", "Batch": "morning"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("\ufeff")))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Name", "Batch"}, {"Asha Rao", "evening"}, {"Rao, Ravi", "morning"}}, records)

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRenderPaginates(t *testing.T) {
	rows := make([]map[string]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, map[string]string{"Name": "Student", "Batch": "full"})
	}
	exporter := NewPDFExporter()
	exporter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	out, err := exporter.Render(Dataset{Headers: []string{"Name", "Batch"}, Rows: rows}, "Roster ₹")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	require.GreaterOrEqual(t, bytes.Count(out, []byte("/Type /Page\n")), 2)

	_, err = exporter.Render(Dataset{}, "empty")
	require.Error(t, err)
}
