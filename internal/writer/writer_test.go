package writer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-segmentation/internal/domain"
)

func sampleReport() *domain.SegmentationReport {
	customer := domain.ScoredCustomer{
		CustomerRFM: domain.CustomerRFM{
			CustomerID:         "C1",
			CustomerName:       "Pet Shop, Miraflores",
			Channel:            domain.ChannelDigital,
			LastOrderOn:        time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC),
			RecencyDays:        15,
			Frequency:          2,
			MonetaryTotal:      decimal.RequireFromString("200"),
			MonetaryPercentile: 0.5,
		},
		Scores: domain.Scores{R: 5, F: 3, M: 3, Segment: domain.SegmentLoyal},
	}
	return &domain.SegmentationReport{
		ReportID: "6b0e1c9e-0000-5000-8000-000000000001",
		Summary: domain.Summary{
			Year:        2024,
			Months:      domain.FullYear,
			PeriodStart: "2024-01-01",
			PeriodEnd:   "2024-12-31",
			AsOf:        "2024-12-31",
			Source:      domain.SourceArchive,
		},
		Partitions: []domain.Partition{
			{View: domain.ViewAll, Customers: []domain.ScoredCustomer{customer}},
			{View: domain.View(domain.ChannelDigital), Customers: []domain.ScoredCustomer{customer}},
			{View: domain.View(domain.ChannelNational), Customers: []domain.ScoredCustomer{}},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, sampleReport()))

	output := buf.String()
	assert.Contains(t, output, "# Report,6b0e1c9e-0000-5000-8000-000000000001")
	assert.Contains(t, output, "# Period,2024-01-01 to 2024-12-31")
	assert.Contains(t, output, "View,CustomerID,CustomerName,Channel")
	assert.Contains(t, output, `ALL,C1,"Pet Shop, Miraflores",DIGITAL,2024-12-16,15,2,200.00,0.5000,5,3,3,Loyal Customers`)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 4 metadata lines + 1 header + 2 customer rows
	assert.Len(t, lines, 7)
}

func TestCSVWriter_WithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, sampleReport()))

	assert.NotContains(t, buf.String(), "# Report")
	assert.True(t, strings.HasPrefix(buf.String(), "View,"))
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.csv")
	w := &CSVWriter{}
	require.NoError(t, w.WriteToFile(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DIGITAL,C1")
}

func TestExportJSON(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	name := TimestampedFilename(filepath.Join(t.TempDir(), "reports"), "segmentation_2024", "json", at)
	assert.Equal(t, "segmentation_2024_20250102_150405.json", filepath.Base(name))

	require.NoError(t, ExportJSON(name, sampleReport()))

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded domain.SegmentationReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "6b0e1c9e-0000-5000-8000-000000000001", decoded.ReportID)
	assert.Len(t, decoded.Partitions, 3)
	assert.True(t, decoded.Partitions[0].Customers[0].MonetaryTotal.Equal(decimal.RequireFromString("200")))
}
