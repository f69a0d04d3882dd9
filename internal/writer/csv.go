package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"sales-segmentation/internal/domain"
)

// CSVWriter writes the scored customers of a report, one row per customer and partition.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the report to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, report *domain.SegmentationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, report); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the report in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, report *domain.SegmentationReport) error {
	writer := csv.NewWriter(out)

	// Report metadata as comment rows
	if w.IncludeHeader {
		s := report.Summary
		meta := [][]string{
			{"# Report", report.ReportID},
			{"# Period", s.PeriodStart + " to " + s.PeriodEnd},
			{"# As Of", s.AsOf},
			{"# Source", string(s.Source)},
		}
		for _, m := range meta {
			if err := writer.Write(m); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	header := []string{"View", "CustomerID", "CustomerName", "Channel", "LastOrder", "Recency", "Frequency", "Monetary", "Percentile", "R", "F", "M", "Segment"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range report.Partitions {
		for _, c := range p.Customers {
			row := []string{
				string(p.View),
				c.CustomerID,
				c.CustomerName,
				string(c.Channel),
				c.LastOrderOn.Format(time.DateOnly),
				strconv.Itoa(c.RecencyDays),
				strconv.Itoa(c.Frequency),
				c.MonetaryTotal.StringFixed(2),
				strconv.FormatFloat(c.MonetaryPercentile, 'f', 4, 64),
				strconv.Itoa(c.R),
				strconv.Itoa(c.F),
				strconv.Itoa(c.M),
				string(c.Segment),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
