package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"sales-segmentation/internal/domain"
)

// Columns recognised in a sales export. Only customer_id, date and amount are required.
const (
	colCustomerID   = "customer_id"
	colCustomerName = "customer_name"
	colOrderID      = "order_id"
	colDate         = "date"
	colAmount       = "amount"
	colChannel      = "channel"
	colLine         = "line_of_business"
)

// CSVTransactionSource implements TransactionSource over a sales export file, for running
// without a warehouse or ERP connection. As a LIVE source it also serves channel lookups
// from the channel column, mimicking the ERP partner table.
type CSVTransactionSource struct {
	path string
	kind domain.SourceKind

	mu       sync.Mutex
	channels map[string]string // customer id -> channel, from the last read
}

// NewCSVTransactionSource creates a source reading path and emitting rows of the given kind.
func NewCSVTransactionSource(path string, kind domain.SourceKind) *CSVTransactionSource {
	return &CSVTransactionSource{path: path, kind: kind}
}

// Fetch reads the export and keeps the rows dated within [from, to]. Rows whose date cannot
// be read are kept so that normalization counts them as malformed.
func (r *CSVTransactionSource) Fetch(ctx context.Context, from, to time.Time) ([]domain.RawRow, error) {
	records, err := r.readAll()
	if err != nil {
		return nil, err
	}
	if r.kind == domain.SourceLive {
		r.indexChannels(records)
	}

	var rows []domain.RawRow
	for _, rec := range records {
		if d, ok := leadingDate(rec[colDate]); ok && (d.Before(from) || d.After(to)) {
			continue
		}
		if r.kind == domain.SourceLive {
			rows = append(rows, domain.LiveRow{
				CustomerID:     rec[colCustomerID],
				CustomerName:   rec[colCustomerName],
				OrderID:        rec[colOrderID],
				Date:           rec[colDate],
				Amount:         rec[colAmount],
				LineOfBusiness: rec[colLine],
			})
			continue
		}
		rows = append(rows, domain.ArchiveRow{
			CustomerID:     rec[colCustomerID],
			CustomerName:   rec[colCustomerName],
			OrderID:        rec[colOrderID],
			Date:           rec[colDate],
			Amount:         rec[colAmount],
			Channel:        rec[colChannel],
			LineOfBusiness: rec[colLine],
		})
	}
	return rows, nil
}

// LookupChannel returns the first non-empty channel recorded for customerID. Lookups are served
// from an index rebuilt by every Fetch, or built by the first lookup.
func (r *CSVTransactionSource) LookupChannel(ctx context.Context, customerID string) (string, bool, error) {
	r.mu.Lock()
	loaded := r.channels != nil
	r.mu.Unlock()

	if !loaded {
		records, err := r.readAll()
		if err != nil {
			return "", false, err
		}
		r.indexChannels(records)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	label, ok := r.channels[strings.TrimSpace(customerID)]
	return label, ok, nil
}

func (r *CSVTransactionSource) indexChannels(records []map[string]string) {
	channels := make(map[string]string)
	for _, rec := range records {
		id, label := strings.TrimSpace(rec[colCustomerID]), strings.TrimSpace(rec[colChannel])
		if id == "" || label == "" {
			continue
		}
		if _, ok := channels[id]; !ok {
			channels[id] = rec[colChannel]
		}
	}

	r.mu.Lock()
	r.channels = channels
	r.mu.Unlock()
}

func (r *CSVTransactionSource) readAll() ([]map[string]string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales export %s: %w", r.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", r.path, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{colCustomerID, colDate, colAmount} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("sales export %s has no %s column", r.path, required)
		}
	}

	var records []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", r.path, err)
		}
		rec := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(record) {
				rec[name] = record[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func leadingDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(time.DateOnly) {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)])
	return d, err == nil
}
