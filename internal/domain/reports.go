package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Segment is the customer-value label derived from the RFM score sum.
type Segment string

const (
	SegmentChampions         Segment = "Champions"
	SegmentLoyal             Segment = "Loyal Customers"
	SegmentPotentialLoyalist Segment = "Potential Loyalist"
	SegmentAtRisk            Segment = "At Risk"
	SegmentLost              Segment = "Lost"
)

// Segments lists every segment from most to least valuable.
var Segments = []Segment{SegmentChampions, SegmentLoyal, SegmentPotentialLoyalist, SegmentAtRisk, SegmentLost}

// MonthRange is an inclusive range of months within one year.
type MonthRange struct {
	From time.Month `json:"from"`
	To   time.Month `json:"to"`
}

// FullYear covers January through December.
var FullYear = MonthRange{From: time.January, To: time.December}

// Validate checks both bounds are real months and ordered.
func (m MonthRange) Validate() error {
	if m.From < time.January || m.From > time.December || m.To < time.January || m.To > time.December {
		return fmt.Errorf("month range %d-%d out of bounds", m.From, m.To)
	}
	if m.To < m.From {
		return fmt.Errorf("month range end %d before start %d", m.To, m.From)
	}
	return nil
}

// Bounds returns the first and last calendar day of the range in year, in UTC.
func (m MonthRange) Bounds(year int) (time.Time, time.Time) {
	start := time.Date(year, m.From, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, m.To+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return start, end
}

// CustomerRFM holds the raw recency, frequency and monetary metrics of one customer for one period.
type CustomerRFM struct {
	CustomerID         string          `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	Channel            ChannelCategory `json:"channel"`
	LastOrderOn        time.Time       `json:"last_order_on"`
	RecencyDays        int             `json:"recency_days"`
	Frequency          int             `json:"frequency"`
	MonetaryTotal      decimal.Decimal `json:"monetary_total"`
	MonetaryPercentile float64         `json:"monetary_percentile"`
}

// Scores is the 1..5 score triple and the resulting segment.
type Scores struct {
	R       int     `json:"r_score"`
	F       int     `json:"f_score"`
	M       int     `json:"m_score"`
	Segment Segment `json:"segment"`
}

// Sum returns R+F+M.
func (s Scores) Sum() int { return s.R + s.F + s.M }

// ScoredCustomer is one row of a report partition.
type ScoredCustomer struct {
	CustomerRFM
	Scores
}

// SegmentCount is the number of customers in a segment, for chart consumption.
type SegmentCount struct {
	Segment Segment `json:"segment"`
	Count   int     `json:"count"`
}

// PartitionTotals aggregates a partition.
type PartitionTotals struct {
	Customers     int             `json:"customers"`
	Orders        int             `json:"orders"`
	MonetaryTotal decimal.Decimal `json:"monetary_total"`
}

// Partition is the scored view of one channel category, or of all customers.
type Partition struct {
	View          View             `json:"view"`
	Totals        PartitionTotals  `json:"totals"`
	SegmentCounts []SegmentCount   `json:"segment_counts"`
	Customers     []ScoredCustomer `json:"customers"`
}

// Summary describes how a report was built.
type Summary struct {
	Year            int        `json:"year"`
	Months          MonthRange `json:"months"`
	PeriodStart     string     `json:"period_start"`
	PeriodEnd       string     `json:"period_end"`
	AsOf            string     `json:"as_of"`
	Source          SourceKind `json:"source"`
	RowsRead        int        `json:"rows_read"`
	RowsDiscarded   int        `json:"rows_discarded"`
	RowsExcluded    int        `json:"rows_excluded"`
	CustomersScored int        `json:"customers_scored"`
}

// SegmentationReport is the top-level structure handed to the presentation layer.
type SegmentationReport struct {
	ReportID   string      `json:"report_id"`
	Summary    Summary     `json:"summary"`
	Empty      bool        `json:"empty"`
	Partitions []Partition `json:"partitions"`
}

// Partition returns the partition for v, if the report holds it.
func (r *SegmentationReport) Partition(v View) (Partition, bool) {
	for _, p := range r.Partitions {
		if p.View == v {
			return p, true
		}
	}
	return Partition{}, false
}
