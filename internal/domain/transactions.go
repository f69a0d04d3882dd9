package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind identifies which backend served a reporting period.
type SourceKind string

const (
	SourceArchive SourceKind = "ARCHIVE"
	SourceLive    SourceKind = "LIVE"
)

// ChannelUnspecified is the label given to live rows whose customer has no resolvable channel.
const ChannelUnspecified = "UNSPECIFIED"

// RawRow is a row as fetched from one of the backends, before normalization.
// The concrete type tells the normalizer how to resolve the channel.
type RawRow interface {
	Kind() SourceKind
}

// ArchiveRow is a row from the warehoused historical store. It carries its channel name directly.
type ArchiveRow struct {
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	OrderID        string `json:"order_id"`
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	Channel        string `json:"channel"`
	LineOfBusiness string `json:"line_of_business"`
}

// Kind implements RawRow.
func (ArchiveRow) Kind() SourceKind { return SourceArchive }

// LiveRow is a row from the operational ERP. Its channel must be looked up by customer.
type LiveRow struct {
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	OrderID        string `json:"order_id"`
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	LineOfBusiness string `json:"line_of_business"`
}

// Kind implements RawRow.
func (LiveRow) Kind() SourceKind { return SourceLive }

// Transaction is the canonical, backend-agnostic shape of a sales line.
type Transaction struct {
	CustomerID     string          `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	OrderID        string          `json:"order_id"`
	OccurredOn     time.Time       `json:"occurred_on"` // calendar date, UTC midnight
	NetAmount      decimal.Decimal `json:"net_amount"`  // negative for refunds
	ChannelLabel   string          `json:"channel_label"`
	LineOfBusiness string          `json:"line_of_business"`
}
