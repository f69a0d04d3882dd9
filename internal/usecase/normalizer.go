package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-segmentation/internal/domain"
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// LineAlias folds every line of business containing Contains into Canonical.
type LineAlias struct {
	Contains  string
	Canonical string
}

// Normalizer converts raw rows from either backend into domain.Transaction.
// It memoizes channel lookups, so use one Normalizer per build.
type Normalizer struct {
	lookup  ChannelLookup
	aliases []LineAlias
	seen    map[string]string
}

// NewNormalizer creates a normalizer. lookup may be nil when no live rows are expected.
func NewNormalizer(lookup ChannelLookup, aliases []LineAlias) *Normalizer {
	return &Normalizer{
		lookup:  lookup,
		aliases: aliases,
		seen:    make(map[string]string),
	}
}

// Normalize converts one raw row. A *domain.MalformedRowError means the row should be skipped;
// any other error comes from the channel lookup and should abort the build.
func (n *Normalizer) Normalize(ctx context.Context, raw domain.RawRow) (domain.Transaction, error) {
	switch row := raw.(type) {
	case domain.ArchiveRow:
		tx, err := n.common(domain.SourceArchive, row.CustomerID, row.CustomerName, row.OrderID, row.Date, row.Amount, row.LineOfBusiness)
		if err != nil {
			return domain.Transaction{}, err
		}
		tx.ChannelLabel = strings.ToUpper(strings.TrimSpace(row.Channel))
		return tx, nil

	case domain.LiveRow:
		tx, err := n.common(domain.SourceLive, row.CustomerID, row.CustomerName, row.OrderID, row.Date, row.Amount, row.LineOfBusiness)
		if err != nil {
			return domain.Transaction{}, err
		}
		label, err := n.channelFor(ctx, tx.CustomerID)
		if err != nil {
			return domain.Transaction{}, err
		}
		tx.ChannelLabel = label
		return tx, nil

	default:
		return domain.Transaction{}, &domain.MalformedRowError{Field: "kind", Value: fmt.Sprintf("%T", raw), Err: fmt.Errorf("unsupported row type")}
	}
}

func (n *Normalizer) common(src domain.SourceKind, customerID, customerName, orderID, date, amount, line string) (domain.Transaction, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Transaction{}, &domain.MalformedRowError{Source: src, Field: "customer_id"}
	}
	if strings.TrimSpace(date) == "" {
		return domain.Transaction{}, &domain.MalformedRowError{Source: src, Field: "date"}
	}
	occurredOn, err := parseDate(date)
	if err != nil {
		return domain.Transaction{}, &domain.MalformedRowError{Source: src, Field: "date", Value: date, Err: err}
	}
	if strings.TrimSpace(amount) == "" {
		return domain.Transaction{}, &domain.MalformedRowError{Source: src, Field: "amount"}
	}
	netAmount, err := parseAmount(amount)
	if err != nil {
		return domain.Transaction{}, &domain.MalformedRowError{Source: src, Field: "amount", Value: amount, Err: err}
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		// one occurrence per customer per day
		orderID = customerID + "@" + occurredOn.Format(time.DateOnly)
	}

	return domain.Transaction{
		CustomerID:     customerID,
		CustomerName:   strings.TrimSpace(customerName),
		OrderID:        orderID,
		OccurredOn:     occurredOn,
		NetAmount:      netAmount,
		LineOfBusiness: n.lineOfBusiness(line),
	}, nil
}

func (n *Normalizer) channelFor(ctx context.Context, customerID string) (string, error) {
	if label, ok := n.seen[customerID]; ok {
		return label, nil
	}
	label := domain.ChannelUnspecified
	if n.lookup != nil {
		found, ok, err := n.lookup.LookupChannel(ctx, customerID)
		if err != nil {
			return "", fmt.Errorf("could not look up channel for customer %s: %w", customerID, err)
		}
		if ok && strings.TrimSpace(found) != "" {
			label = strings.ToUpper(strings.TrimSpace(found))
		}
	}
	n.seen[customerID] = label
	return label, nil
}

func (n *Normalizer) lineOfBusiness(line string) string {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, a := range n.aliases {
		if a.Contains != "" && strings.Contains(upper, strings.ToUpper(a.Contains)) {
			return strings.ToUpper(a.Canonical)
		}
	}
	return upper
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}
