package usecase

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sales-segmentation/internal/domain"
)

type customerAcc struct {
	id       string
	name     string
	label    string
	last     time.Time
	orders   map[string]struct{}
	monetary decimal.Decimal
}

// Aggregate computes per-customer recency, frequency and monetary totals against asOf.
// A transaction dated after asOf yields *domain.FutureTransactionError.
// The result is sorted by customer id and carries no percentiles yet.
func Aggregate(txs []domain.Transaction, asOf time.Time, classifier Classifier) ([]domain.CustomerRFM, error) {
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	byCustomer := make(map[string]*customerAcc)
	for _, tx := range txs {
		if tx.OccurredOn.After(asOf) {
			return nil, &domain.FutureTransactionError{CustomerID: tx.CustomerID, OccurredOn: tx.OccurredOn, AsOf: asOf}
		}

		acc, ok := byCustomer[tx.CustomerID]
		if !ok {
			acc = &customerAcc{
				id:       tx.CustomerID,
				name:     tx.CustomerName,
				label:    tx.ChannelLabel,
				last:     tx.OccurredOn,
				orders:   make(map[string]struct{}),
				monetary: decimal.Zero,
			}
			byCustomer[tx.CustomerID] = acc
		}

		switch {
		case tx.OccurredOn.After(acc.last):
			acc.last = tx.OccurredOn
			acc.label = tx.ChannelLabel
			if tx.CustomerName != "" {
				acc.name = tx.CustomerName
			}
		case tx.OccurredOn.Equal(acc.last):
			// same day: keep the result independent of row order
			if tx.ChannelLabel < acc.label {
				acc.label = tx.ChannelLabel
			}
			if tx.CustomerName != "" && (acc.name == "" || tx.CustomerName < acc.name) {
				acc.name = tx.CustomerName
			}
		}

		acc.orders[tx.OrderID] = struct{}{}
		acc.monetary = acc.monetary.Add(tx.NetAmount)
	}

	out := make([]domain.CustomerRFM, 0, len(byCustomer))
	for _, acc := range byCustomer {
		out = append(out, domain.CustomerRFM{
			CustomerID:    acc.id,
			CustomerName:  acc.name,
			Channel:       classifier.Classify(acc.label),
			LastOrderOn:   acc.last,
			RecencyDays:   int(asOf.Sub(acc.last).Hours() / 24),
			Frequency:     len(acc.orders),
			MonetaryTotal: acc.monetary,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

// AssignPercentiles returns a copy of population with MonetaryPercentile set to the number of
// customers whose total is strictly lower, over N-1. The top spender gets 1 and equal totals share
// the lower bound. A population of one is its own top spender.
func AssignPercentiles(population []domain.CustomerRFM) []domain.CustomerRFM {
	out := make([]domain.CustomerRFM, len(population))
	copy(out, population)
	if len(out) == 0 {
		return out
	}

	sorted := make([]decimal.Decimal, len(out))
	for i, c := range out {
		sorted[i] = c.MonetaryTotal
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	if len(out) == 1 {
		out[0].MonetaryPercentile = 1
		return out
	}

	n := float64(len(sorted) - 1)
	for i := range out {
		v := out[i].MonetaryTotal
		lower := sort.Search(len(sorted), func(k int) bool { return sorted[k].GreaterThanOrEqual(v) })
		out[i].MonetaryPercentile = float64(lower) / n
	}
	return out
}
