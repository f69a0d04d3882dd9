package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"sales-segmentation/internal/domain"
)

// BuildReport scores customers per channel category and for the ALL view.
// Monetary percentiles are population-relative, so each partition is scored on its own
// population; the ALL view re-scores the union rather than reusing channel scores.
func BuildReport(customers []domain.CustomerRFM, scorer Scorer) domain.SegmentationReport {
	byChannel := make(map[domain.ChannelCategory][]domain.CustomerRFM, len(domain.Categories))
	for _, c := range customers {
		byChannel[c.Channel] = append(byChannel[c.Channel], c)
	}

	report := domain.SegmentationReport{
		Empty:      len(customers) == 0,
		Partitions: make([]domain.Partition, 0, len(domain.Views)),
	}
	report.Partitions = append(report.Partitions, buildPartition(domain.ViewAll, customers, scorer))
	for _, ch := range domain.Categories {
		report.Partitions = append(report.Partitions, buildPartition(domain.View(ch), byChannel[ch], scorer))
	}
	report.Summary.CustomersScored = len(customers)
	return report
}

func buildPartition(view domain.View, population []domain.CustomerRFM, scorer Scorer) domain.Partition {
	ranked := AssignPercentiles(population)

	p := domain.Partition{
		View:      view,
		Customers: make([]domain.ScoredCustomer, 0, len(ranked)),
		Totals:    domain.PartitionTotals{MonetaryTotal: decimal.Zero},
	}
	counts := make(map[domain.Segment]int, len(domain.Segments))
	for _, c := range ranked {
		sc := domain.ScoredCustomer{CustomerRFM: c, Scores: scorer.Score(c)}
		p.Customers = append(p.Customers, sc)
		counts[sc.Segment]++
		p.Totals.Orders += c.Frequency
		p.Totals.MonetaryTotal = p.Totals.MonetaryTotal.Add(c.MonetaryTotal)
	}
	p.Totals.Customers = len(p.Customers)

	sort.SliceStable(p.Customers, func(i, j int) bool {
		a, b := p.Customers[i], p.Customers[j]
		if a.Sum() != b.Sum() {
			return a.Sum() > b.Sum()
		}
		if cmp := a.MonetaryTotal.Cmp(b.MonetaryTotal); cmp != 0 {
			return cmp > 0
		}
		return a.CustomerID < b.CustomerID
	})

	p.SegmentCounts = make([]domain.SegmentCount, 0, len(domain.Segments))
	for _, s := range domain.Segments {
		p.SegmentCounts = append(p.SegmentCounts, domain.SegmentCount{Segment: s, Count: counts[s]})
	}
	return p
}

// FilterByChannel returns a copy of report holding only the partition for view.
// It does not re-aggregate or re-score.
func FilterByChannel(report *domain.SegmentationReport, view domain.View) *domain.SegmentationReport {
	filtered := *report
	filtered.Partitions = make([]domain.Partition, 0, 1)
	if p, ok := report.Partition(view); ok {
		filtered.Partitions = append(filtered.Partitions, p)
	}
	return &filtered
}
