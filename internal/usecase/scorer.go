package usecase

import (
	"fmt"

	"sales-segmentation/internal/domain"
)

// Tier is one row of a threshold table. Tables are scanned in order and the first
// tier the metric satisfies gives the score.
type Tier struct {
	Limit float64
	Score int
}

// SegmentCut assigns Segment to score sums of at least MinSum.
type SegmentCut struct {
	MinSum  int
	Segment domain.Segment
}

// ScoringTable holds every threshold the scorer uses.
// Recency tiers match when recency <= Limit, the others when the metric >= Limit.
type ScoringTable struct {
	Recency   map[domain.ChannelCategory][]Tier
	Frequency map[domain.ChannelCategory][]Tier
	Monetary  []Tier
	Segments  []SegmentCut
}

// DefaultScoringTable returns the production thresholds. National customers buy on a slower
// cadence than digital ones, so they reach the top recency and frequency tiers sooner.
func DefaultScoringTable() ScoringTable {
	return ScoringTable{
		Recency: map[domain.ChannelCategory][]Tier{
			domain.ChannelDigital:  {{20, 5}, {45, 4}, {90, 3}, {180, 2}},
			domain.ChannelNational: {{60, 5}, {120, 4}, {180, 3}, {365, 2}},
			domain.ChannelOther:    {{30, 5}, {90, 4}, {180, 3}, {365, 2}},
		},
		Frequency: map[domain.ChannelCategory][]Tier{
			domain.ChannelDigital:  {{4, 5}, {3, 4}, {2, 3}},
			domain.ChannelNational: {{2, 5}, {1, 2}},
			domain.ChannelOther:    {{5, 5}, {4, 4}, {3, 3}, {2, 2}},
		},
		Monetary: []Tier{{0.8, 5}, {0.6, 4}, {0.4, 3}, {0.2, 2}},
		Segments: []SegmentCut{
			{13, domain.SegmentChampions},
			{10, domain.SegmentLoyal},
			{8, domain.SegmentPotentialLoyalist},
			{5, domain.SegmentAtRisk},
		},
	}
}

// Validate checks that every score lies in 1..5 and every channel has a table entry to fall back on.
func (t ScoringTable) Validate() error {
	check := func(name string, tiers []Tier) error {
		for _, tier := range tiers {
			if tier.Score < 1 || tier.Score > 5 {
				return fmt.Errorf("%s tier %v: score must be within 1..5", name, tier.Limit)
			}
		}
		return nil
	}
	for ch, tiers := range t.Recency {
		if err := check("recency "+string(ch), tiers); err != nil {
			return err
		}
	}
	for ch, tiers := range t.Frequency {
		if err := check("frequency "+string(ch), tiers); err != nil {
			return err
		}
	}
	if err := check("monetary", t.Monetary); err != nil {
		return err
	}
	// Segment picks the first cut reached, so cuts must run from the highest sum down.
	for i := 1; i < len(t.Segments); i++ {
		if t.Segments[i].MinSum >= t.Segments[i-1].MinSum {
			return fmt.Errorf("segment cut %s (%d) must be below %s (%d)",
				t.Segments[i].Segment, t.Segments[i].MinSum, t.Segments[i-1].Segment, t.Segments[i-1].MinSum)
		}
	}
	if _, ok := t.Recency[domain.ChannelOther]; !ok {
		return fmt.Errorf("recency table for %s is required", domain.ChannelOther)
	}
	if _, ok := t.Frequency[domain.ChannelOther]; !ok {
		return fmt.Errorf("frequency table for %s is required", domain.ChannelOther)
	}
	return nil
}

// Scorer turns raw RFM metrics into scores and a segment.
type Scorer struct {
	table ScoringTable
}

// NewScorer creates a scorer over table.
func NewScorer(table ScoringTable) Scorer {
	return Scorer{table: table}
}

// Score never fails; a metric matching no tier scores 1.
func (s Scorer) Score(c domain.CustomerRFM) domain.Scores {
	r := scanAtMost(s.tiers(s.table.Recency, c.Channel), float64(c.RecencyDays))
	f := scanAtLeast(s.tiers(s.table.Frequency, c.Channel), float64(c.Frequency))
	m := scanAtLeast(s.table.Monetary, c.MonetaryPercentile)
	return domain.Scores{R: r, F: f, M: m, Segment: s.Segment(r + f + m)}
}

// Segment maps a score sum (3..15) to its segment.
func (s Scorer) Segment(sum int) domain.Segment {
	for _, cut := range s.table.Segments {
		if sum >= cut.MinSum {
			return cut.Segment
		}
	}
	return domain.SegmentLost
}

func (s Scorer) tiers(byChannel map[domain.ChannelCategory][]Tier, ch domain.ChannelCategory) []Tier {
	if tiers, ok := byChannel[ch]; ok {
		return tiers
	}
	return byChannel[domain.ChannelOther]
}

func scanAtMost(tiers []Tier, v float64) int {
	for _, t := range tiers {
		if v <= t.Limit {
			return t.Score
		}
	}
	return 1
}

func scanAtLeast(tiers []Tier, v float64) int {
	for _, t := range tiers {
		if v >= t.Limit {
			return t.Score
		}
	}
	return 1
}
