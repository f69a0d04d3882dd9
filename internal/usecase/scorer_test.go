package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"sales-segmentation/internal/domain"
)

func TestScorer_Scenarios(t *testing.T) {
	s := NewScorer(DefaultScoringTable())

	tests := []struct {
		name     string
		customer domain.CustomerRFM
		want     domain.Scores
	}{
		{
			name:     "digital regular buyer is a champion",
			customer: domain.CustomerRFM{Channel: domain.ChannelDigital, RecencyDays: 15, Frequency: 5, MonetaryPercentile: 0.9},
			want:     domain.Scores{R: 5, F: 5, M: 5, Segment: domain.SegmentChampions},
		},
		{
			name:     "national distributor on a slow cadence is still a champion",
			customer: domain.CustomerRFM{Channel: domain.ChannelNational, RecencyDays: 50, Frequency: 2, MonetaryPercentile: 0.7},
			want:     domain.Scores{R: 5, F: 5, M: 4, Segment: domain.SegmentChampions},
		},
		{
			name:     "same metrics under digital thresholds score lower",
			customer: domain.CustomerRFM{Channel: domain.ChannelDigital, RecencyDays: 50, Frequency: 2, MonetaryPercentile: 0.7},
			want:     domain.Scores{R: 3, F: 3, M: 4, Segment: domain.SegmentLoyal},
		},
		{
			name: "refund-only customer gets the lowest monetary score",
			customer: domain.CustomerRFM{
				Channel: domain.ChannelNational, RecencyDays: 200, Frequency: 1,
				MonetaryTotal: decimal.RequireFromString("-80"), MonetaryPercentile: 0,
			},
			want: domain.Scores{R: 2, F: 2, M: 1, Segment: domain.SegmentAtRisk},
		},
		{
			name:     "old single order is lost",
			customer: domain.CustomerRFM{Channel: domain.ChannelDigital, RecencyDays: 400, Frequency: 1, MonetaryPercentile: 0.1},
			want:     domain.Scores{R: 1, F: 1, M: 1, Segment: domain.SegmentLost},
		},
		{
			name:     "other channel uses its own table",
			customer: domain.CustomerRFM{Channel: domain.ChannelOther, RecencyDays: 30, Frequency: 3, MonetaryPercentile: 0.4},
			want:     domain.Scores{R: 5, F: 3, M: 3, Segment: domain.SegmentLoyal},
		},
		{
			name:     "unknown channel falls back to the other table",
			customer: domain.CustomerRFM{Channel: "WHOLESALE", RecencyDays: 30, Frequency: 3, MonetaryPercentile: 0.4},
			want:     domain.Scores{R: 5, F: 3, M: 3, Segment: domain.SegmentLoyal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.customer))
		})
	}
}

func TestScorer_Segment(t *testing.T) {
	s := NewScorer(DefaultScoringTable())

	want := map[int]domain.Segment{
		15: domain.SegmentChampions,
		13: domain.SegmentChampions,
		12: domain.SegmentLoyal,
		10: domain.SegmentLoyal,
		9:  domain.SegmentPotentialLoyalist,
		8:  domain.SegmentPotentialLoyalist,
		7:  domain.SegmentAtRisk,
		5:  domain.SegmentAtRisk,
		4:  domain.SegmentLost,
		3:  domain.SegmentLost,
	}
	for sum, seg := range want {
		assert.Equal(t, seg, s.Segment(sum), "sum %d", sum)
	}
}

func TestScorer_ScoresStayInRange(t *testing.T) {
	s := NewScorer(DefaultScoringTable())

	for _, ch := range []domain.ChannelCategory{domain.ChannelDigital, domain.ChannelNational, domain.ChannelOther} {
		for _, recency := range []int{0, 20, 21, 60, 61, 365, 366, 5000} {
			for _, freq := range []int{1, 2, 3, 4, 50} {
				for _, pct := range []float64{0, 0.2, 0.59, 0.8, 0.99} {
					got := s.Score(domain.CustomerRFM{Channel: ch, RecencyDays: recency, Frequency: freq, MonetaryPercentile: pct})
					for _, v := range []int{got.R, got.F, got.M} {
						assert.GreaterOrEqual(t, v, 1)
						assert.LessOrEqual(t, v, 5)
					}
					assert.Equal(t, s.Segment(got.Sum()), got.Segment)
				}
			}
		}
	}
}

func TestScoringTable_Validate(t *testing.T) {
	assert.NoError(t, DefaultScoringTable().Validate())

	bad := DefaultScoringTable()
	bad.Monetary = []Tier{{0.8, 6}}
	assert.Error(t, bad.Validate())

	missing := DefaultScoringTable()
	delete(missing.Recency, domain.ChannelOther)
	assert.Error(t, missing.Validate())

	misordered := DefaultScoringTable()
	misordered.Segments = []SegmentCut{
		{5, domain.SegmentAtRisk},
		{13, domain.SegmentChampions},
	}
	assert.ErrorContains(t, misordered.Validate(), "must be below")

	duplicate := DefaultScoringTable()
	duplicate.Segments = []SegmentCut{
		{10, domain.SegmentChampions},
		{10, domain.SegmentLoyal},
	}
	assert.Error(t, duplicate.Validate())
}
