package usecase

import (
	"context"
	"fmt"
	"time"

	"sales-segmentation/internal/domain"
)

// MonthlyReport is one month of a batch run.
type MonthlyReport struct {
	Month  time.Month                 `json:"month"`
	Report *domain.SegmentationReport `json:"report"`
}

// BuildMonthly builds one report per month of year, stopping at the month containing now.
// Each month is measured against its last day, or against today for the running month.
// progress, if set, is called after every month.
func (uc *SegmentationUseCase) BuildMonthly(ctx context.Context, year int, now time.Time, progress func()) ([]MonthlyReport, error) {
	months := MonthsToBuild(year, now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]MonthlyReport, 0, len(months))
	for _, m := range months {
		period := domain.MonthRange{From: m, To: m}
		_, end := period.Bounds(year)
		asOf := end
		if today.Before(end) {
			asOf = today
		}

		report, err := uc.BuildSegmentation(ctx, year, period, asOf)
		if err != nil {
			return nil, fmt.Errorf("could not build %d-%02d: %w", year, m, err)
		}
		out = append(out, MonthlyReport{Month: m, Report: report})
		if progress != nil {
			progress()
		}
	}
	return out, nil
}

// MonthsToBuild lists the months of year that have started by now.
func MonthsToBuild(year int, now time.Time) []time.Month {
	last := time.December
	switch {
	case year > now.Year():
		return nil
	case year == now.Year():
		last = now.Month()
	}
	months := make([]time.Month, 0, last)
	for m := time.January; m <= last; m++ {
		months = append(months, m)
	}
	return months
}
