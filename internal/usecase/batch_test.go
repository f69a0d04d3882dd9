package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-segmentation/internal/domain"
	"sales-segmentation/internal/usecase"
	mock_usecase "sales-segmentation/internal/usecase/mocks"
)

func TestMonthsToBuild(t *testing.T) {
	now := date(2025, 3, 10)

	assert.Len(t, usecase.MonthsToBuild(2024, now), 12)
	assert.Equal(t, []time.Month{time.January, time.February, time.March}, usecase.MonthsToBuild(2025, now))
	assert.Empty(t, usecase.MonthsToBuild(2026, now))
}

func TestSegmentationUseCase_BuildMonthly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	live := mock_usecase.NewMockTransactionSource(ctrl)
	gomock.InOrder(
		live.EXPECT().Fetch(gomock.Any(), date(2025, 1, 1), date(2025, 1, 31)).Return(nil, nil),
		live.EXPECT().Fetch(gomock.Any(), date(2025, 2, 1), date(2025, 2, 28)).Return(nil, nil),
		live.EXPECT().Fetch(gomock.Any(), date(2025, 3, 1), date(2025, 3, 31)).Return(nil, nil),
	)

	uc := usecase.NewSegmentationUseCase(nil, live, nil, usecase.Options{CutoverYear: 2024})

	ticks := 0
	got, err := uc.BuildMonthly(context.Background(), 2025, date(2025, 3, 10), func() { ticks++ })
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, ticks)

	assert.Equal(t, time.February, got[1].Month)
	assert.Equal(t, "2025-02-28", got[1].Report.Summary.AsOf)
	assert.Equal(t, "2025-03-10", got[2].Report.Summary.AsOf, "running month is measured against today")
	assert.Equal(t, domain.SourceLive, got[2].Report.Summary.Source)
}

func TestSegmentationUseCase_BuildMonthlyStopsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	archive := mock_usecase.NewMockTransactionSource(ctrl)
	archive.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	archive.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	uc := usecase.NewSegmentationUseCase(archive, nil, nil, usecase.Options{CutoverYear: 2024})
	_, err := uc.BuildMonthly(context.Background(), 2023, date(2025, 3, 10), nil)
	assert.ErrorContains(t, err, "2023-02")
}
