package repository

import (
	"capm/internal/domain"
	mock_repository "capm/internal/repository/mocks"
	"capm/internal/util"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCachedPriceRepository(t *testing.T) {
	ctx := context.Background()
	start := util.NewDate(2020, 1, 1)
	end := util.NewDate(2020, 12, 31)

	t.Run("second fetch is served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mock_repository.NewMockPriceHistoryRepository(ctrl)

		next.EXPECT().
			FetchHistory(gomock.Any(), "SPY", start, end).
			Return(&domain.PriceSeries{
				Symbol: "SPY",
				Points: []domain.PricePoint{
					{Date: start, Price: 300},
					{Date: start.AddDate(0, 0, 1), Price: 303},
				},
			}, nil).
			Times(1)

		repo := NewCachedPriceRepository(next)

		first, err := repo.FetchHistory(ctx, "SPY", start, end)
		require.NoError(t, err)
		second, err := repo.FetchHistory(ctx, "SPY", start, end)
		require.NoError(t, err)
		require.Equal(t, first, second)

		// mutating a result must not leak into the cache
		second.Points[0].Price = -1
		third, err := repo.FetchHistory(ctx, "SPY", start, end)
		require.NoError(t, err)
		require.Equal(t, 300.0, third.Points[0].Price)
	})

	t.Run("different window misses", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mock_repository.NewMockPriceHistoryRepository(ctrl)

		series := &domain.PriceSeries{Symbol: "SPY", Points: []domain.PricePoint{{Date: start, Price: 1}}}
		next.EXPECT().FetchHistory(gomock.Any(), "SPY", start, end).Return(series, nil)
		next.EXPECT().FetchHistory(gomock.Any(), "SPY", start, end.AddDate(0, 0, -1)).Return(series, nil)

		repo := NewCachedPriceRepository(next)
		_, err := repo.FetchHistory(ctx, "SPY", start, end)
		require.NoError(t, err)
		_, err = repo.FetchHistory(ctx, "SPY", start, end.AddDate(0, 0, -1))
		require.NoError(t, err)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mock_repository.NewMockPriceHistoryRepository(ctrl)

		next.EXPECT().
			FetchHistory(gomock.Any(), "DEAD", start, end).
			Return(nil, fmt.Errorf("%w: delisted", domain.ErrDataUnavailable)).
			Times(2)

		repo := NewCachedPriceRepository(next)
		_, err := repo.FetchHistory(ctx, "DEAD", start, end)
		require.ErrorIs(t, err, domain.ErrDataUnavailable)
		_, err = repo.FetchHistory(ctx, "DEAD", start, end)
		require.ErrorIs(t, err, domain.ErrDataUnavailable)
	})
}
