package repository

import (
	"capm/internal/domain"
	"capm/internal/util"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writePriceFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestCsvPriceRepository_FetchHistory(t *testing.T) {
	ctx := context.Background()
	path := writePriceFile(t, `date,symbol,price
2020-01-03,AAPL,74.36
2020-01-02,AAPL,75.09
2020-01-02,SPY,324.87
2020-01-06,AAPL,74.95
2020-01-07,aapl,74.6
2020-02-03,AAPL,77.17
`)

	t.Run("filters symbol and window, sorted ascending", func(t *testing.T) {
		repo := NewCsvPriceRepository(path)

		series, err := repo.FetchHistory(ctx, "AAPL", util.NewDate(2020, 1, 1), util.NewDate(2020, 1, 31))
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				&domain.PriceSeries{
					Symbol: "AAPL",
					Points: []domain.PricePoint{
						{Date: util.NewDate(2020, 1, 2), Price: 75.09},
						{Date: util.NewDate(2020, 1, 3), Price: 74.36},
						{Date: util.NewDate(2020, 1, 6), Price: 74.95},
						{Date: util.NewDate(2020, 1, 7), Price: 74.6},
					},
				},
				series,
			),
		)
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		repo := NewCsvPriceRepository(path)
		series, err := repo.FetchHistory(ctx, "AAPL", util.NewDate(2020, 1, 3), util.NewDate(2020, 2, 3))
		require.NoError(t, err)
		require.Equal(t, 4, series.Len())
		require.Equal(t, util.NewDate(2020, 2, 3), series.Points[3].Date)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		repo := NewCsvPriceRepository(path)
		_, err := repo.FetchHistory(ctx, "MSFT", util.NewDate(2020, 1, 1), util.NewDate(2020, 12, 31))
		require.ErrorIs(t, err, domain.ErrDataUnavailable)
	})

	t.Run("missing file", func(t *testing.T) {
		repo := NewCsvPriceRepository(filepath.Join(t.TempDir(), "nope.csv"))
		_, err := repo.FetchHistory(ctx, "AAPL", util.NewDate(2020, 1, 1), util.NewDate(2020, 12, 31))
		require.ErrorIs(t, err, domain.ErrDataUnavailable)
	})

	t.Run("bad date", func(t *testing.T) {
		repo := NewCsvPriceRepository(writePriceFile(t, "date,symbol,price\n01/02/2020,AAPL,75\n"))
		_, err := repo.FetchHistory(ctx, "AAPL", util.NewDate(2020, 1, 1), util.NewDate(2020, 12, 31))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestNormalizeSeries(t *testing.T) {
	t.Run("keeps last point for repeated dates", func(t *testing.T) {
		d := util.NewDate(2021, 5, 4)
		series := normalizeSeries("X", []domain.PricePoint{
			{Date: d.AddDate(0, 0, 1), Price: 3},
			{Date: d.Add(13 * time.Hour), Price: 1},
			{Date: d.Add(20 * time.Hour), Price: 2},
		})

		require.Equal(t, []domain.PricePoint{
			{Date: d, Price: 2},
			{Date: d.AddDate(0, 0, 1), Price: 3},
		}, series.Points)
	})
}
