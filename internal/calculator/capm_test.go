package calculator

import (
	"capm/internal/domain"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	t.Run("textbook example", func(t *testing.T) {
		estimate, err := Estimate(1.5, 0.02, 0.08)
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				&domain.CapmEstimate{
					ExpectedReturn: 0.11,
					Beta:           1.5,
					RiskFreeRate:   0.02,
					MarketPremium:  0.06,
				},
				estimate,
				floatComparer(1e-15),
			),
		)
	})

	t.Run("zero beta earns the risk free rate", func(t *testing.T) {
		estimate, err := Estimate(0, 0.03, 0.1)
		require.NoError(t, err)
		require.Equal(t, 0.03, estimate.ExpectedReturn)
	})

	t.Run("negative premium", func(t *testing.T) {
		estimate, err := Estimate(2, 0.05, 0.01)
		require.NoError(t, err)
		require.InDelta(t, -0.04, estimate.MarketPremium, 1e-15)
		require.InDelta(t, -0.03, estimate.ExpectedReturn, 1e-15)
	})

	t.Run("non-finite inputs", func(t *testing.T) {
		_, err := Estimate(math.NaN(), 0.02, 0.08)
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = Estimate(1, math.Inf(1), 0.08)
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = Estimate(1, 0.02, math.Inf(-1))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		require.Equal(t, "InvalidInputError", domain.ErrorKind(err))
	})
}

func TestHistoricalMarketReturn(t *testing.T) {
	t.Run("annualizes arithmetic mean", func(t *testing.T) {
		pairs := alignedFrom([]float64{0, 0, 0}, []float64{0.001, 0.002, 0.003})

		daily, err := HistoricalMarketReturn(pairs, domain.Daily)
		require.NoError(t, err)
		require.InDelta(t, 0.002*252, daily, 1e-12)

		monthly, err := HistoricalMarketReturn(pairs, domain.Monthly)
		require.NoError(t, err)
		require.InDelta(t, 0.002*12, monthly, 1e-12)
	})

	t.Run("no pairs", func(t *testing.T) {
		_, err := HistoricalMarketReturn(domain.AlignedReturns{}, domain.Daily)
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}
