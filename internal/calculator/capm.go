package calculator

import (
	"capm/internal/domain"
	"fmt"

	"github.com/montanaflynn/stats"
)

// Estimate applies the CAPM relation
// expectedReturn = rf + beta * (E[Rm] - rf)
func Estimate(beta, riskFreeRate, expectedMarketReturn float64) (*domain.CapmEstimate, error) {
	if !isFinite(beta) || !isFinite(riskFreeRate) || !isFinite(expectedMarketReturn) {
		return nil, fmt.Errorf("%w: beta=%v riskFreeRate=%v expectedMarketReturn=%v", domain.ErrInvalidInput, beta, riskFreeRate, expectedMarketReturn)
	}

	marketPremium := expectedMarketReturn - riskFreeRate
	return &domain.CapmEstimate{
		ExpectedReturn: riskFreeRate + beta*marketPremium,
		Beta:           beta,
		RiskFreeRate:   riskFreeRate,
		MarketPremium:  marketPremium,
	}, nil
}

// HistoricalMarketReturn annualizes the arithmetic mean benchmark
// return over the aligned window
func HistoricalMarketReturn(pairs domain.AlignedReturns, freq domain.Frequency) (float64, error) {
	if len(pairs) == 0 {
		return 0, fmt.Errorf("%w: no benchmark returns to average", domain.ErrInsufficientData)
	}
	mean, err := stats.Mean(pairs.BenchmarkReturns())
	if err != nil {
		return 0, fmt.Errorf("failed to average benchmark returns: %w", err)
	}
	return mean * float64(freq.PeriodsPerYear()), nil
}
