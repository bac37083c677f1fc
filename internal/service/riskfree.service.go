package service

import (
	"capm/internal/domain"
	"capm/internal/logger"
	"capm/internal/repository"
	"capm/internal/util"
	interestrate "capm/pkg/interest_rate"
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

// how far back to look for a published curve when the end date is a
// weekend or holiday
const maxCurveLookbackDays = 7

type YieldCurveClient interface {
	GetYieldCurve(ctx context.Context, date time.Time) (*interestrate.InterestRateMap, error)
}

// RiskFreeRateService resolves the annual risk-free rate for a window
type RiskFreeRateService interface {
	AnnualRate(ctx context.Context, start, end time.Time) (float64, error)
}

type riskFreeRateServiceHandler struct {
	Config           util.RiskFreeConfig
	PriceRepository  repository.PriceHistoryRepository
	YieldCurveClient YieldCurveClient
}

func NewRiskFreeRateService(cfg util.RiskFreeConfig, priceRepository repository.PriceHistoryRepository, yieldCurveClient YieldCurveClient) RiskFreeRateService {
	return riskFreeRateServiceHandler{
		Config:           cfg,
		PriceRepository:  priceRepository,
		YieldCurveClient: yieldCurveClient,
	}
}

func (h riskFreeRateServiceHandler) AnnualRate(ctx context.Context, start, end time.Time) (float64, error) {
	switch h.Config.Source {
	case "constant":
		return h.Config.Rate, nil
	case "treasury":
		return h.fromTreasuryCurve(ctx, end)
	case "yahoo":
		return h.fromYieldTicker(ctx, start, end)
	}
	return 0, fmt.Errorf("%w: unknown risk free source %q", domain.ErrInvalidInput, h.Config.Source)
}

func (h riskFreeRateServiceHandler) fromTreasuryCurve(ctx context.Context, end time.Time) (float64, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for i := 0; i < maxCurveLookbackDays; i++ {
		date := end.AddDate(0, 0, -i)
		curve, err := h.YieldCurveClient.GetYieldCurve(ctx, date)
		if err != nil {
			lastErr = err
			continue
		}
		rate, err := curve.GetRate(h.Config.Months)
		if err != nil {
			return 0, fmt.Errorf("failed to read %d month yield on %s: %w", h.Config.Months, date.Format(time.DateOnly), err)
		}
		log.Infow("using treasury yield as risk free rate", "date", date.Format(time.DateOnly), "months", h.Config.Months, "rate", rate)
		return rate, nil
	}

	return 0, fmt.Errorf("%w: no treasury curve within %d days of %s: %w", domain.ErrNetwork, maxCurveLookbackDays, end.Format(time.DateOnly), lastErr)
}

// yield tickers like ^IRX quote an annualized yield in percent, so the
// window average / 100 is the annual rate
func (h riskFreeRateServiceHandler) fromYieldTicker(ctx context.Context, start, end time.Time) (float64, error) {
	log := logger.FromContext(ctx)

	series, err := h.PriceRepository.FetchHistory(ctx, h.Config.Ticker, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to get risk free history for %s: %w", h.Config.Ticker, err)
	}

	yields := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		yields = append(yields, p.Price)
	}
	mean, err := stats.Mean(yields)
	if err != nil {
		return 0, fmt.Errorf("%w: no yields for %s: %w", domain.ErrInsufficientData, h.Config.Ticker, err)
	}

	rate := mean / 100
	log.Infow("using yield ticker as risk free rate", "ticker", h.Config.Ticker, "observations", len(yields), "rate", rate)

	return rate, nil
}
