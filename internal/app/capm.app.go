package app

import (
	"capm/internal/calculator"
	"capm/internal/domain"
	"capm/internal/logger"
	"capm/internal/presenter"
	"capm/internal/repository"
	"capm/internal/service"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CapmHandler struct {
	PriceRepository     repository.PriceHistoryRepository
	RiskFreeRateService service.RiskFreeRateService
	// optional; batch runs present after all rows finish
	Presenter presenter.ResultPresenter

	Frequency  domain.Frequency
	PriceField domain.PriceField
	// annual; nil means use the benchmark's historical mean
	ExpectedMarketReturn *float64
}

type EstimateInput struct {
	Symbol    string
	Benchmark string
	Start     time.Time
	End       time.Time

	// annual overrides
	RiskFreeRate         *float64
	ExpectedMarketReturn *float64
}

func (in EstimateInput) validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return fmt.Errorf("%w: missing symbol", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Benchmark) == "" {
		return fmt.Errorf("%w: missing benchmark", domain.ErrInvalidInput)
	}
	if !in.Start.Before(in.End) {
		return fmt.Errorf("%w: start %s is not before end %s", domain.ErrInvalidInput, in.Start.Format(time.DateOnly), in.End.Format(time.DateOnly))
	}
	return nil
}

// Estimate runs one estimate end to end and hands it to the presenter
func (h CapmHandler) Estimate(ctx context.Context, in EstimateInput) (*domain.CapmReport, error) {
	report, err := h.estimate(ctx, in)
	if err != nil {
		return nil, err
	}
	if h.Presenter != nil {
		if err := h.Presenter.Present(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to present %s: %w", in.Symbol, err)
		}
	}
	return report, nil
}

func (h CapmHandler) estimate(ctx context.Context, in EstimateInput) (*domain.CapmReport, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	runID := uuid.New()
	log := logger.FromContext(ctx).With("runID", runID.String(), "symbol", in.Symbol, "benchmark", in.Benchmark)
	ctx = logger.NewContext(ctx, log)

	freq := h.Frequency
	if freq == "" {
		freq = domain.Daily
	}
	priceField := h.PriceField
	if priceField == "" {
		priceField = domain.PriceFieldAdjClose
	}

	var (
		assetPrices     *domain.PriceSeries
		benchmarkPrices *domain.PriceSeries
		annualRf        float64
	)

	endSpan := domain.StartSpan(ctx, "fetch")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assetPrices, err = h.PriceRepository.FetchHistory(gctx, in.Symbol, in.Start, in.End)
		if err != nil {
			return fmt.Errorf("failed to get prices for %s: %w", in.Symbol, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		benchmarkPrices, err = h.PriceRepository.FetchHistory(gctx, in.Benchmark, in.Start, in.End)
		if err != nil {
			return fmt.Errorf("failed to get prices for benchmark %s: %w", in.Benchmark, err)
		}
		return nil
	})
	g.Go(func() error {
		if in.RiskFreeRate != nil {
			annualRf = *in.RiskFreeRate
			return nil
		}
		var err error
		annualRf, err = h.RiskFreeRateService.AnnualRate(gctx, in.Start, in.End)
		if err != nil {
			return fmt.Errorf("failed to get risk free rate: %w", err)
		}
		return nil
	})
	err := g.Wait()
	endSpan()
	if err != nil {
		return nil, err
	}

	endSpan = domain.StartSpan(ctx, "returns")
	assetReturns, err := calculator.ToReturns(*assetPrices)
	if err != nil {
		return nil, err
	}
	benchmarkReturns, err := calculator.ToReturns(*benchmarkPrices)
	if err != nil {
		return nil, err
	}
	aligned, err := calculator.Align(assetReturns, benchmarkReturns)
	endSpan()
	if err != nil {
		return nil, err
	}

	endSpan = domain.StartSpan(ctx, "fit")
	periodRf := freq.PeriodRate(annualRf)
	regression, err := calculator.Fit(aligned, periodRf)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s on %s: %w", in.Symbol, in.Benchmark, err)
	}

	endSpan = domain.StartSpan(ctx, "estimate")
	defer endSpan()

	diagnostics, err := calculator.Diagnose(calculator.DiagnosticsInput{
		Asset:      assetReturns,
		Benchmark:  benchmarkReturns,
		Aligned:    aligned,
		Regression: regression,
		Frequency:  freq,
	})
	if err != nil {
		return nil, err
	}
	diagnostics.PeriodRiskFreeRate = periodRf

	historical, err := calculator.HistoricalMarketReturn(aligned, freq)
	if err != nil {
		return nil, err
	}
	diagnostics.HistoricalMarketReturn = historical

	marketReturn := historical
	switch {
	case in.ExpectedMarketReturn != nil:
		marketReturn = *in.ExpectedMarketReturn
	case h.ExpectedMarketReturn != nil:
		marketReturn = *h.ExpectedMarketReturn
	default:
		diagnostics.UsedHistoricalMktReturn = true
	}

	estimate, err := calculator.Estimate(regression.Beta, annualRf, marketReturn)
	if err != nil {
		return nil, err
	}

	log.Infow(
		"estimated capm",
		"beta", regression.Beta,
		"alpha", regression.Alpha,
		"rSquared", regression.RSquared,
		"observations", regression.N,
		"expectedReturn", estimate.ExpectedReturn,
	)

	return &domain.CapmReport{
		RunID:       runID,
		Symbol:      in.Symbol,
		Benchmark:   in.Benchmark,
		Start:       in.Start,
		End:         in.End,
		Frequency:   freq,
		PriceField:  priceField,
		Regression:  regression,
		Estimate:    estimate,
		Diagnostics: diagnostics,
		Aligned:     aligned,
	}, nil
}
