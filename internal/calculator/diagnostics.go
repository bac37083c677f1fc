package calculator

import (
	"capm/internal/domain"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

type DiagnosticsInput struct {
	Asset      domain.ReturnSeries
	Benchmark  domain.ReturnSeries
	Aligned    domain.AlignedReturns
	Regression *domain.RegressionResult
	Frequency  domain.Frequency
}

// Diagnose summarizes the sample the regression was fit on. it
// assumes the regression already succeeded, so there are >= 3 pairs
func Diagnose(in DiagnosticsInput) (*domain.Diagnostics, error) {
	assetReturns := in.Aligned.AssetReturns()
	benchmarkReturns := in.Aligned.BenchmarkReturns()
	periods := float64(in.Frequency.PeriodsPerYear())

	assetStdev, err := stats.StandardDeviationSample(assetReturns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute asset stdev: %w", err)
	}
	benchmarkStdev, err := stats.StandardDeviationSample(benchmarkReturns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute benchmark stdev: %w", err)
	}

	// a flat asset has undefined correlation, leave it at 0
	correlation := 0.0
	if assetStdev > 0 && benchmarkStdev > 0 {
		correlation, err = stats.Correlation(assetReturns, benchmarkReturns)
		if err != nil {
			return nil, fmt.Errorf("failed to compute correlation: %w", err)
		}
	}

	out := &domain.Diagnostics{
		Observations:          len(in.Aligned),
		AssetDatesDropped:     len(in.Asset.Points) - len(in.Aligned),
		BenchmarkDatesDropped: len(in.Benchmark.Points) - len(in.Aligned),
		AssetVolatility:       assetStdev * math.Sqrt(periods),
		BenchmarkVolatility:   benchmarkStdev * math.Sqrt(periods),
		Correlation:           correlation,
	}
	if in.Regression != nil {
		out.AnnualizedAlpha = in.Regression.Alpha * periods
	}

	return out, nil
}
