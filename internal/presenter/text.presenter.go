package presenter

import (
	"capm/internal/domain"
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

type TextPresenter struct {
	Out io.Writer
}

func (p TextPresenter) Present(ctx context.Context, report *domain.CapmReport) error {
	if err := validate(report); err != nil {
		return err
	}
	r := report.Regression
	e := report.Estimate

	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CAPM\t%s vs %s\n", report.Symbol, report.Benchmark)
	fmt.Fprintf(w, "window\t%s to %s (%s, %s)\n", report.Start.Format(time.DateOnly), report.End.Format(time.DateOnly), report.Frequency, report.PriceField)
	fmt.Fprintf(w, "observations\t%d\n", r.N)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "\testimate\tstd err\tt\tp\n")
	fmt.Fprintf(w, "alpha\t%.6f\t%.6f\t%s\t%s\n", r.Alpha, r.AlphaStdErr, optional(r.AlphaTStat), optional(r.AlphaPValue))
	fmt.Fprintf(w, "beta\t%.4f\t%.4f\t%s\t%s\n", r.Beta, r.BetaStdErr, optional(r.BetaTStat), optional(r.BetaPValue))
	fmt.Fprintf(w, "r squared\t%.4f\n", r.RSquared)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "risk free rate\t%.4f\n", e.RiskFreeRate)
	fmt.Fprintf(w, "market premium\t%.4f\n", e.MarketPremium)
	fmt.Fprintf(w, "expected return\t%.4f\n", e.ExpectedReturn)

	if d := report.Diagnostics; d != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "annualized alpha\t%.4f\n", d.AnnualizedAlpha)
		fmt.Fprintf(w, "volatility\t%.4f (%s)\t%.4f (%s)\n", d.AssetVolatility, report.Symbol, d.BenchmarkVolatility, report.Benchmark)
		fmt.Fprintf(w, "correlation\t%.4f\n", d.Correlation)
		fmt.Fprintf(w, "dates dropped\t%d (%s)\t%d (%s)\n", d.AssetDatesDropped, report.Symbol, d.BenchmarkDatesDropped, report.Benchmark)
	}

	return w.Flush()
}

func optional(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *f)
}
