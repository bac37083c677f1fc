package presenter

import (
	"capm/internal/domain"
	"capm/internal/logger"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// ResidualRow is one point of the scatter + fitted line a plotting tool
// needs. returns are excess of the risk free rate
type ResidualRow struct {
	Date            string  `csv:"date"`
	AssetExcess     float64 `csv:"asset_excess"`
	BenchmarkExcess float64 `csv:"benchmark_excess"`
	Fitted          float64 `csv:"fitted"`
	Residual        float64 `csv:"residual"`
}

// ResidualCsvPresenter writes <symbol>_<benchmark>_residuals.csv into Dir
type ResidualCsvPresenter struct {
	Dir string
}

func ResidualRows(report *domain.CapmReport) ([]ResidualRow, error) {
	if err := validate(report); err != nil {
		return nil, err
	}
	rf := 0.0
	if report.Diagnostics != nil {
		rf = report.Diagnostics.PeriodRiskFreeRate
	}

	rows := make([]ResidualRow, 0, len(report.Aligned))
	for i, a := range report.Aligned {
		benchmarkExcess := a.BenchmarkReturn - rf
		rows = append(rows, ResidualRow{
			Date:            a.Date.Format(time.DateOnly),
			AssetExcess:     a.AssetReturn - rf,
			BenchmarkExcess: benchmarkExcess,
			Fitted:          report.Regression.Fitted(benchmarkExcess),
			Residual:        report.Regression.Residuals[i],
		})
	}
	return rows, nil
}

func (p ResidualCsvPresenter) Path(report *domain.CapmReport) string {
	name := fmt.Sprintf("%s_%s_residuals.csv", sanitize(report.Symbol), sanitize(report.Benchmark))
	return filepath.Join(p.Dir, name)
}

func (p ResidualCsvPresenter) Present(ctx context.Context, report *domain.CapmReport) error {
	rows, err := ResidualRows(report)
	if err != nil {
		return err
	}

	path := p.Path(report)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeRows(f, path, rows); err != nil {
		return err
	}

	logger.FromContext(ctx).Infow("wrote residuals", "path", path, "rows", len(rows))
	return nil
}

// writeRows always closes w. a failed close is returned
func writeRows(w io.WriteCloser, path string, rows []ResidualRow) (err error) {
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write residuals to %s: %w", path, err)
	}
	return nil
}

// tickers like ^IRX or BRK.B are not friendly file names
func sanitize(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, symbol)
}
