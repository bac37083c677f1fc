package app

import (
	"capm/internal/domain"
	"capm/internal/logger"
	"capm/internal/util"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
)

// BatchRow is one line of the batch input file
type BatchRow struct {
	Firm      string `csv:"firm"`
	Ticker    string `csv:"ticker"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

type BatchResult struct {
	Row    BatchRow
	Report *domain.CapmReport
	Err    error
}

type BatchInput struct {
	Rows        []BatchRow
	Benchmark   string
	Concurrency int

	RiskFreeRate         *float64
	ExpectedMarketReturn *float64
}

func LoadBatchFile(path string) ([]BatchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file %s: %w", path, err)
	}
	defer f.Close()

	return ReadBatch(f)
}

// ReadBatch parses firm,ticker,start_date,end_date rows, skipping rows
// without a ticker
func ReadBatch(r io.Reader) ([]BatchRow, error) {
	rows := []BatchRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to parse batch file: %w", domain.ErrInvalidInput, err)
	}

	out := make([]BatchRow, 0, len(rows))
	for _, row := range rows {
		row.Ticker = strings.TrimSpace(row.Ticker)
		if row.Ticker == "" {
			continue
		}
		row.Firm = strings.TrimSpace(row.Firm)
		row.StartDate = strings.TrimSpace(row.StartDate)
		row.EndDate = strings.TrimSpace(row.EndDate)
		out = append(out, row)
	}
	return out, nil
}

func (row BatchRow) toInput(in BatchInput) (EstimateInput, error) {
	start, err := util.ParseDate(row.StartDate)
	if err != nil {
		return EstimateInput{}, fmt.Errorf("%w: bad start_date for %s: %w", domain.ErrInvalidInput, row.Ticker, err)
	}
	end, err := util.ParseDate(row.EndDate)
	if err != nil {
		return EstimateInput{}, fmt.Errorf("%w: bad end_date for %s: %w", domain.ErrInvalidInput, row.Ticker, err)
	}
	return EstimateInput{
		Symbol:               row.Ticker,
		Benchmark:            in.Benchmark,
		Start:                start,
		End:                  end,
		RiskFreeRate:         in.RiskFreeRate,
		ExpectedMarketReturn: in.ExpectedMarketReturn,
	}, nil
}

// EstimateBatch estimates every row. a failing row is recorded on its
// result and does not stop the others. results keep input order and are
// presented once all rows finish
func (h CapmHandler) EstimateBatch(ctx context.Context, in BatchInput) ([]BatchResult, error) {
	log := logger.FromContext(ctx)

	concurrency := in.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]BatchResult, len(in.Rows))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, row := range in.Rows {
		results[i].Row = row
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			input, err := row.toInput(in)
			if err != nil {
				results[i].Err = err
				return nil
			}
			report, err := h.estimate(ctx, input)
			if err != nil {
				log.Warnw("failed to estimate row", "firm", row.Firm, "ticker", row.Ticker, "error", err.Error(), "kind", domain.ErrorKind(err))
			}
			results[i].Report = report
			results[i].Err = err
			return nil
		})
	}
	// rows never fail the group
	_ = g.Wait()

	if h.Presenter == nil {
		return results, nil
	}
	var presentErrs []error
	for _, result := range results {
		if result.Report == nil {
			continue
		}
		if err := h.Presenter.Present(ctx, result.Report); err != nil {
			presentErrs = append(presentErrs, fmt.Errorf("failed to present %s: %w", result.Row.Ticker, err))
		}
	}

	return results, errors.Join(presentErrs...)
}

// Failed counts rows that did not produce a report
func Failed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
