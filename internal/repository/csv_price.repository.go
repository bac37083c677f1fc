package repository

import (
	"capm/internal/domain"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// PriceRow is one line of a local price file:
//
//	date,symbol,price
//	2020-01-02,AAPL,75.09
type PriceRow struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Price  float64 `csv:"price"`
}

type csvPriceRepositoryHandler struct {
	Path string
}

func NewCsvPriceRepository(path string) PriceHistoryRepository {
	return csvPriceRepositoryHandler{
		Path: path,
	}
}

func (h csvPriceRepositoryHandler) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %w", domain.ErrDataUnavailable, h.Path, err)
	}
	defer f.Close()

	rows := []PriceRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.Path, err)
	}

	points := []domain.PricePoint{}
	for _, row := range rows {
		if !strings.EqualFold(row.Symbol, symbol) {
			continue
		}
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q for %s in %s", domain.ErrInvalidInput, row.Date, symbol, h.Path)
		}
		if !inRange(date, start, end) {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  date,
			Price: row.Price,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no prices for %s between %s and %s in %s", domain.ErrDataUnavailable, symbol, start.Format(time.DateOnly), end.Format(time.DateOnly), h.Path)
	}

	return normalizeSeries(symbol, points), nil
}
