package repository

import (
	"capm/internal/domain"
	"capm/internal/logger"
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

type yahooPriceRepositoryHandler struct {
	PriceField domain.PriceField
	Interval   datetime.Interval
}

func NewYahooPriceRepository(field domain.PriceField, freq domain.Frequency) PriceHistoryRepository {
	return yahooPriceRepositoryHandler{
		PriceField: field,
		Interval:   yahooInterval(freq),
	}
}

func yahooInterval(freq domain.Frequency) datetime.Interval {
	switch freq {
	case domain.Weekly:
		return datetime.Interval("1wk")
	case domain.Monthly:
		return datetime.OneMonth
	default:
		return datetime.OneDay
	}
}

func (h yahooPriceRepositoryHandler) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	log := logger.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stopped before fetching prices for %s: %w", symbol, err)
	}

	// yahoo's end bound is exclusive
	inclusiveEnd := end.AddDate(0, 0, 1)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&inclusiveEnd),
		Symbol:   symbol,
		Interval: h.Interval,
	}
	iter := chart.Get(params)

	points := []domain.PricePoint{}
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stopped reading prices for %s: %w", symbol, err)
		}
		bar := iter.Bar()
		price := bar.AdjClose
		if h.PriceField == domain.PriceFieldClose {
			price = bar.Close
		}
		date := time.Unix(int64(bar.Timestamp), 0).UTC()
		if !inRange(date, start, end) {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  date,
			Price: price.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to get prices for %s: %w", domain.ErrNetwork, symbol, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no prices for %s between %s and %s", domain.ErrDataUnavailable, symbol, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	log.Debugw("fetched yahoo history", "symbol", symbol, "points", len(points), "field", h.PriceField)

	return normalizeSeries(symbol, points), nil
}
