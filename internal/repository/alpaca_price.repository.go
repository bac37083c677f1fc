package repository

import (
	"capm/internal/domain"
	"capm/internal/logger"
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type alpacaPriceRepositoryHandler struct {
	MdClient   *marketdata.Client
	Adjustment marketdata.Adjustment
	TimeFrame  marketdata.TimeFrame
}

func NewAlpacaPriceRepository(apiKey, apiSecret, endpoint string, field domain.PriceField, freq domain.Frequency) PriceHistoryRepository {
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		BaseURL:   endpoint,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	adjustment := marketdata.All
	if field == domain.PriceFieldClose {
		adjustment = marketdata.Raw
	}

	return alpacaPriceRepositoryHandler{
		MdClient:   mdClient,
		Adjustment: adjustment,
		TimeFrame:  alpacaTimeFrame(freq),
	}
}

func alpacaTimeFrame(freq domain.Frequency) marketdata.TimeFrame {
	switch freq {
	case domain.Weekly:
		return marketdata.NewTimeFrame(1, marketdata.Week)
	case domain.Monthly:
		return marketdata.NewTimeFrame(1, marketdata.Month)
	default:
		return marketdata.OneDay
	}
}

func (h alpacaPriceRepositoryHandler) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	log := logger.FromContext(ctx)

	bars, err := h.MdClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  h.TimeFrame,
		Adjustment: h.Adjustment,
		Start:      start,
		End:        end.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bars for %s: %w", domain.ErrNetwork, symbol, err)
	}

	points := []domain.PricePoint{}
	for _, bar := range bars {
		if !inRange(bar.Timestamp, start, end) {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  bar.Timestamp.UTC(),
			Price: bar.Close,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s between %s and %s", domain.ErrDataUnavailable, symbol, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	log.Debugw("fetched alpaca bars", "symbol", symbol, "points", len(points))

	return normalizeSeries(symbol, points), nil
}
