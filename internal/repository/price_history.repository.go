package repository

import (
	"capm/internal/domain"
	"capm/internal/util"
	"context"
	"sort"
	"time"
)

//go:generate mockgen -source=price_history.repository.go -destination=mocks/mock_price_history.repository.go -package=mock_repository

// PriceHistoryRepository supplies one instrument's price history. a
// symbol with no data fails with domain.ErrDataUnavailable and
// transport failures with domain.ErrNetwork
type PriceHistoryRepository interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error)
}

// normalizeSeries snaps points to calendar dates, sorts them and keeps
// the last point for any repeated date
func normalizeSeries(symbol string, points []domain.PricePoint) *domain.PriceSeries {
	for i := range points {
		points[i].Date = domain.NewDate(points[i].Date)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	out := make([]domain.PricePoint, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}

	return &domain.PriceSeries{
		Symbol: symbol,
		Points: out,
	}
}

// inRange is inclusive on both ends, compared by calendar date
func inRange(t, start, end time.Time) bool {
	d := domain.NewDate(t)
	return util.DateLte(domain.NewDate(start), d) && util.DateLte(d, domain.NewDate(end))
}
