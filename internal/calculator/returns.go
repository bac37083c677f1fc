package calculator

import (
	"capm/internal/domain"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ToReturns converts a price series into simple periodic returns,
// each dated on the later of the two prices
func ToReturns(series domain.PriceSeries) (domain.ReturnSeries, error) {
	if len(series.Points) < 2 {
		return domain.ReturnSeries{}, fmt.Errorf("%w: %s has %d prices, need at least 2", domain.ErrInsufficientData, series.Symbol, len(series.Points))
	}

	for i, p := range series.Points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return domain.ReturnSeries{}, fmt.Errorf("%w: %s has price %v on %s", domain.ErrInvalidPrice, series.Symbol, p.Price, p.Date.Format(time.DateOnly))
		}
		// at most one price per calendar day
		if i > 0 && !domain.NewDate(p.Date).After(domain.NewDate(series.Points[i-1].Date)) {
			return domain.ReturnSeries{}, fmt.Errorf("%w: %s dates not strictly ascending at %s", domain.ErrInvalidInput, series.Symbol, p.Date.Format(time.DateOnly))
		}
	}

	out := domain.ReturnSeries{
		Symbol: series.Symbol,
		Points: make([]domain.ReturnPoint, 0, len(series.Points)-1),
	}

	lastPrice := decimal.NewFromFloat(series.Points[0].Price)
	for _, p := range series.Points[1:] {
		price := decimal.NewFromFloat(p.Price)
		ret := (price.Sub(lastPrice)).Div(lastPrice).InexactFloat64()
		lastPrice = price

		out.Points = append(out.Points, domain.ReturnPoint{
			Date:   p.Date,
			Return: ret,
		})
	}

	return out, nil
}

// Align inner-joins two return series on calendar date. dates missing
// from either side are dropped, never filled
func Align(asset, benchmark domain.ReturnSeries) (domain.AlignedReturns, error) {
	benchmarkByDate := make(map[string]float64, len(benchmark.Points))
	for _, p := range benchmark.Points {
		benchmarkByDate[p.Date.Format(time.DateOnly)] = p.Return
	}

	out := domain.AlignedReturns{}
	for _, p := range asset.Points {
		b, ok := benchmarkByDate[p.Date.Format(time.DateOnly)]
		if !ok {
			continue
		}
		out = append(out, domain.AlignedReturn{
			Date:            domain.NewDate(p.Date),
			AssetReturn:     p.Return,
			BenchmarkReturn: b,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s and %s share no dates", domain.ErrNoOverlap, asset.Symbol, benchmark.Symbol)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out, nil
}
