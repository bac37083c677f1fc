package repository

import (
	"capm/internal/domain"
	"context"
	"fmt"
	"sync"
	"time"
)

type historyKey struct {
	symbol string
	start  string
	end    string
}

type PriceCache map[historyKey]domain.PriceSeries

// CachedPriceRepositoryHandler remembers successful fetches so a batch
// that reuses the same benchmark only downloads it once. failures are
// never cached
type CachedPriceRepositoryHandler struct {
	Next      PriceHistoryRepository
	Cache     PriceCache
	ReadMutex *sync.RWMutex
}

func NewCachedPriceRepository(next PriceHistoryRepository) PriceHistoryRepository {
	return &CachedPriceRepositoryHandler{
		Next:      next,
		Cache:     make(PriceCache),
		ReadMutex: &sync.RWMutex{},
	}
}

func newHistoryKey(symbol string, start, end time.Time) historyKey {
	return historyKey{
		symbol: symbol,
		start:  start.Format(time.DateOnly),
		end:    end.Format(time.DateOnly),
	}
}

func (h *CachedPriceRepositoryHandler) GetFromCache(symbol string, start, end time.Time) *domain.PriceSeries {
	h.ReadMutex.RLock()
	defer h.ReadMutex.RUnlock()
	if series, ok := h.Cache[newHistoryKey(symbol, start, end)]; ok {
		return copySeries(series)
	}
	return nil
}

func (h *CachedPriceRepositoryHandler) AddToCache(symbol string, start, end time.Time, series domain.PriceSeries) {
	h.ReadMutex.Lock()
	h.Cache[newHistoryKey(symbol, start, end)] = *copySeries(series)
	h.ReadMutex.Unlock()
}

func (h *CachedPriceRepositoryHandler) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	if series := h.GetFromCache(symbol, start, end); series != nil {
		return series, nil
	}

	series, err := h.Next.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, fmt.Errorf("%w: provider returned no series for %s", domain.ErrDataUnavailable, symbol)
	}

	h.AddToCache(symbol, start, end, *series)
	return series, nil
}

// callers own what they get back, so hand out copies
func copySeries(s domain.PriceSeries) *domain.PriceSeries {
	points := make([]domain.PricePoint, len(s.Points))
	copy(points, s.Points)
	return &domain.PriceSeries{
		Symbol: s.Symbol,
		Points: points,
	}
}
