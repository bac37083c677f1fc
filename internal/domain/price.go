package domain

import "time"

type PriceField string

const (
	PriceFieldAdjClose PriceField = "adjclose"
	PriceFieldClose    PriceField = "close"
)

type PricePoint struct {
	Date  time.Time
	Price float64
}

// PriceSeries is one instrument's history, ascending by date
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

func (s PriceSeries) Len() int {
	return len(s.Points)
}

type ReturnPoint struct {
	Date   time.Time
	Return float64
}

type ReturnSeries struct {
	Symbol string
	Points []ReturnPoint
}

type AlignedReturn struct {
	Date            time.Time `json:"date"`
	AssetReturn     float64   `json:"assetReturn"`
	BenchmarkReturn float64   `json:"benchmarkReturn"`
}

// AlignedReturns only holds dates present in both
// return series
type AlignedReturns []AlignedReturn

func (a AlignedReturns) AssetReturns() []float64 {
	out := make([]float64, len(a))
	for i, r := range a {
		out[i] = r.AssetReturn
	}
	return out
}

func (a AlignedReturns) BenchmarkReturns() []float64 {
	out := make([]float64, len(a))
	for i, r := range a {
		out[i] = r.BenchmarkReturn
	}
	return out
}

// NewDate truncates t to its calendar date in UTC
func NewDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
