package domain

type RegressionResult struct {
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	AlphaStdErr float64 `json:"alphaStdErr"`
	BetaStdErr  float64 `json:"betaStdErr"`
	RSquared    float64 `json:"rSquared"`

	// nil when the standard error is zero
	AlphaTStat  *float64 `json:"alphaTStat,omitempty"`
	BetaTStat   *float64 `json:"betaTStat,omitempty"`
	AlphaPValue *float64 `json:"alphaPValue,omitempty"`
	BetaPValue  *float64 `json:"betaPValue,omitempty"`

	N                int `json:"n"`
	DegreesOfFreedom int `json:"degreesOfFreedom"`

	// same order as the aligned returns that were fit
	Residuals []float64 `json:"residuals"`
}

// Fitted returns the predicted excess return for a benchmark
// excess return
func (r RegressionResult) Fitted(benchmarkExcess float64) float64 {
	return r.Alpha + r.Beta*benchmarkExcess
}

type CapmEstimate struct {
	ExpectedReturn float64 `json:"expectedReturn"`
	Beta           float64 `json:"beta"`
	RiskFreeRate   float64 `json:"riskFreeRate"`
	MarketPremium  float64 `json:"marketPremium"`
}

type Diagnostics struct {
	Observations            int     `json:"observations"`
	AssetDatesDropped       int     `json:"assetDatesDropped"`
	BenchmarkDatesDropped   int     `json:"benchmarkDatesDropped"`
	AssetVolatility         float64 `json:"assetVolatility"`
	BenchmarkVolatility     float64 `json:"benchmarkVolatility"`
	Correlation             float64 `json:"correlation"`
	AnnualizedAlpha         float64 `json:"annualizedAlpha"`
	PeriodRiskFreeRate      float64 `json:"periodRiskFreeRate"`
	HistoricalMarketReturn  float64 `json:"historicalMarketReturn"`
	UsedHistoricalMktReturn bool    `json:"usedHistoricalMarketReturn"`
}
