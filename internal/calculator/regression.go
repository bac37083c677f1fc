package calculator

import (
	"capm/internal/domain"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	minRegressionPoints = 3
	// Sxx at or below this fraction of sum(x^2) is treated as a flat benchmark
	zeroVarianceTolerance = 1e-12
)

// Fit regresses asset excess returns on benchmark excess returns with
// ordinary least squares. riskFreeRate is per period and constant
func Fit(pairs domain.AlignedReturns, riskFreeRate float64) (*domain.RegressionResult, error) {
	if math.IsNaN(riskFreeRate) || math.IsInf(riskFreeRate, 0) {
		return nil, fmt.Errorf("%w: risk free rate %v", domain.ErrInvalidInput, riskFreeRate)
	}
	n := len(pairs)
	if n < minRegressionPoints {
		return nil, fmt.Errorf("%w: %d observations, need at least %d", domain.ErrDegenerateRegression, n, minRegressionPoints)
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, p := range pairs {
		if !isFinite(p.AssetReturn) || !isFinite(p.BenchmarkReturn) {
			return nil, fmt.Errorf("%w: non-finite return on %s", domain.ErrInvalidInput, p.Date.Format("2006-01-02"))
		}
		x[i] = p.BenchmarkReturn - riskFreeRate
		y[i] = p.AssetReturn - riskFreeRate
	}

	xMean, err := stats.Mean(x)
	if err != nil {
		return nil, err
	}
	yMean, err := stats.Mean(y)
	if err != nil {
		return nil, err
	}

	var sxx, sxy, syy, sumSq float64
	for i := range x {
		dx := x[i] - xMean
		dy := y[i] - yMean
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
		sumSq += x[i] * x[i]
	}

	if sxx <= zeroVarianceTolerance*sumSq {
		return nil, fmt.Errorf("%w: %w: benchmark excess returns are constant", domain.ErrDegenerateRegression, domain.ErrZeroVariance)
	}

	beta := sxy / sxx
	alpha := yMean - beta*xMean

	residuals := make([]float64, n)
	var ssRes float64
	for i := range x {
		residuals[i] = y[i] - (alpha + beta*x[i])
		ssRes += residuals[i] * residuals[i]
	}

	dof := n - 2
	s2 := ssRes / float64(dof)
	betaStdErr := math.Sqrt(s2 / sxx)
	alphaStdErr := math.Sqrt(s2 * (1/float64(n) + xMean*xMean/sxx))

	result := &domain.RegressionResult{
		Alpha:            alpha,
		Beta:             beta,
		AlphaStdErr:      alphaStdErr,
		BetaStdErr:       betaStdErr,
		RSquared:         rSquared(ssRes, syy),
		N:                n,
		DegreesOfFreedom: dof,
		Residuals:        residuals,
	}

	result.AlphaTStat, result.AlphaPValue = tTest(alpha, alphaStdErr, dof)
	result.BetaTStat, result.BetaPValue = tTest(beta, betaStdErr, dof)

	return result, nil
}

// a flat asset has no variance to explain, which we report as 0
// rather than NaN
func rSquared(ssRes, ssTot float64) float64 {
	if ssTot == 0 {
		return 0
	}
	r2 := 1 - ssRes/ssTot
	return math.Max(0, math.Min(1, r2))
}

// two-sided test of coefficient == 0
func tTest(coefficient, stdErr float64, dof int) (*float64, *float64) {
	if stdErr == 0 || math.IsNaN(stdErr) {
		return nil, nil
	}
	t := coefficient / stdErr
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	p := 2 * dist.CDF(-math.Abs(t))
	return &t, &p
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
