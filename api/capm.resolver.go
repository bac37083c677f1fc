package api

import (
	"capm/internal/app"
	"capm/internal/domain"
	"capm/internal/util"
	"fmt"

	"github.com/gin-gonic/gin"
)

type capmRequest struct {
	Symbol               string   `json:"symbol" binding:"required"`
	Benchmark            string   `json:"benchmark"`
	Start                string   `json:"start" binding:"required"`
	End                  string   `json:"end" binding:"required"`
	RiskFreeRate         *float64 `json:"riskFreeRate"`
	ExpectedMarketReturn *float64 `json:"expectedMarketReturn"`
	IncludeReturns       bool     `json:"includeReturns"`
}

type capmResponse struct {
	*domain.CapmReport
	Returns domain.AlignedReturns `json:"returns,omitempty"`
}

func (m ApiHandler) capm(c *gin.Context) {
	var requestBody capmRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(fmt.Errorf("%w: failed to read request body: %w", domain.ErrInvalidInput, err), c)
		return
	}

	start, err := util.ParseDate(requestBody.Start)
	if err != nil {
		returnErrorJson(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err), c)
		return
	}
	end, err := util.ParseDate(requestBody.End)
	if err != nil {
		returnErrorJson(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err), c)
		return
	}

	benchmark := requestBody.Benchmark
	if benchmark == "" {
		benchmark = m.DefaultBenchmark
	}

	report, err := m.CapmHandler.Estimate(c.Request.Context(), app.EstimateInput{
		Symbol:               requestBody.Symbol,
		Benchmark:            benchmark,
		Start:                start,
		End:                  end,
		RiskFreeRate:         requestBody.RiskFreeRate,
		ExpectedMarketReturn: requestBody.ExpectedMarketReturn,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := capmResponse{CapmReport: report}
	if requestBody.IncludeReturns {
		out.Returns = report.Aligned
	}

	c.Header("X-Run-Id", report.RunID.String())
	c.JSON(200, out)
}
