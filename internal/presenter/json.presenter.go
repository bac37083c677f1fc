package presenter

import (
	"capm/internal/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

type JsonPresenter struct {
	Out io.Writer
}

// jsonReport carries the aligned rows so residuals[i] can be matched
// to returns[i].date
type jsonReport struct {
	*domain.CapmReport
	Returns domain.AlignedReturns `json:"returns"`
}

func (p JsonPresenter) Present(ctx context.Context, report *domain.CapmReport) error {
	if err := validate(report); err != nil {
		return err
	}
	bytes, err := json.MarshalIndent(jsonReport{
		CapmReport: report,
		Returns:    report.Aligned,
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal report for %s: %w", report.Symbol, err)
	}
	_, err = fmt.Fprintln(p.Out, string(bytes))
	return err
}
