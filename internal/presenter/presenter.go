package presenter

import (
	"capm/internal/domain"
	"context"
	"errors"
	"fmt"
)

// ResultPresenter renders a finished estimate. it receives the
// residuals in the same date order as report.Aligned
type ResultPresenter interface {
	Present(ctx context.Context, report *domain.CapmReport) error
}

type multiPresenter []ResultPresenter

// Multi fans a report out to every presenter and joins their errors
func Multi(presenters ...ResultPresenter) ResultPresenter {
	return multiPresenter(presenters)
}

func (m multiPresenter) Present(ctx context.Context, report *domain.CapmReport) error {
	errs := []error{}
	for _, p := range m {
		if err := p.Present(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validate(report *domain.CapmReport) error {
	if report == nil || report.Regression == nil || report.Estimate == nil {
		return fmt.Errorf("%w: incomplete report", domain.ErrInvalidInput)
	}
	if len(report.Regression.Residuals) != len(report.Aligned) {
		return fmt.Errorf("%w: %d residuals for %d aligned returns", domain.ErrInvalidInput, len(report.Regression.Residuals), len(report.Aligned))
	}
	return nil
}
