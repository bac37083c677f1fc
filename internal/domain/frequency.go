package domain

import (
	"fmt"
	"strings"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case Daily, "":
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("%w: unrecognized frequency %q", ErrInvalidInput, s)
}

func (f Frequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case Monthly:
		return 12
	default:
		return 252
	}
}

// PeriodRate converts an annual rate into a per-period rate
func (f Frequency) PeriodRate(annual float64) float64 {
	return annual / float64(f.PeriodsPerYear())
}
