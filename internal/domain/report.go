package domain

import (
	"time"

	"github.com/google/uuid"
)

// CapmReport is everything one estimate produced, handed to presenters
type CapmReport struct {
	RunID      uuid.UUID  `json:"runID"`
	Symbol     string     `json:"symbol"`
	Benchmark  string     `json:"benchmark"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Frequency  Frequency  `json:"frequency"`
	PriceField PriceField `json:"priceField"`

	Regression  *RegressionResult `json:"regression"`
	Estimate    *CapmEstimate     `json:"estimate"`
	Diagnostics *Diagnostics      `json:"diagnostics"`

	// residuals line up with these
	Aligned AlignedReturns `json:"-"`
}
