package domain

import "errors"

var (
	ErrInsufficientData     = errors.New("insufficient data")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrNoOverlap            = errors.New("no overlapping dates")
	ErrDegenerateRegression = errors.New("degenerate regression")
	ErrZeroVariance         = errors.New("zero benchmark variance")
	ErrInvalidInput         = errors.New("invalid input")

	// raised by price history providers
	ErrDataUnavailable = errors.New("data unavailable")
	ErrNetwork         = errors.New("network error")
)

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrInsufficientData, "InsufficientDataError"},
	{ErrInvalidPrice, "InvalidPriceError"},
	{ErrNoOverlap, "NoOverlapError"},
	{ErrZeroVariance, "ZeroVarianceError"},
	{ErrDegenerateRegression, "DegenerateRegressionError"},
	{ErrInvalidInput, "InvalidInputError"},
	{ErrDataUnavailable, "DataUnavailableError"},
	{ErrNetwork, "NetworkError"},
}

// ErrorKind names the first known kind in err's chain, or
// "UnknownError"
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "UnknownError"
}

// IsCoreError is true for failures caused by the data itself,
// as opposed to the collaborators that supplied it
func IsCoreError(err error) bool {
	for _, k := range errorKinds[:6] {
		if errors.Is(err, k.err) {
			return true
		}
	}
	return false
}
