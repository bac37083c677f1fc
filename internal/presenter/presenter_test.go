package presenter

import (
	"bytes"
	"capm/internal/domain"
	"capm/internal/util"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newReport() *domain.CapmReport {
	d := util.NewDate(2024, 3, 4)
	tStat := 5.0
	pValue := 0.001
	return &domain.CapmReport{
		RunID:      uuid.New(),
		Symbol:     "BRK.B",
		Benchmark:  "SPY",
		Start:      d,
		End:        d.AddDate(0, 0, 3),
		Frequency:  domain.Daily,
		PriceField: domain.PriceFieldAdjClose,
		Regression: &domain.RegressionResult{
			Alpha:            0.001,
			Beta:             1.2,
			AlphaStdErr:      0.002,
			BetaStdErr:       0.24,
			RSquared:         0.8,
			BetaTStat:        &tStat,
			BetaPValue:       &pValue,
			N:                3,
			DegreesOfFreedom: 1,
			Residuals:        []float64{0.002, -0.001, -0.001},
		},
		Estimate: &domain.CapmEstimate{
			ExpectedReturn: 0.092,
			Beta:           1.2,
			RiskFreeRate:   0.02,
			MarketPremium:  0.06,
		},
		Diagnostics: &domain.Diagnostics{
			Observations:       3,
			PeriodRiskFreeRate: 0.0001,
		},
		Aligned: domain.AlignedReturns{
			{Date: d.AddDate(0, 0, 1), AssetReturn: 0.0131, BenchmarkReturn: 0.01},
			{Date: d.AddDate(0, 0, 2), AssetReturn: -0.0132, BenchmarkReturn: -0.01},
			{Date: d.AddDate(0, 0, 3), AssetReturn: 0.0071, BenchmarkReturn: 0.005},
		},
	}
}

func TestTextPresenter(t *testing.T) {
	buf := &bytes.Buffer{}
	err := TextPresenter{Out: buf}.Present(context.Background(), newReport())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "BRK.B vs SPY")
	require.Contains(t, out, "2024-03-04 to 2024-03-07")
	require.Contains(t, out, "1.2000")
	require.Contains(t, out, "0.0920")
	// alpha has no t statistic
	require.Regexp(t, `alpha\s+0\.001000\s+0\.002000\s+-\s+-`, out)
}

func TestJsonPresenter(t *testing.T) {
	buf := &bytes.Buffer{}
	report := newReport()
	err := JsonPresenter{Out: buf}.Present(context.Background(), report)
	require.NoError(t, err)

	decoded := domain.CapmReport{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, report.RunID, decoded.RunID)
	require.Equal(t, 1.2, decoded.Regression.Beta)
	require.Nil(t, decoded.Regression.AlphaTStat)
	require.Equal(t, 5.0, *decoded.Regression.BetaTStat)
	require.Equal(t, 0.092, decoded.Estimate.ExpectedReturn)

	// residuals line up with dated rows
	rows := struct {
		Regression domain.RegressionResult `json:"regression"`
		Returns    []domain.AlignedReturn  `json:"returns"`
	}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows.Returns, len(rows.Regression.Residuals))
	for i, r := range rows.Returns {
		require.True(t, report.Aligned[i].Date.Equal(r.Date))
		require.Equal(t, report.Aligned[i].AssetReturn, r.AssetReturn)
	}
}

func TestResidualCsvPresenter(t *testing.T) {
	dir := t.TempDir()
	p := ResidualCsvPresenter{Dir: dir}
	report := newReport()

	require.NoError(t, p.Present(context.Background(), report))
	require.Equal(t, filepath.Join(dir, "BRK_B_SPY_residuals.csv"), p.Path(report))

	f, err := os.Open(p.Path(report))
	require.NoError(t, err)
	defer f.Close()

	rows := []ResidualRow{}
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 3)

	for i, row := range rows {
		require.Equal(t, report.Aligned[i].Date.Format("2006-01-02"), row.Date)
		require.InDelta(t, report.Aligned[i].AssetReturn-0.0001, row.AssetExcess, 1e-12)
		require.InDelta(t, 0.001+1.2*(report.Aligned[i].BenchmarkReturn-0.0001), row.Fitted, 1e-12)
		require.InDelta(t, report.Regression.Residuals[i], row.Residual, 1e-12)
	}
}

func TestPresenter_rejectsMismatchedResiduals(t *testing.T) {
	report := newReport()
	report.Regression.Residuals = report.Regression.Residuals[:2]

	err := TextPresenter{Out: &bytes.Buffer{}}.Present(context.Background(), report)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

type failingCloser struct {
	bytes.Buffer
}

func (failingCloser) Close() error {
	return errors.New("disk full")
}

type nopCloser struct {
	bytes.Buffer
}

func (nopCloser) Close() error {
	return nil
}

func Test_writeRows(t *testing.T) {
	rows, err := ResidualRows(newReport())
	require.NoError(t, err)

	t.Run("reports a failed close", func(t *testing.T) {
		err := writeRows(&failingCloser{}, "out.csv", rows)
		require.ErrorContains(t, err, "failed to close out.csv: disk full")
	})

	t.Run("writes header and rows", func(t *testing.T) {
		w := &nopCloser{}
		require.NoError(t, writeRows(w, "out.csv", rows))
		lines := strings.Split(strings.TrimSpace(w.String()), "\n")
		require.Len(t, lines, len(rows)+1)
		require.Equal(t, "date,asset_excess,benchmark_excess,fitted,residual", lines[0])
	})
}

type failingPresenter struct{}

func (failingPresenter) Present(ctx context.Context, report *domain.CapmReport) error {
	return errors.New("sink unavailable")
}

func TestMulti(t *testing.T) {
	buf := &bytes.Buffer{}
	err := Multi(failingPresenter{}, TextPresenter{Out: buf}).Present(context.Background(), newReport())

	require.ErrorContains(t, err, "sink unavailable")
	// later presenters still run
	require.True(t, strings.Contains(buf.String(), "BRK.B"))
}
