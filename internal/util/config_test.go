package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults when file is missing", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)

		require.Equal(t, "yahoo", cfg.Provider.Name)
		require.Equal(t, "SPY", cfg.Benchmark)
		require.Equal(t, "adjclose", cfg.PriceField)
		require.Equal(t, "^IRX", cfg.RiskFree.Ticker)
		require.Nil(t, cfg.ExpectedMarketReturn)
	})

	t.Run("yaml then env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(path, []byte(`
provider:
  name: csv
  csv_path: prices.csv
benchmark: QQQ
frequency: weekly
risk_free:
  source: constant
  rate: 0.04
expected_market_return: 0.09
`), 0o600)
		require.NoError(t, err)

		t.Setenv("CAPM_BENCHMARK", "IWM")
		t.Setenv("CAPM_RISK_FREE_RATE", "0.05")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		require.Equal(t, "csv", cfg.Provider.Name)
		require.Equal(t, "prices.csv", cfg.Provider.CsvPath)
		require.Equal(t, "IWM", cfg.Benchmark)
		require.Equal(t, "weekly", cfg.Frequency)
		require.Equal(t, 52, cfg.ParsedFrequency().PeriodsPerYear())
		require.Equal(t, "constant", cfg.RiskFree.Source)
		require.Equal(t, 0.05, cfg.RiskFree.Rate)
		require.NotNil(t, cfg.ExpectedMarketReturn)
		require.Equal(t, 0.09, *cfg.ExpectedMarketReturn)
	})

	t.Run("csv provider needs a path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider:\n  name: csv\n"), 0o600))

		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("unknown price field", func(t *testing.T) {
		t.Setenv("CAPM_PRICE_FIELD", "open")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv(EnvVar, "dev")
	require.Equal(t, "config-dev.yaml", ConfigFile())

	t.Setenv(EnvVar, "TEST")
	require.Equal(t, "config-test.yaml", ConfigFile())

	t.Setenv(EnvVar, "")
	require.Equal(t, "config.yaml", ConfigFile())
}
