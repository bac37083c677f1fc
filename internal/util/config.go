package util

import (
	"capm/internal/domain"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const EnvVar = "CAPM_ENV"

type Config struct {
	Provider   ProviderConfig `yaml:"provider" envconfig:"PROVIDER"`
	Benchmark  string         `yaml:"benchmark" envconfig:"BENCHMARK" validate:"required"`
	PriceField string         `yaml:"price_field" envconfig:"PRICE_FIELD" validate:"oneof=adjclose close"`
	Frequency  string         `yaml:"frequency" envconfig:"FREQUENCY" validate:"oneof=daily weekly monthly"`
	RiskFree   RiskFreeConfig `yaml:"risk_free" envconfig:"RISK_FREE"`

	// annual; nil means use the benchmark's historical mean
	ExpectedMarketReturn *float64 `yaml:"expected_market_return" ignored:"true"`

	Batch BatchConfig `yaml:"batch" envconfig:"BATCH"`
	Api   ApiConfig   `yaml:"api" envconfig:"API"`
}

type ProviderConfig struct {
	Name         string       `yaml:"name" envconfig:"NAME" validate:"oneof=yahoo alpaca csv"`
	CsvPath      string       `yaml:"csv_path" envconfig:"CSV_PATH" validate:"required_if=Name csv"`
	CacheEnabled bool         `yaml:"cache_enabled" envconfig:"CACHE_ENABLED"`
	Alpaca       AlpacaConfig `yaml:"alpaca" envconfig:"ALPACA"`
}

type AlpacaConfig struct {
	ApiKey    string `yaml:"api_key" envconfig:"API_KEY"`
	ApiSecret string `yaml:"api_secret" envconfig:"API_SECRET"`
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT"`
}

type RiskFreeConfig struct {
	Source string `yaml:"source" envconfig:"SOURCE" validate:"oneof=constant treasury yahoo"`
	// annual, used by the constant source
	Rate   float64 `yaml:"rate" envconfig:"RATE" validate:"gte=-1,lte=1"`
	Ticker string  `yaml:"ticker" envconfig:"TICKER" validate:"required_if=Source yahoo"`
	// maturity read off the treasury curve
	Months int `yaml:"months" envconfig:"MONTHS" validate:"gte=1,lte=360"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=1,lte=64"`
}

type ApiConfig struct {
	Port int `yaml:"port" envconfig:"PORT" validate:"gte=1,lte=65535"`
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Name:         "yahoo",
			CacheEnabled: true,
		},
		Benchmark:  "SPY",
		PriceField: string(domain.PriceFieldAdjClose),
		Frequency:  string(domain.Daily),
		RiskFree: RiskFreeConfig{
			Source: "yahoo",
			Ticker: "^IRX",
			Months: 3,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Api: ApiConfig{
			Port: 3009,
		},
	}
}

// ConfigFile picks the config file for the current CAPM_ENV
func ConfigFile() string {
	switch strings.ToLower(os.Getenv(EnvVar)) {
	case "dev":
		return "config-dev.yaml"
	case "test":
		return "config-test.yaml"
	}
	return "config.yaml"
}

// LoadConfig layers defaults, the yaml file at path (if it exists) and
// CAPM_* environment variables, then validates the result
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigFile()
	}
	f, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(f, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process("CAPM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) ParsedFrequency() domain.Frequency {
	f, err := domain.ParseFrequency(c.Frequency)
	if err != nil {
		return domain.Daily
	}
	return f
}
