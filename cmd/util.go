package cmd

import (
	"capm/api"
	"capm/internal/app"
	"capm/internal/domain"
	"capm/internal/logger"
	"capm/internal/repository"
	"capm/internal/service"
	"capm/internal/util"
	interestrate "capm/pkg/interest_rate"
	"fmt"

	"github.com/joho/godotenv"
)

// LoadConfig reads .env (if present) before layering config so CAPM_*
// variables can live there
func LoadConfig(path string) (*util.Config, error) {
	_ = godotenv.Load()
	return util.LoadConfig(path)
}

func newPriceRepository(cfg *util.Config) (repository.PriceHistoryRepository, error) {
	field := domain.PriceField(cfg.PriceField)
	freq := cfg.ParsedFrequency()

	var repo repository.PriceHistoryRepository
	switch cfg.Provider.Name {
	case "yahoo":
		repo = repository.NewYahooPriceRepository(field, freq)
	case "alpaca":
		alpacaCfg := cfg.Provider.Alpaca
		repo = repository.NewAlpacaPriceRepository(alpacaCfg.ApiKey, alpacaCfg.ApiSecret, alpacaCfg.Endpoint, field, freq)
	case "csv":
		repo = repository.NewCsvPriceRepository(cfg.Provider.CsvPath)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, cfg.Provider.Name)
	}

	if cfg.Provider.CacheEnabled {
		repo = repository.NewCachedPriceRepository(repo)
	}
	return repo, nil
}

func InitializeDependencies(cfg *util.Config) (*api.ApiHandler, error) {
	priceRepository, err := newPriceRepository(cfg)
	if err != nil {
		return nil, err
	}

	// alpaca has no index yields, so ^IRX style tickers always come from yahoo
	riskFreePriceRepository := priceRepository
	if cfg.Provider.Name == "alpaca" {
		riskFreePriceRepository = repository.NewYahooPriceRepository(domain.PriceFieldClose, cfg.ParsedFrequency())
	}

	riskFreeRateService := service.NewRiskFreeRateService(
		cfg.RiskFree,
		riskFreePriceRepository,
		interestrate.NewClient(),
	)

	apiHandler := &api.ApiHandler{
		CapmHandler: app.CapmHandler{
			PriceRepository:      priceRepository,
			RiskFreeRateService:  riskFreeRateService,
			Frequency:            cfg.ParsedFrequency(),
			PriceField:           domain.PriceField(cfg.PriceField),
			ExpectedMarketReturn: cfg.ExpectedMarketReturn,
		},
		DefaultBenchmark: cfg.Benchmark,
		Logger:           logger.New(),
	}

	return apiHandler, nil
}
