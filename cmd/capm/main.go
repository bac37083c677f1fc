package main

import (
	"capm/cmd"
	"capm/internal/app"
	"capm/internal/domain"
	"capm/internal/logger"
	"capm/internal/presenter"
	"capm/internal/util"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	format       string
	residualsDir string
	benchmark    string
	riskFreeRate float64
	marketReturn float64
	concurrency  int
	showProfile  bool
	port         int
)

var rootCmd = &cobra.Command{
	Use:           "capm",
	Short:         "Estimate CAPM alpha and beta from price history",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate SYMBOL START END",
	Short: "Regress one asset's excess returns on the benchmark's",
	Long: `Fetches price history for SYMBOL and the benchmark between START and END
(YYYY-MM-DD), fits the excess return regression and prints alpha, beta,
their standard errors, r squared and the CAPM expected return.

Example usage:
  capm estimate AAPL 2023-01-01 2023-12-31
  capm estimate AAPL 2023-01-01 2023-12-31 --benchmark QQQ --format json
  capm estimate AAPL 2023-01-01 2023-12-31 --risk-free-rate 0.05 --market-return 0.09`,
	Args: cobra.ExactArgs(3),
	RunE: runEstimate,
}

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Estimate every row of a firm,ticker,start_date,end_date csv",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /capm over http",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to yaml config (defaults by CAPM_ENV)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&residualsDir, "residuals-dir", "", "Also write <symbol>_<benchmark>_residuals.csv here")
	rootCmd.PersistentFlags().StringVar(&benchmark, "benchmark", "", "Benchmark symbol (defaults to config)")
	rootCmd.PersistentFlags().Float64Var(&riskFreeRate, "risk-free-rate", 0, "Annual risk free rate, overrides the configured source")
	rootCmd.PersistentFlags().Float64Var(&marketReturn, "market-return", 0, "Annual expected market return, defaults to the benchmark's historical mean")
	rootCmd.PersistentFlags().BoolVar(&showProfile, "profile", false, "Log how long each stage took")

	serveCmd.Flags().IntVar(&port, "port", 0, "Port to listen on (defaults to config)")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Rows estimated at once (defaults to config)")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", domain.ErrorKind(err), err)
		os.Exit(1)
	}
}

func newPresenter() (presenter.ResultPresenter, error) {
	presenters := []presenter.ResultPresenter{}
	switch strings.ToLower(format) {
	case "text":
		presenters = append(presenters, presenter.TextPresenter{Out: os.Stdout})
	case "json":
		presenters = append(presenters, presenter.JsonPresenter{Out: os.Stdout})
	default:
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
	}
	if residualsDir != "" {
		presenters = append(presenters, presenter.ResidualCsvPresenter{Dir: residualsDir})
	}
	return presenter.Multi(presenters...), nil
}

// setup loads config, builds the handler and applies flag overrides
func setup(c *cobra.Command) (context.Context, *util.Config, app.CapmHandler, func(), error) {
	cfg, err := cmd.LoadConfig(configPath)
	if err != nil {
		return nil, nil, app.CapmHandler{}, nil, err
	}
	apiHandler, err := cmd.InitializeDependencies(cfg)
	if err != nil {
		return nil, nil, app.CapmHandler{}, nil, err
	}
	p, err := newPresenter()
	if err != nil {
		return nil, nil, app.CapmHandler{}, nil, err
	}

	handler := apiHandler.CapmHandler
	handler.Presenter = p
	if benchmark == "" {
		benchmark = cfg.Benchmark
	}

	log := apiHandler.Logger
	ctx := logger.NewContext(c.Context(), log)
	profile, endProfile := domain.NewProfile()
	ctx = domain.NewCtxWithProfile(ctx, profile)

	done := func() {
		endProfile()
		if showProfile {
			spans, err := profile.ToJsonBytes()
			if err == nil {
				log.Infow("profile", "totalMs", *profile.TotalMs, "spans", string(spans))
			}
		}
		_ = log.Sync()
	}
	return ctx, cfg, handler, done, nil
}

func overrides(c *cobra.Command) (rf *float64, erm *float64) {
	if c.Flags().Changed("risk-free-rate") {
		rf = &riskFreeRate
	}
	if c.Flags().Changed("market-return") {
		erm = &marketReturn
	}
	return rf, erm
}

func runEstimate(c *cobra.Command, args []string) error {
	start, err := util.ParseDate(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	end, err := util.ParseDate(args[2])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	ctx, _, handler, done, err := setup(c)
	if err != nil {
		return err
	}
	defer done()

	rf, erm := overrides(c)
	_, err = handler.Estimate(ctx, app.EstimateInput{
		Symbol:               strings.ToUpper(args[0]),
		Benchmark:            benchmark,
		Start:                start,
		End:                  end,
		RiskFreeRate:         rf,
		ExpectedMarketReturn: erm,
	})
	return err
}

func runBatch(c *cobra.Command, args []string) error {
	rows, err := app.LoadBatchFile(args[0])
	if err != nil {
		return err
	}

	ctx, cfg, handler, done, err := setup(c)
	if err != nil {
		return err
	}
	defer done()

	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}
	rf, erm := overrides(c)

	results, err := handler.EstimateBatch(ctx, app.BatchInput{
		Rows:                 rows,
		Benchmark:            benchmark,
		Concurrency:          concurrency,
		RiskFreeRate:         rf,
		ExpectedMarketReturn: erm,
	})
	if err != nil {
		return err
	}

	failed := app.Failed(results)
	if failed == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "firm\tticker\tkind\terror\n")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", r.Row.Firm, r.Row.Ticker, domain.ErrorKind(r.Err), r.Err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed == len(results) {
		return fmt.Errorf("all %d rows failed", failed)
	}
	return nil
}

func runServe(c *cobra.Command, args []string) error {
	cfg, err := cmd.LoadConfig(configPath)
	if err != nil {
		return err
	}
	apiHandler, err := cmd.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	if benchmark != "" {
		apiHandler.DefaultBenchmark = benchmark
	}
	if port <= 0 {
		port = cfg.Api.Port
	}
	apiHandler.Logger.Infow("starting api", "port", port)
	return apiHandler.StartApi(port)
}
