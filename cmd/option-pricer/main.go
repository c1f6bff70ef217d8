package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/marketdata"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/scenario"
	"github.com/contactkeval/option-pricer/internal/server"
)

const metricsNamespace = "option_pricer"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	logger.Sync()
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("option-pricer", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML/JSON/TOML config")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logger); err != nil {
		return err
	}
	if cfg.Logger.Level == "" {
		logger.SetVerbosity(cfg.Verbosity)
	}

	m := metrics.New(metricsNamespace)

	if cfg.Server.Rest {
		return server.New(m).Run(ctx, cfg.Server.Listen)
	}

	start := time.Now()
	if err := price(ctx, cfg, m, stdout, stderr); err != nil {
		return err
	}
	logger.Infof("finished in %s", report.FormatElapsed(time.Since(start)))
	return nil
}

// price runs a single valuation and, when configured, the scenario grid.
// Nothing is printed unless the base valuation succeeds.
func price(ctx context.Context, cfg *config.Config, m *metrics.Metrics, stdout, stderr io.Writer) error {
	spec, err := cfg.OptionSpec()
	if err != nil {
		return err
	}

	spot, sourceName := cfg.Market.Spot, ""
	if cfg.Market.Ticker != "" {
		src := spotSource(cfg)
		spot, sourceName, err = marketdata.Resolve(ctx, src, cfg.Market.Ticker)
		if err != nil {
			return fmt.Errorf("resolving spot for %s: %w", cfg.Market.Ticker, err)
		}
		logger.Infof("spot %s=%g from %s", cfg.Market.Ticker, spot, sourceName)
	}
	market := cfg.MarketInputs(spot)

	eng := pricing.AnalyticEuropean{Greeks: cfg.Greeks}
	t0 := time.Now()
	res, err := eng.Price(spec, market)
	m.Observe(metrics.KindPrice, t0, err)
	if err != nil {
		return err
	}
	logger.Debugf("d1=%g d2=%g maturity=%g", res.D1, res.D2, spec.Maturity)

	var points []scenario.Point
	if cfg.Scenario.Enabled() {
		grid := scenario.Grid{Spots: cfg.Scenario.Spots, Vols: cfg.Scenario.Vols}
		logger.Infof("running scenario grid of %d nodes", grid.Size())

		opts := scenario.Options{Concurrency: cfg.Scenario.Concurrency}
		if logger.Enabled(zapcore.InfoLevel) {
			opts.Progress = stderr
		}
		t0 = time.Now()
		points, err = scenario.Run(ctx, eng, spec, market, grid, opts)
		m.Observe(metrics.KindScenario, t0, err)
		if err != nil {
			return err
		}
	}

	eval, _ := cfg.EvaluationDate()
	maturity, _ := cfg.MaturityDate()
	var symbol string
	if cfg.Market.Ticker != "" {
		symbol = marketdata.OptionSymbol(cfg.Market.Ticker, maturity, spec.Type, spec.Strike)
	}
	report.PrintInputs(stdout, report.Inputs{
		Type:          spec.Type,
		Maturity:      maturity,
		Underlying:    spot,
		Strike:        spec.Strike,
		Rate:          market.Rate,
		DividendYield: market.DividendYield,
		Volatility:    market.Volatility,
		DayCounter:    cfg.DayCounter().String(),
		Evaluation:    eval,
		Ticker:        cfg.Market.Ticker,
		SpotSource:    sourceName,
		Symbol:        symbol,
	})
	report.PrintResult(stdout, res)

	var rows []report.ScenarioRow
	if points != nil {
		rows = report.ScenarioRows(points)
		fmt.Fprintln(stdout)
		report.PrintScenario(stdout, rows)
	}

	if cfg.Report.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
		return fmt.Errorf("creating report dir %s: %w", cfg.Report.Dir, err)
	}
	if err := report.WriteJSON(res, cfg.Report.Dir, report.ResultFile); err != nil {
		return err
	}
	if rows != nil {
		if err := report.WriteCSV(rows, cfg.Report.Dir); err != nil {
			return err
		}
	}
	logger.Infof("wrote reports to %s", cfg.Report.Dir)
	return nil
}

// spotSource builds the chain Massive -> spots file -> configured spot,
// skipping the links that are not configured.
func spotSource(cfg *config.Config) marketdata.SpotSource {
	src := marketdata.NewStaticSource(cfg.Market.Spot)
	if cfg.MarketData.SpotsFile != "" {
		src = marketdata.NewLocalFileSource(cfg.MarketData.SpotsFile, src)
	}
	if cfg.MarketData.APIKey == "" {
		logger.Warnf("no market data API key; Massive lookup disabled for %s", cfg.Market.Ticker)
		return src
	}
	return marketdata.NewMassiveSource(cfg.MarketData.APIKey, cfg.MarketData.Timeout, src)
}
