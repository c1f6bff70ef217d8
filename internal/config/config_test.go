package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/daycount"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "put", cfg.Option.Type)
	assert.Equal(t, 40.0, cfg.Option.Strike)
	assert.Equal(t, 36.0, cfg.Market.Spot)
	assert.Equal(t, 0.06, cfg.Market.Rate)
	assert.Equal(t, 0.20, cfg.Market.Volatility)
	assert.Equal(t, daycount.Actual365Fixed, cfg.DayCounter())
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 1, cfg.Verbosity)
	assert.Equal(t, 30*time.Second, cfg.MarketData.Timeout)
	assert.False(t, cfg.Scenario.Enabled())

	spec, err := cfg.OptionSpec()
	require.NoError(t, err)
	assert.Equal(t, pricing.Put, spec.Type)
	assert.InDelta(t, 1.0, spec.Maturity, 1e-15)

	eval, err := cfg.EvaluationDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1998, time.May, 15, 0, 0, 0, 0, time.UTC), eval)
}

func TestLoad_FileEnvAndFlagPrecedence(t *testing.T) {
	path := writeFile(t, "pricer.yaml", `
option:
  type: call
  strike: 100
market:
  spot: 95
  volatility: 0.3
dates:
  evaluation: "2025-01-02"
  settlement: ""
  settlement_days: 0
  maturity: "2025-07-02"
  day_counter: "Actual/360"
scenario:
  spots: [90, 100, 110]
  vols: [0.1, 0.2]
`)

	t.Setenv("OPTION_PRICER_MARKET_RATE", "0.045")
	t.Setenv("OPTION_PRICER_MARKET_SPOT", "97")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--spot=99", "--greeks"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "call", cfg.Option.Type)
	assert.Equal(t, 100.0, cfg.Option.Strike)
	assert.Equal(t, 99.0, cfg.Market.Spot, "flag beats env and file")
	assert.Equal(t, 0.045, cfg.Market.Rate, "env beats default")
	assert.Equal(t, 0.3, cfg.Market.Volatility)
	assert.True(t, cfg.Greeks)
	assert.Equal(t, []float64{90, 100, 110}, cfg.Scenario.Spots)
	assert.Equal(t, []float64{0.1, 0.2}, cfg.Scenario.Vols)
	assert.True(t, cfg.Scenario.Enabled())

	// empty settlement with no lag is the evaluation date
	assert.Equal(t, "2025-01-02", cfg.Dates.Settlement)
	spec, err := cfg.OptionSpec()
	require.NoError(t, err)
	assert.InDelta(t, 181.0/360.0, spec.Maturity, 1e-12)
}

func TestLoad_GridFromFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--grid-spots=30,36,42", "--grid-vols=0.15,0.25"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 36, 42}, cfg.Scenario.Spots)
	assert.Equal(t, []float64{0.15, 0.25}, cfg.Scenario.Vols)
}

func TestLoad_MassiveKeyFromEnv(t *testing.T) {
	t.Setenv("MASSIVE_API_KEY", "secret")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.MarketData.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad option type", "option:\n  type: straddle\n"},
		{"bad date", "dates:\n  maturity: \"17/05/1999\"\n"},
		{"bad day counter", "dates:\n  day_counter: \"ACT/ACT\"\n"},
		{"settlement before evaluation", "dates:\n  evaluation: \"1998-05-15\"\n  settlement: \"1998-05-01\"\n"},
		{"negative grid vol", "scenario:\n  vols: [-0.1]\n"},
		{"verbosity out of range", "verbosity: 7\n"},
		{"negative settlement lag", "dates:\n  settlement_days: -3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.body), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestOptionSpec_InvalidStrikeIsPricerConcern(t *testing.T) {
	path := writeFile(t, "zero.json", `{"option": {"type": "put", "strike": 0}}`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	spec, err := cfg.OptionSpec()
	require.NoError(t, err)

	_, err = pricing.Price(spec, cfg.MarketInputs(cfg.Market.Spot))
	assert.ErrorIs(t, err, pricing.ErrInvalidInput)
}

func TestLoad_ShippedReferenceConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "reference.yaml"), nil)
	require.NoError(t, err)

	assert.True(t, cfg.Greeks)
	assert.Equal(t, []float64{32, 34, 36, 38, 40}, cfg.Scenario.Spots)
	assert.Equal(t, 30*time.Second, cfg.MarketData.Timeout)

	spec, err := cfg.OptionSpec()
	require.NoError(t, err)
	res, err := pricing.Price(spec, cfg.MarketInputs(cfg.Market.Spot))
	require.NoError(t, err)
	assert.InDelta(t, 3.84430779159684, res.NPV, 1e-12)
}

func TestLoad_SpotsFileMustExist(t *testing.T) {
	_, err := Load(writeFile(t, "c.yaml", "market_data:\n  spots_file: /does/not/exist.csv\n"), nil)
	assert.Error(t, err)
}

func TestLoad_EvaluationOnlyOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--evaluation=2025-01-02", "--maturity=2026-01-02"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-04", cfg.Dates.Settlement)

	spec, err := cfg.OptionSpec()
	require.NoError(t, err)
	assert.InDelta(t, 363.0/365.0, spec.Maturity, 1e-12)
}

func TestLoad_SettlementDays(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--evaluation=2025-01-02", "--settlement-days=0"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", cfg.Dates.Settlement)

	// an explicit settlement date wins over the lag
	fs = pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--evaluation=2025-01-02", "--settlement=2025-01-10"}))

	cfg, err = Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", cfg.Dates.Settlement)
}

func TestRegisterFlags_GridRejectsNonNumbers(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs)
	assert.Error(t, fs.Parse([]string{"--grid-spots=36,abc"}))
}
