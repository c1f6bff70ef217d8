// Package config loads the pricing run configuration.
//
// Sources, from lowest to highest precedence:
//
//	built-in defaults (the 1998 equity option example)
//	config file (yaml, json or toml, chosen by extension)
//	OPTION_PRICER_* environment variables ("." in keys becomes "_")
//	command-line flags registered with RegisterFlags
//
// Numeric preconditions (positive strike, non-negative volatility, ...) are
// left to the pricer so that they surface as pricing.ErrInvalidInput.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/contactkeval/option-pricer/internal/daycount"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// DateLayout is the layout of every date in the configuration.
const DateLayout = daycount.DateLayout

// EnvPrefix prefixes environment overrides, e.g. OPTION_PRICER_MARKET_SPOT.
const EnvPrefix = "OPTION_PRICER"

// Config is the fully resolved configuration of one run.
type Config struct {
	Option     OptionConfig     `mapstructure:"option"`
	Market     MarketConfig     `mapstructure:"market"`
	Dates      DatesConfig      `mapstructure:"dates"`
	Greeks     bool             `mapstructure:"greeks"`
	Scenario   ScenarioConfig   `mapstructure:"scenario"`
	Report     ReportConfig     `mapstructure:"report"`
	Server     ServerConfig     `mapstructure:"server"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Logger     logger.Config    `mapstructure:"logger"`
	Verbosity  int              `mapstructure:"verbosity" validate:"gte=0,lte=3"` // 0=errors,1=info,2=debug,3=trace
}

// OptionConfig describes the contract.
type OptionConfig struct {
	Type   string  `mapstructure:"type" validate:"required,oneof=call put c p Call Put CALL PUT"`
	Strike float64 `mapstructure:"strike"`
}

// MarketConfig holds the flat market inputs.
type MarketConfig struct {
	Ticker        string  `mapstructure:"ticker"` // when set, spot is looked up
	Spot          float64 `mapstructure:"spot"`
	Rate          float64 `mapstructure:"rate"`
	DividendYield float64 `mapstructure:"dividend_yield"`
	Volatility    float64 `mapstructure:"volatility"`
}

// DatesConfig holds the valuation calendar. When Settlement is empty it is
// Evaluation plus SettlementDays calendar days.
type DatesConfig struct {
	Evaluation     string `mapstructure:"evaluation" validate:"required,datetime=2006-01-02"`
	Settlement     string `mapstructure:"settlement" validate:"omitempty,datetime=2006-01-02"`
	SettlementDays int    `mapstructure:"settlement_days" validate:"gte=0"`
	Maturity       string `mapstructure:"maturity" validate:"required,datetime=2006-01-02"`
	DayCounter     string `mapstructure:"day_counter" validate:"required"`
}

// ScenarioConfig is the optional spot x volatility grid.
type ScenarioConfig struct {
	Spots       []float64 `mapstructure:"spots" validate:"dive,gt=0"`
	Vols        []float64 `mapstructure:"vols" validate:"dive,gte=0"`
	Concurrency int       `mapstructure:"concurrency" validate:"gte=0"`
}

// Enabled reports whether a scenario grid was requested.
func (s ScenarioConfig) Enabled() bool {
	return len(s.Spots) > 0 || len(s.Vols) > 0
}

// ReportConfig controls the report files.
type ReportConfig struct {
	Dir string `mapstructure:"dir"` // empty: console only
}

// ServerConfig controls REST mode.
type ServerConfig struct {
	Rest   bool   `mapstructure:"rest"`
	Listen string `mapstructure:"listen" validate:"required"`
}

// MarketDataConfig configures the spot lookup used when a ticker is set.
type MarketDataConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	SpotsFile string        `mapstructure:"spots_file" validate:"omitempty,file"` // CSV of TICKER,price
}

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"type":            "option.type",
	"strike":          "option.strike",
	"ticker":          "market.ticker",
	"spot":            "market.spot",
	"rate":            "market.rate",
	"dividend-yield":  "market.dividend_yield",
	"volatility":      "market.volatility",
	"evaluation":      "dates.evaluation",
	"settlement":      "dates.settlement",
	"settlement-days": "dates.settlement_days",
	"maturity":        "dates.maturity",
	"day-counter":     "dates.day_counter",
	"greeks":          "greeks",
	"grid-spots":      "scenario.spots",
	"grid-vols":       "scenario.vols",
	"report-dir":      "report.dir",
	"rest":            "server.rest",
	"listen":          "server.listen",
	"spots-file":      "market_data.spots_file",
	"verbosity":       "verbosity",
	"log-format":      "logger.format",
	"log-file":        "logger.file",
}

// RegisterFlags adds the command-line overrides to fs.
// Flags left unset do not shadow file or environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("type", "put", "option type: call or put")
	fs.Float64("strike", 40, "strike price")
	fs.String("ticker", "", "underlying ticker; spot is fetched from market data when set")
	fs.Float64("spot", 36, "underlying spot price")
	fs.Float64("rate", 0.06, "continuously-compounded risk-free rate")
	fs.Float64("dividend-yield", 0, "continuously-compounded dividend yield")
	fs.Float64("volatility", 0.20, "annualised volatility")
	fs.String("evaluation", "1998-05-15", "evaluation date (YYYY-MM-DD)")
	fs.String("settlement", "", "settlement date; curve reference date (YYYY-MM-DD), default evaluation + settlement-days")
	fs.Int("settlement-days", 2, "calendar days from evaluation to settlement when settlement is not given")
	fs.String("maturity", "1999-05-17", "maturity date (YYYY-MM-DD)")
	fs.String("day-counter", "Actual/365 (Fixed)", "day count convention")
	fs.Bool("greeks", false, "also compute risk sensitivities")
	fs.Float64Slice("grid-spots", nil, "scenario grid spots, comma separated")
	fs.Float64Slice("grid-vols", nil, "scenario grid volatilities, comma separated")
	fs.String("report-dir", "", "directory for result.json / scenario.csv")
	fs.String("spots-file", "", "CSV of TICKER,price consulted before the configured spot")
	fs.Bool("rest", false, "run as REST server")
	fs.String("listen", ":8080", "REST server listen address")
	fs.Int("verbosity", 1, "0=errors,1=info,2=debug,3=trace")
	fs.String("log-format", "console", "log encoding: console or json")
	fs.String("log-file", "", "optional rotating log file")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("option.type", "put")
	v.SetDefault("option.strike", 40.0)

	v.SetDefault("market.ticker", "")
	v.SetDefault("market.spot", 36.0)
	v.SetDefault("market.rate", 0.06)
	v.SetDefault("market.dividend_yield", 0.0)
	v.SetDefault("market.volatility", 0.20)

	v.SetDefault("dates.evaluation", "1998-05-15")
	v.SetDefault("dates.settlement", "")
	v.SetDefault("dates.settlement_days", 2)
	v.SetDefault("dates.maturity", "1999-05-17")
	v.SetDefault("dates.day_counter", "Actual/365 (Fixed)")

	v.SetDefault("greeks", false)

	v.SetDefault("scenario.spots", []float64{})
	v.SetDefault("scenario.vols", []float64{})
	v.SetDefault("scenario.concurrency", 0)

	v.SetDefault("report.dir", "")

	v.SetDefault("server.rest", false)
	v.SetDefault("server.listen", ":8080")

	v.SetDefault("market_data.api_key", "")
	v.SetDefault("market_data.timeout", 30*time.Second)
	v.SetDefault("market_data.spots_file", "")

	v.SetDefault("logger.level", "")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("verbosity", 1)
}

// Load builds the configuration. path and flags are both optional.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the Massive key is conventionally exported without our prefix
	if err := v.BindEnv("market_data.api_key", EnvPrefix+"_MARKET_DATA_API_KEY", "MASSIVE_API_KEY", "POLYGON_API_KEY"); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Dates.Settlement == "" {
		if eval, err := cfg.EvaluationDate(); err == nil {
			cfg.Dates.Settlement = eval.AddDate(0, 0, cfg.Dates.SettlementDays).Format(DateLayout)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks structural constraints and date ordering.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := daycount.Parse(c.Dates.DayCounter); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	eval, _ := c.EvaluationDate()
	settle, _ := c.SettlementDate()
	if settle.Before(eval) {
		return fmt.Errorf("invalid config: settlement %s before evaluation %s", c.Dates.Settlement, c.Dates.Evaluation)
	}
	return nil
}

// Date accessors parse the validated YYYY-MM-DD strings as UTC midnight.
func (c *Config) EvaluationDate() (time.Time, error) { return daycount.ParseDate(c.Dates.Evaluation) }
func (c *Config) SettlementDate() (time.Time, error) { return daycount.ParseDate(c.Dates.Settlement) }
func (c *Config) MaturityDate() (time.Time, error)   { return daycount.ParseDate(c.Dates.Maturity) }

// DayCounter returns the parsed day count convention.
func (c *Config) DayCounter() daycount.Convention {
	dc, _ := daycount.Parse(c.Dates.DayCounter)
	return dc
}

// OptionSpec measures time-to-maturity from the settlement date, the
// reference date of the flat curves.
func (c *Config) OptionSpec() (pricing.OptionSpec, error) {
	typ, err := pricing.ParseOptionType(c.Option.Type)
	if err != nil {
		return pricing.OptionSpec{}, err
	}
	settle, err := c.SettlementDate()
	if err != nil {
		return pricing.OptionSpec{}, err
	}
	maturity, err := c.MaturityDate()
	if err != nil {
		return pricing.OptionSpec{}, err
	}
	return pricing.NewOptionSpec(typ, c.Option.Strike, maturity, settle, c.DayCounter()), nil
}

// MarketInputs returns the flat market inputs with the given spot.
func (c *Config) MarketInputs(spot float64) pricing.MarketData {
	return pricing.MarketData{
		Spot:          spot,
		Rate:          c.Market.Rate,
		DividendYield: c.Market.DividendYield,
		Volatility:    c.Market.Volatility,
	}
}
