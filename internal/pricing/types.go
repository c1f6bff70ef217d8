package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/contactkeval/option-pricer/internal/daycount"
)

// OptionType is the payoff direction of a vanilla option.
type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	if t == Put {
		return "Put"
	}
	return "Call"
}

// MarshalText lets OptionType travel through JSON and CSV as "call"/"put".
func (t OptionType) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(t.String())), nil
}

// UnmarshalText accepts anything ParseOptionType does.
func (t *OptionType) UnmarshalText(b []byte) error {
	v, err := ParseOptionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseOptionType accepts "call", "put", "c" or "p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, s)
}

// OptionSpec describes the contract being priced.
type OptionSpec struct {
	Type     OptionType `json:"type"`
	Strike   float64    `json:"strike"`
	Maturity float64    `json:"maturity"` // time to maturity in years
}

// NewOptionSpec derives time-to-maturity from calendar dates.
//
// The reference date is passed explicitly instead of being read from any
// process-wide evaluation date, so two requests with different valuation
// dates can be priced side by side.
func NewOptionSpec(typ OptionType, strike float64, maturity, reference time.Time, dc daycount.Convention) OptionSpec {
	return OptionSpec{
		Type:     typ,
		Strike:   strike,
		Maturity: dc.YearFraction(reference, maturity),
	}
}

// MarketData holds flat, continuously-compounded market parameters.
type MarketData struct {
	Spot          float64 `json:"spot"`
	Rate          float64 `json:"rate"`
	DividendYield float64 `json:"dividend_yield"`
	Volatility    float64 `json:"volatility"`
}

// Greeks are first and second order sensitivities of the NPV.
//
// Theta is per year. Vega, Rho and DividendRho are per unit change
// (1.0 = 100 percentage points) of the respective input.
type Greeks struct {
	Delta       float64 `json:"delta"`
	Gamma       float64 `json:"gamma"`
	Vega        float64 `json:"vega"`
	Theta       float64 `json:"theta"`
	Rho         float64 `json:"rho"`
	DividendRho float64 `json:"dividend_rho"`
}

// ThetaPerDay scales the annual theta to one calendar day.
func (g Greeks) ThetaPerDay() float64 {
	return g.Theta / 365.0
}

// Result is the output of a single pricing call.
type Result struct {
	NPV    float64 `json:"npv"`
	D1     float64 `json:"d1,omitempty"`
	D2     float64 `json:"d2,omitempty"`
	Greeks *Greeks `json:"greeks,omitempty"`
}
