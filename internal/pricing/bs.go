package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Engine prices a European vanilla option from flat market data.
type Engine interface {
	Price(spec OptionSpec, market MarketData) (*Result, error)
}

// AnalyticEuropean is the closed-form Black-Scholes-Merton engine.
// Greeks are computed only when requested.
type AnalyticEuropean struct {
	Greeks bool
}

// Price implements Engine.
func (e AnalyticEuropean) Price(spec OptionSpec, market MarketData) (*Result, error) {
	if e.Greeks {
		return PriceWithGreeks(spec, market)
	}
	return Price(spec, market)
}

// Price calculates the NPV of a European option under Black-Scholes-Merton
// with constant rate, dividend yield and volatility.
//
// Parameters:
//   - spec: option type, strike and time to maturity in years
//   - market: spot, risk-free rate, dividend yield, volatility
//
// Returns:
//
//	The option NPV. At maturity (T == 0) this is the intrinsic value at spot;
//	with zero volatility it is the discounted intrinsic value of the forward.
//	An error wrapping ErrInvalidInput is returned when a precondition fails.
func Price(spec OptionSpec, market MarketData) (*Result, error) {
	return price(spec, market, false)
}

// PriceWithGreeks is Price plus analytic sensitivities.
func PriceWithGreeks(spec OptionSpec, market MarketData) (*Result, error) {
	return price(spec, market, true)
}

func price(spec OptionSpec, market MarketData, withGreeks bool) (*Result, error) {
	if err := validate(spec, market); err != nil {
		return nil, err
	}

	var (
		S     = market.Spot
		K     = spec.Strike
		T     = spec.Maturity
		r     = market.Rate
		q     = market.DividendYield
		sigma = market.Volatility
	)

	if T == 0 {
		res := &Result{NPV: intrinsic(spec.Type, S, K)}
		if withGreeks {
			res.Greeks = expiryGreeks(spec.Type, S, K)
		}
		return res, nil
	}

	dq := math.Exp(-q * T)
	dr := math.Exp(-r * T)

	if sigma == 0 {
		return deterministic(spec.Type, S, K, T, r, q, dq, dr, withGreeks), nil
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	var npv float64
	if spec.Type == Call {
		npv = S*dq*normCDF(d1) - K*dr*normCDF(d2)
	} else {
		npv = K*dr*normCDF(-d2) - S*dq*normCDF(-d1)
	}

	res := &Result{
		NPV: math.Max(npv, 0), // clip rounding noise on deep out-of-the-money options
		D1:  d1,
		D2:  d2,
	}
	if withGreeks {
		res.Greeks = analyticGreeks(spec.Type, S, K, T, r, q, sigma, d1, d2, dq, dr)
	}
	return res, nil
}

func analyticGreeks(typ OptionType, S, K, T, r, q, sigma, d1, d2, dq, dr float64) *Greeks {
	sqrtT := math.Sqrt(T)
	pdf := normPDF(d1)

	g := &Greeks{
		Gamma: dq * pdf / (S * sigma * sqrtT),
		Vega:  S * dq * pdf * sqrtT,
	}
	decay := -S * dq * pdf * sigma / (2 * sqrtT)

	if typ == Call {
		g.Delta = dq * normCDF(d1)
		g.Theta = decay - r*K*dr*normCDF(d2) + q*S*dq*normCDF(d1)
		g.Rho = K * T * dr * normCDF(d2)
		g.DividendRho = -S * T * dq * normCDF(d1)
	} else {
		g.Delta = -dq * normCDF(-d1)
		g.Theta = decay + r*K*dr*normCDF(-d2) - q*S*dq*normCDF(-d1)
		g.Rho = -K * T * dr * normCDF(-d2)
		g.DividendRho = S * T * dq * normCDF(-d1)
	}
	return g
}

// deterministic handles sigma == 0, where the terminal spot equals the forward.
func deterministic(typ OptionType, S, K, T, r, q, dq, dr float64, withGreeks bool) *Result {
	fwdLeg := S * dq
	strikeLeg := K * dr

	res := &Result{}
	var g Greeks

	switch {
	case typ == Call && fwdLeg > strikeLeg:
		res.NPV = fwdLeg - strikeLeg
		g = Greeks{
			Delta:       dq,
			Theta:       q*fwdLeg - r*strikeLeg,
			Rho:         K * T * dr,
			DividendRho: -S * T * dq,
		}
	case typ == Put && strikeLeg > fwdLeg:
		res.NPV = strikeLeg - fwdLeg
		g = Greeks{
			Delta:       -dq,
			Theta:       r*strikeLeg - q*fwdLeg,
			Rho:         -K * T * dr,
			DividendRho: S * T * dq,
		}
	}

	if withGreeks {
		res.Greeks = &g
	}
	return res
}

func intrinsic(typ OptionType, S, K float64) float64 {
	if typ == Call {
		return math.Max(S-K, 0)
	}
	return math.Max(K-S, 0)
}

// expiryGreeks returns the delta of the payoff; every other sensitivity is zero at expiry.
func expiryGreeks(typ OptionType, S, K float64) *Greeks {
	g := &Greeks{}
	switch {
	case typ == Call && S > K:
		g.Delta = 1
	case typ == Put && S < K:
		g.Delta = -1
	}
	return g
}

func validate(spec OptionSpec, market MarketData) error {
	finite := []struct {
		field string
		v     float64
	}{
		{"strike", spec.Strike},
		{"maturity", spec.Maturity},
		{"spot", market.Spot},
		{"rate", market.Rate},
		{"dividend_yield", market.DividendYield},
		{"volatility", market.Volatility},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InputError{Field: f.field, Value: f.v, Reason: "must be finite"}
		}
	}

	switch {
	case spec.Strike <= 0:
		return &InputError{Field: "strike", Value: spec.Strike, Reason: "must be positive"}
	case market.Spot <= 0:
		return &InputError{Field: "spot", Value: market.Spot, Reason: "must be positive"}
	case spec.Maturity < 0:
		return &InputError{Field: "maturity", Value: spec.Maturity, Reason: "must not be negative"}
	case market.Volatility < 0:
		return &InputError{Field: "volatility", Value: market.Volatility, Reason: "must not be negative"}
	}
	return nil
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
