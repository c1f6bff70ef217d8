package pricing

import (
	"fmt"
	"math"
)

const (
	ivInitialGuess = 0.20
	ivMaxVol       = 5.0
	ivMaxIter      = 100
	ivTolerance    = 1e-10
)

// ImpliedVolatility solves for the volatility at which the Black-Scholes-Merton
// price of spec equals target. market.Volatility is ignored.
//
// Newton-Raphson on vega is used while it stays inside the current bracket;
// otherwise the step falls back to bisection, so the search cannot diverge.
// The target must lie within the no-arbitrage bounds of the option; a target
// that needs a volatility above 500% or that the search cannot hit within
// tolerance fails with ErrNoConvergence.
func ImpliedVolatility(spec OptionSpec, market MarketData, target float64) (float64, error) {
	market.Volatility = 0
	if err := validate(spec, market); err != nil {
		return 0, err
	}
	if spec.Maturity == 0 {
		return 0, &InputError{Field: "maturity", Value: 0, Reason: "must be positive to imply volatility"}
	}

	lower, upper := priceBounds(spec, market)
	if math.IsNaN(target) || target < lower-ivTolerance || target >= upper {
		return 0, fmt.Errorf("%w: target price %g outside no-arbitrage bounds [%g, %g)",
			ErrInvalidInput, target, lower, upper)
	}

	market.Volatility = ivMaxVol
	capped, err := Price(spec, market)
	if err != nil {
		return 0, err
	}
	if target-capped.NPV > ivTolerance {
		return 0, fmt.Errorf("implied volatility: %w: target price %g needs volatility above %g",
			ErrNoConvergence, target, ivMaxVol)
	}

	lo, hi := 0.0, ivMaxVol
	sigma := ivInitialGuess

	for i := 0; i < ivMaxIter; i++ {
		market.Volatility = sigma
		res, err := PriceWithGreeks(spec, market)
		if err != nil {
			return 0, err
		}

		diff := res.NPV - target
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}

		// price is increasing in sigma
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}

		next := math.NaN()
		if vega := res.Greeks.Vega; vega > 1e-12 {
			next = sigma - diff/vega
		}
		if math.IsNaN(next) || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		if hi-lo < 1e-14 {
			break
		}
		sigma = next
	}

	return 0, fmt.Errorf("implied volatility: %w within tolerance %g", ErrNoConvergence, ivTolerance)
}

// priceBounds returns the sigma -> 0 and sigma -> infinity limits of the option value.
func priceBounds(spec OptionSpec, market MarketData) (lower, upper float64) {
	T := spec.Maturity
	fwdLeg := market.Spot * math.Exp(-market.DividendYield*T)
	strikeLeg := spec.Strike * math.Exp(-market.Rate*T)

	if spec.Type == Call {
		return math.Max(fwdLeg-strikeLeg, 0), fwdLeg
	}
	return math.Max(strikeLeg-fwdLeg, 0), strikeLeg
}
