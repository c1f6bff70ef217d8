package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedVolatility_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		spec   OptionSpec
		market MarketData
	}{
		{"atm call", OptionSpec{Type: Call, Strike: 100, Maturity: 30.0 / 365.0}, MarketData{Spot: 100, Rate: 0.05, Volatility: 0.2}},
		{"otm put", OptionSpec{Type: Put, Strike: 40, Maturity: 1}, MarketData{Spot: 36, Rate: 0.06, Volatility: 0.35}},
		{"itm call with dividends", OptionSpec{Type: Call, Strike: 80, Maturity: 2}, MarketData{Spot: 100, Rate: 0.03, DividendYield: 0.02, Volatility: 0.6}},
		{"low vol", OptionSpec{Type: Put, Strike: 105, Maturity: 0.5}, MarketData{Spot: 100, Rate: 0.01, Volatility: 0.03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Price(tt.spec, tt.market)
			require.NoError(t, err)

			iv, err := ImpliedVolatility(tt.spec, tt.market, res.NPV)
			require.NoError(t, err)
			assert.InDelta(t, tt.market.Volatility, iv, 1e-6)
		})
	}
}

func TestImpliedVolatility_OutOfBounds(t *testing.T) {
	spec := OptionSpec{Type: Call, Strike: 100, Maturity: 1}
	market := MarketData{Spot: 100, Rate: 0.05}

	_, err := ImpliedVolatility(spec, market, 150)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ImpliedVolatility(spec, market, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImpliedVolatility_RequiresTimeValue(t *testing.T) {
	_, err := ImpliedVolatility(OptionSpec{Type: Put, Strike: 40}, MarketData{Spot: 36}, 4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImpliedVolatility_AboveVolatilityCap(t *testing.T) {
	spec := OptionSpec{Type: Call, Strike: 100, Maturity: 1}
	market := MarketData{Spot: 100, Rate: 0.05, Volatility: 8}

	res, err := Price(spec, market)
	require.NoError(t, err)

	lower, upper := priceBounds(spec, market)
	require.Greater(t, res.NPV, lower)
	require.Less(t, res.NPV, upper)

	iv, err := ImpliedVolatility(spec, market, res.NPV)
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, iv)
}

func TestImpliedVolatility_AtVolatilityCap(t *testing.T) {
	spec := OptionSpec{Type: Put, Strike: 100, Maturity: 0.5}
	market := MarketData{Spot: 100, Rate: 0.02, Volatility: 4.9}

	res, err := Price(spec, market)
	require.NoError(t, err)

	iv, err := ImpliedVolatility(spec, market, res.NPV)
	require.NoError(t, err)
	assert.InDelta(t, 4.9, iv, 1e-6)
}

func TestImpliedVolatility_AtLowerBound(t *testing.T) {
	spec := OptionSpec{Type: Call, Strike: 80, Maturity: 1}
	market := MarketData{Spot: 100, Rate: 0.05}

	lower, _ := priceBounds(spec, market)
	iv, err := ImpliedVolatility(spec, market, lower)
	require.NoError(t, err)
	assert.Less(t, iv, 0.1)

	market.Volatility = iv
	res, err := Price(spec, market)
	require.NoError(t, err)
	assert.InDelta(t, lower, res.NPV, 1e-9)
}
