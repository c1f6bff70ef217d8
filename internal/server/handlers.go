package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-pricer/internal/daycount"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// ContractRequest describes the option. Either Maturity (years) or both
// MaturityDate and ReferenceDate must be given.
type ContractRequest struct {
	Type          string   `json:"type" binding:"required"`
	Strike        float64  `json:"strike"`
	Maturity      *float64 `json:"maturity,omitempty"`
	MaturityDate  string   `json:"maturity_date,omitempty"`
	ReferenceDate string   `json:"reference_date,omitempty"`
	DayCounter    string   `json:"day_counter,omitempty"`
}

// PriceRequest is the body of POST /api/v1/price.
type PriceRequest struct {
	ContractRequest
	Spot          float64 `json:"spot"`
	Rate          float64 `json:"rate"`
	DividendYield float64 `json:"dividend_yield"`
	Volatility    float64 `json:"volatility"`
	Greeks        bool    `json:"greeks"`
}

// ImpliedVolRequest is the body of POST /api/v1/implied-vol.
type ImpliedVolRequest struct {
	ContractRequest
	Spot          float64 `json:"spot"`
	Rate          float64 `json:"rate"`
	DividendYield float64 `json:"dividend_yield"`
	Price         float64 `json:"price"`
}

// PriceResponse echoes the resolved inputs with the valuation.
type PriceResponse struct {
	Spec   pricing.OptionSpec `json:"spec"`
	Market pricing.MarketData `json:"market"`
	Result *pricing.Result    `json:"result"`
}

// ImpliedVolResponse carries the volatility that reprices the request's target.
type ImpliedVolResponse struct {
	Spec       pricing.OptionSpec `json:"spec"`
	Volatility float64            `json:"volatility"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r ContractRequest) spec() (pricing.OptionSpec, error) {
	typ, err := pricing.ParseOptionType(r.Type)
	if err != nil {
		return pricing.OptionSpec{}, err
	}
	if r.Maturity != nil {
		return pricing.OptionSpec{Type: typ, Strike: r.Strike, Maturity: *r.Maturity}, nil
	}

	if r.MaturityDate == "" || r.ReferenceDate == "" {
		return pricing.OptionSpec{}, fmt.Errorf("%w: maturity or maturity_date with reference_date is required", pricing.ErrInvalidInput)
	}
	maturity, err := daycount.ParseDate(r.MaturityDate)
	if err != nil {
		return pricing.OptionSpec{}, fmt.Errorf("%w: maturity_date: %v", pricing.ErrInvalidInput, err)
	}
	reference, err := daycount.ParseDate(r.ReferenceDate)
	if err != nil {
		return pricing.OptionSpec{}, fmt.Errorf("%w: reference_date: %v", pricing.ErrInvalidInput, err)
	}
	dc, err := daycount.Parse(r.DayCounter)
	if err != nil {
		return pricing.OptionSpec{}, fmt.Errorf("%w: %v", pricing.ErrInvalidInput, err)
	}
	return pricing.NewOptionSpec(typ, r.Strike, maturity, reference, dc), nil
}

func (s *Server) handlePrice(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	res, spec, market, err := priceRequest(req)
	s.metrics.Observe(metrics.KindPrice, start, err)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, PriceResponse{Spec: spec, Market: market, Result: res})
}

func priceRequest(req PriceRequest) (*pricing.Result, pricing.OptionSpec, pricing.MarketData, error) {
	spec, err := req.spec()
	if err != nil {
		return nil, spec, pricing.MarketData{}, err
	}
	market := pricing.MarketData{
		Spot:          req.Spot,
		Rate:          req.Rate,
		DividendYield: req.DividendYield,
		Volatility:    req.Volatility,
	}
	res, err := pricing.AnalyticEuropean{Greeks: req.Greeks}.Price(spec, market)
	return res, spec, market, err
}

func (s *Server) handleImpliedVol(c *gin.Context) {
	var req ImpliedVolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	spec, err := req.spec()
	var vol float64
	if err == nil {
		market := pricing.MarketData{Spot: req.Spot, Rate: req.Rate, DividendYield: req.DividendYield}
		vol, err = pricing.ImpliedVolatility(spec, market, req.Price)
	}
	s.metrics.Observe(metrics.KindImpliedVol, start, err)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ImpliedVolResponse{Spec: spec, Volatility: vol})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, pricing.ErrNoConvergence):
		status = http.StatusUnprocessableEntity
	default:
		logger.Errorf("pricing failed: %v", err)
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}
