package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// prevCloseClient is the slice of the Massive REST client we depend on.
type prevCloseClient interface {
	GetPreviousCloseAgg(ctx context.Context, params *models.GetPreviousCloseAggParams, options ...models.RequestOption) (*models.GetPreviousCloseAggResponse, error)
}

// massiveSource quotes the previous session's close from Massive.
type massiveSource struct {
	client    prevCloseClient
	timeout   time.Duration
	secondary SpotSource
}

// NewMassiveSource constructs a Massive-backed spot source.
//
// Parameters:
//   - apiKey: Massive API key for authentication
//   - timeout: per-request deadline, 0 for none
//   - secondary: optional fallback consulted by Resolve on failure
func NewMassiveSource(apiKey string, timeout time.Duration, secondary SpotSource) SpotSource {
	logger.Infof("initializing Massive market data source")
	return &massiveSource{
		client:    massive.New(apiKey),
		timeout:   timeout,
		secondary: secondary,
	}
}

func (m *massiveSource) Name() string          { return "massive" }
func (m *massiveSource) Secondary() SpotSource { return m.secondary }

func (m *massiveSource) Spot(ctx context.Context, ticker string) (float64, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return 0, fmt.Errorf("%w: empty ticker", ErrNoQuote)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	logger.Debugf("previous close request: %s", ticker)

	resp, err := m.client.GetPreviousCloseAgg(ctx, &models.GetPreviousCloseAggParams{Ticker: ticker})
	if err != nil {
		return 0, fmt.Errorf("previous close for %s: %w", ticker, err)
	}
	if resp == nil || len(resp.Results) == 0 {
		return 0, fmt.Errorf("%w: empty previous close for %s", ErrNoQuote, ticker)
	}

	spot := resp.Results[len(resp.Results)-1].Close
	if spot <= 0 {
		return 0, fmt.Errorf("%w: non-positive close %g for %s", ErrNoQuote, spot, ticker)
	}

	logger.Tracef("previous close resolved %s=%.4f", ticker, spot)
	return spot, nil
}
