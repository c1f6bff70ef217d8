// Package marketdata resolves the underlying spot price for a pricing run.
//
// Sources form a fallback chain: when a source cannot answer, the request
// is delegated to its Secondary, if any.
package marketdata

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoQuote is returned when no source in the chain has a usable price.
var ErrNoQuote = errors.New("no quote available")

// SpotSource supplies the latest spot price for a ticker.
type SpotSource interface {
	Name() string
	Spot(ctx context.Context, ticker string) (float64, error)
	Secondary() SpotSource
}

// staticSource answers every ticker with a configured price.
type staticSource struct {
	spot float64
}

// NewStaticSource returns a source that always quotes spot.
func NewStaticSource(spot float64) SpotSource { return &staticSource{spot: spot} }

func (s *staticSource) Name() string          { return "static" }
func (s *staticSource) Secondary() SpotSource { return nil }

func (s *staticSource) Spot(_ context.Context, ticker string) (float64, error) {
	if s.spot <= 0 {
		return 0, fmt.Errorf("%w: static spot for %s is not set", ErrNoQuote, ticker)
	}
	return s.spot, nil
}

// Resolve walks the chain starting at src and returns the first quote along
// with the name of the source that produced it.
func Resolve(ctx context.Context, src SpotSource, ticker string) (float64, string, error) {
	var errs []error
	for s := src; s != nil; s = s.Secondary() {
		spot, err := s.Spot(ctx, ticker)
		if err == nil {
			return spot, s.Name(), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return 0, "", fmt.Errorf("%w for %s: no sources configured", ErrNoQuote, ticker)
	}
	return 0, "", errors.Join(errs...)
}
