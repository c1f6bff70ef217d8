// Package scenario reprices one option across a grid of spots and volatilities.
package scenario

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Grid lists the bumped inputs. An empty axis keeps the base market value.
type Grid struct {
	Spots []float64 `json:"spots"`
	Vols  []float64 `json:"vols"`
}

// Point is one repriced grid node.
type Point struct {
	Spot       float64         `json:"spot"`
	Volatility float64         `json:"volatility"`
	Result     *pricing.Result `json:"result"`
}

// Options tune Run. Progress receives a progress bar when non-nil.
type Options struct {
	Concurrency int
	Progress    io.Writer
}

// Size is the number of nodes the grid expands to.
func (g Grid) Size() int {
	return max(len(g.Spots), 1) * max(len(g.Vols), 1)
}

// nodes expands the grid spot-major, filling empty axes from base.
func (g Grid) nodes(base pricing.MarketData) []Point {
	spots := g.Spots
	if len(spots) == 0 {
		spots = []float64{base.Spot}
	}
	vols := g.Vols
	if len(vols) == 0 {
		vols = []float64{base.Volatility}
	}

	out := make([]Point, 0, len(spots)*len(vols))
	for _, s := range spots {
		for _, v := range vols {
			out = append(out, Point{Spot: s, Volatility: v})
		}
	}
	return out
}

// Run prices every node with eng and returns the points in grid order.
// The first pricing failure cancels the remaining work.
func Run(ctx context.Context, eng pricing.Engine, spec pricing.OptionSpec, base pricing.MarketData, grid Grid, opts Options) ([]Point, error) {
	points := grid.nodes(base)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(
			len(points),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("pricing grid"),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(20),
		)
	}

	logger.Debugf("scenario grid: %d nodes, concurrency %d", len(points), limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range points {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			mkt := base
			mkt.Spot = points[i].Spot
			mkt.Volatility = points[i].Volatility

			res, err := eng.Price(spec, mkt)
			if err != nil {
				return fmt.Errorf("spot=%g vol=%g: %w", mkt.Spot, mkt.Volatility, err)
			}
			points[i].Result = res

			logger.Tracef("grid node spot=%g vol=%g npv=%g", mkt.Spot, mkt.Volatility, res.NPV)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return points, nil
}
