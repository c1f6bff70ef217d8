package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// localFileSource quotes spots from a CSV of "TICKER,price" rows.
// The file is read once, on first use.
type localFileSource struct {
	path      string
	secondary SpotSource

	once  sync.Once
	spots map[string]float64
	err   error
}

// NewLocalFileSource reads spots from path, delegating misses to secondary.
func NewLocalFileSource(path string, secondary SpotSource) SpotSource {
	return &localFileSource{path: path, secondary: secondary}
}

func (l *localFileSource) Name() string          { return "file" }
func (l *localFileSource) Secondary() SpotSource { return l.secondary }

func (l *localFileSource) Spot(_ context.Context, ticker string) (float64, error) {
	l.once.Do(l.load)
	if l.err != nil {
		return 0, l.err
	}

	spot, ok := l.spots[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return 0, fmt.Errorf("%w: %s not in %s", ErrNoQuote, ticker, l.path)
	}
	return spot, nil
}

func (l *localFileSource) load() {
	f, err := os.Open(l.path)
	if err != nil {
		l.err = fmt.Errorf("open spots file: %w", err)
		return
	}
	defer f.Close()

	l.spots, l.err = readSpots(f)
	if l.err == nil {
		logger.Debugf("loaded %d spots from %s", len(l.spots), l.path)
	}
}

// readSpots parses "TICKER,price" rows. Blank lines, a header row and rows
// with an unparsable or non-positive price are skipped.
func readSpots(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	spots := make(map[string]float64)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) < 2 {
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(row[0]))
		price, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil || price <= 0 {
			logger.Tracef("skipping spots row %q", row)
			continue
		}
		spots[ticker] = price
	}
	return spots, nil
}
