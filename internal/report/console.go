package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Column widths of the result table.
const (
	methodWidth = 35
	valueWidth  = 14
)

// Inputs is everything echoed back ahead of the results.
type Inputs struct {
	Type          pricing.OptionType
	Maturity      time.Time
	Underlying    float64
	Strike        float64
	Rate          float64
	DividendYield float64
	Volatility    float64
	DayCounter    string
	Evaluation    time.Time
	Ticker        string
	SpotSource    string
	Symbol        string
}

// CellKind tags the value held by a Cell.
type CellKind int

const (
	TextCell CellKind = iota
	NumberCell
)

// Cell is a single table value: either text or a number.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// Text and Number build cells of each kind.
func Text(s string) Cell      { return Cell{Kind: TextCell, Text: s} }
func Number(v float64) Cell   { return Cell{Kind: NumberCell, Number: v} }
func (c Cell) String() string { return formatCell(c) }

func formatCell(c Cell) string {
	switch c.Kind {
	case NumberCell:
		return formatNumber(c.Number)
	default:
		return c.Text
	}
}

// formatNumber prints six significant digits.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Percent renders a decimal fraction as "6.000000 %".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(6) + " %"
}

// LongDate renders "May 17th, 1999".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinal(t.Day()), t.Year())
}

func ordinal(d int) string {
	if d%100 >= 11 && d%100 <= 13 {
		return "th"
	}
	switch d % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// PrintInputs writes the option and market description.
func PrintInputs(w io.Writer, in Inputs) {
	fmt.Fprintf(w, "Option type = %s\n", in.Type)
	fmt.Fprintf(w, "Maturity = %s\n", LongDate(in.Maturity))
	if in.Ticker != "" {
		fmt.Fprintf(w, "Underlying = %s (%s)\n", in.Ticker, in.SpotSource)
	}
	if in.Symbol != "" {
		fmt.Fprintf(w, "Contract = %s\n", in.Symbol)
	}
	fmt.Fprintf(w, "Underlying price = %s\n", formatNumber(in.Underlying))
	fmt.Fprintf(w, "Strike = %s\n", formatNumber(in.Strike))
	fmt.Fprintf(w, "Risk-free interest rate = %s\n", Percent(in.Rate))
	fmt.Fprintf(w, "Dividend yield = %s\n", Percent(in.DividendYield))
	fmt.Fprintf(w, "Volatility = %s\n", Percent(in.Volatility))
	fmt.Fprintf(w, "Day Counter = %s\n", in.DayCounter)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Today's Date : %s\n\n", LongDate(in.Evaluation))
}

// PrintResRow writes one left-aligned table row.
func PrintResRow(w io.Writer, method string, value Cell) {
	fmt.Fprintf(w, "%-*s%-*s\n", methodWidth, method, valueWidth, value)
}

// PrintResult writes the heading and NPV row, then the Greeks when present.
func PrintResult(w io.Writer, res *pricing.Result) {
	PrintResRow(w, "Method", Text("European"))
	PrintResRow(w, "Black-Scholes", Number(res.NPV))
	if res.Greeks != nil {
		fmt.Fprintln(w)
		PrintGreeks(w, res.Greeks)
	}
}

// PrintGreeks writes one row per sensitivity, theta both per year and per day.
func PrintGreeks(w io.Writer, g *pricing.Greeks) {
	PrintResRow(w, "Delta", Number(g.Delta))
	PrintResRow(w, "Gamma", Number(g.Gamma))
	PrintResRow(w, "Vega", Number(g.Vega))
	PrintResRow(w, "Theta (per year)", Number(g.Theta))
	PrintResRow(w, "Theta (per day)", Number(g.ThetaPerDay()))
	PrintResRow(w, "Rho", Number(g.Rho))
	PrintResRow(w, "Dividend Rho", Number(g.DividendRho))
}

// PrintScenario writes a spot x volatility NPV table.
func PrintScenario(w io.Writer, rows []ScenarioRow) {
	fmt.Fprintf(w, "%-12s%-12s%-*s\n", "Spot", "Volatility", valueWidth, "NPV")
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s%-12s%-*s\n", formatNumber(r.Spot), Percent(r.Volatility), valueWidth, Number(r.NPV))
	}
}

// FormatElapsed renders a run duration as "1 h 2 m 3.00000 s",
// omitting leading zero units.
func FormatElapsed(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	seconds -= float64(hours) * 3600
	minutes := int(seconds / 60)
	seconds -= float64(minutes) * 60

	out := ""
	if hours > 0 {
		out += fmt.Sprintf("%d h ", hours)
	}
	if hours > 0 || minutes > 0 {
		out += fmt.Sprintf("%d m ", minutes)
	}
	return out + fmt.Sprintf("%.5f s", seconds)
}
