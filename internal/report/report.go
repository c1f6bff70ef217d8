// Package report renders pricing results to the console and to files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/scenario"
)

const (
	ResultFile   = "result.json"
	ScenarioFile = "scenario.csv"
)

// ScenarioRow is a flattened scenario.Point.
type ScenarioRow struct {
	Spot       float64
	Volatility float64
	NPV        float64
	Greeks     *pricing.Greeks
}

// ScenarioRows flattens points for printing and CSV output.
func ScenarioRows(points []scenario.Point) []ScenarioRow {
	rows := make([]ScenarioRow, 0, len(points))
	for _, p := range points {
		row := ScenarioRow{Spot: p.Spot, Volatility: p.Volatility}
		if p.Result != nil {
			row.NPV = p.Result.NPV
			row.Greeks = p.Result.Greeks
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteJSON writes v as indented JSON to outdir/name.
func WriteJSON(v any, outdir, name string) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, name), b, 0644)
}

// WriteCSV writes the scenario grid to outdir/scenario.csv.
// Greek columns are left empty when sensitivities were not computed.
func WriteCSV(rows []ScenarioRow, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, ScenarioFile))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	headers := []string{"spot", "volatility", "npv", "delta", "gamma", "vega", "theta", "rho", "dividend_rho"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{formatNumber(r.Spot), formatNumber(r.Volatility), formatNumber(r.NPV)}
		if g := r.Greeks; g != nil {
			row = append(row,
				formatNumber(g.Delta), formatNumber(g.Gamma), formatNumber(g.Vega),
				formatNumber(g.Theta), formatNumber(g.Rho), formatNumber(g.DividendRho))
		} else {
			row = append(row, "", "", "", "", "", "")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
