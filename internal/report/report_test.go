package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/scenario"
)

func TestPrintInputs(t *testing.T) {
	var buf bytes.Buffer
	PrintInputs(&buf, Inputs{
		Type:          pricing.Put,
		Maturity:      time.Date(1999, time.May, 17, 0, 0, 0, 0, time.UTC),
		Underlying:    36,
		Strike:        40,
		Rate:          0.06,
		DividendYield: 0,
		Volatility:    0.20,
		DayCounter:    "Actual/365 (Fixed)",
		Evaluation:    time.Date(1998, time.May, 15, 0, 0, 0, 0, time.UTC),
	})

	expected := strings.Join([]string{
		"Option type = Put",
		"Maturity = May 17th, 1999",
		"Underlying price = 36",
		"Strike = 40",
		"Risk-free interest rate = 6.000000 %",
		"Dividend yield = 0.000000 %",
		"Volatility = 20.000000 %",
		"Day Counter = Actual/365 (Fixed)",
		"",
		"Today's Date : May 15th, 1998",
		"",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, &pricing.Result{NPV: 3.84430779159684})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Method                             European      ", lines[0])
	assert.Equal(t, "Black-Scholes                      3.84431       ", lines[1])
}

func TestPrintResultWithGreeks(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, &pricing.Result{NPV: 1, Greeks: &pricing.Greeks{Delta: -0.5, Theta: -365}})

	out := buf.String()
	assert.Contains(t, out, "Delta")
	assert.Contains(t, out, "-0.5")
	assert.Contains(t, out, "Theta (per day)")
	assert.Contains(t, out, "Dividend Rho")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "European", Text("European").String())
	assert.Equal(t, "3.84431", Number(3.84430779159684).String())
	assert.Equal(t, "1e+07", Number(1e7).String())
}

func TestLongDate(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 31: "31st"}
	for day, want := range cases {
		got := LongDate(time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, "January "+want+", 2025", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0.25000 s", FormatElapsed(250*time.Millisecond))
	assert.Equal(t, "2 m 5.00000 s", FormatElapsed(2*time.Minute+5*time.Second))
	assert.Equal(t, "1 h 0 m 1.50000 s", FormatElapsed(time.Hour+1500*time.Millisecond))
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	res := &pricing.Result{NPV: 3.5, Greeks: &pricing.Greeks{Delta: -0.4}}
	require.NoError(t, WriteJSON(res, dir, ResultFile))

	b, err := os.ReadFile(filepath.Join(dir, ResultFile))
	require.NoError(t, err)

	var back pricing.Result
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 3.5, back.NPV)
	assert.Equal(t, -0.4, back.Greeks.Delta)
}

func TestWriteCSV(t *testing.T) {
	points := []scenario.Point{
		{Spot: 36, Volatility: 0.2, Result: &pricing.Result{NPV: 3.84430779159684}},
		{Spot: 40, Volatility: 0.2, Result: &pricing.Result{NPV: 2, Greeks: &pricing.Greeks{Delta: -0.4}}},
	}
	dir := t.TempDir()
	require.NoError(t, WriteCSV(ScenarioRows(points), dir))

	f, err := os.Open(filepath.Join(dir, ScenarioFile))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "spot", records[0][0])
	assert.Equal(t, []string{"36", "0.2", "3.84431", "", "", "", "", "", ""}, records[1])
	assert.Equal(t, "-0.4", records[2][3])
}

func TestPrintScenario(t *testing.T) {
	var buf bytes.Buffer
	PrintScenario(&buf, []ScenarioRow{{Spot: 36, Volatility: 0.2, NPV: 3.84430779159684}})
	assert.Contains(t, buf.String(), "20.000000 %")
	assert.Contains(t, buf.String(), "3.84431")
}
