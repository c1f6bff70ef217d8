// Package daycount converts a pair of dates into a year fraction.
//
// Only the conventions needed to derive time-to-maturity for flat-curve
// pricing are supported:
//
//	Actual/365 (Fixed)  actual days / 365
//	Actual/360          actual days / 360
//	30/360              30E/360 (Eurobond basis)
package daycount

import (
	"fmt"
	"strings"
	"time"
)

// Convention identifies a day-count rule.
type Convention int

const (
	Actual365Fixed Convention = iota
	Actual360
	Thirty360
)

// String returns the conventional display name.
func (c Convention) String() string {
	switch c {
	case Actual365Fixed:
		return "Actual/365 (Fixed)"
	case Actual360:
		return "Actual/360"
	case Thirty360:
		return "30/360"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// Parse maps a user-supplied name onto a Convention.
// Matching ignores case, spaces and the "(fixed)" suffix.
func Parse(name string) (Convention, error) {
	key := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	switch key {
	case "ACTUAL/365(FIXED)", "ACTUAL/365FIXED", "ACTUAL/365F", "ACT/365F", "ACT/365", "ACTUAL365FIXED", "":
		return Actual365Fixed, nil
	case "ACTUAL/360", "ACT/360", "ACTUAL360":
		return Actual360, nil
	case "30/360", "30E/360", "THIRTY360":
		return Thirty360, nil
	}
	return 0, fmt.Errorf("unknown day count convention %q", name)
}

// DayCount returns the number of days between start and end under c.
// The result is negative when end is before start.
func (c Convention) DayCount(start, end time.Time) int {
	if c == Thirty360 {
		return thirty360Days(start, end)
	}
	return actualDays(start, end)
}

// YearFraction returns the accrual period between start and end in years.
func (c Convention) YearFraction(start, end time.Time) float64 {
	switch c {
	case Actual360:
		return float64(actualDays(start, end)) / 360.0
	case Thirty360:
		return float64(thirty360Days(start, end)) / 360.0
	default:
		return float64(actualDays(start, end)) / 365.0
	}
}

// actualDays counts calendar days, ignoring time of day and location.
func actualDays(start, end time.Time) int {
	s := civil(start)
	e := civil(end)
	return int(e.Sub(s).Hours() / 24)
}

// thirty360Days caps both day-of-month values at 30.
func thirty360Days(start, end time.Time) int {
	d1 := start.Day()
	if d1 > 30 {
		d1 = 30
	}
	d2 := end.Day()
	if d2 > 30 {
		d2 = 30
	}
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the calendar-date layout accepted by ParseDate.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
