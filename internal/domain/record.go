package domain

import (
	"time"
)

// Required input columns. Names are exact and case-sensitive.
const (
	ColMonth = "Month"
	ColDay   = "Day"
	ColWdir  = "Wdir"
	ColWmax  = "Wmax"
	ColWavg  = "Wavg"
	ColHNS   = "HNS"
	ColHNW   = "HNW"
)

// Derived columns appended to the wide table.
const (
	ColWindDirectionDegrees = "Wind_Direction_Degrees"
	ColYear                 = "Year"
	ColDate                 = "Date"
)

// Series labels used in the long-form wind table.
const (
	SeriesWmax = "Wmax"
	SeriesWavg = "Wavg"
)

// DateLayout is the ISO calendar date format used for display and message keys.
const DateLayout = "2006-01-02"

// RequiredColumns lists the columns every input must carry, in report order.
var RequiredColumns = []string{ColMonth, ColDay, ColWdir, ColWmax, ColWavg, ColHNS, ColHNW}

var derivedColumns = []string{ColWindDirectionDegrees, ColYear, ColDate}

// RawTable is a loaded file before interpretation: a header and string cells.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Record is one observation day as read from the source. Wind speeds and snow
// totals stay raw so coercion failures can be reported per row.
type Record struct {
	Month int
	Day   int
	Wdir  string
	Wmax  string
	Wavg  string
	HNS   string // height of new snow
	HNW   string // height of new water (snow/water equivalent)

	// Cells holds every original cell in source column order.
	Cells []string
}

// Row is one normalized wide-table row.
type Row struct {
	Index     int // zero-based position in the input
	Cells     []string
	Month     int
	Day       int
	Direction Direction
	Year      int
	Date      *time.Time // nil when (Year, Month, Day) is not a calendar date
	Wmax      *float64
	Wavg      *float64
	HNS       *float64
	HNW       *float64
}

// DateString formats the row date, or returns "" when the date is invalid.
func (r Row) DateString() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format(DateLayout)
}

// WindSpeedPoint is one long-form row: a single wind-speed series value for a day.
type WindSpeedPoint struct {
	Row    int        `json:"row"`
	Date   *time.Time `json:"date"`
	Series string     `json:"series"`
	Speed  *float64   `json:"speed"`
}

// NormalizedTable bundles the wide table and its long-form wind view.
// It is not modified after Normalize returns it.
type NormalizedTable struct {
	SeasonStartYear int
	Columns         []string // original source columns
	Rows            []Row
	Wind            []WindSpeedPoint
	Issues          []RowIssue
}

// WideColumns returns the original columns followed by the derived ones.
// A source column that shares a derived name is replaced, not duplicated.
func (t NormalizedTable) WideColumns() []string {
	base := t.Columns
	if len(base) == 0 {
		base = RequiredColumns
	}
	out := make([]string, 0, len(base)+len(derivedColumns))
	seen := make(map[string]bool, len(base))
	for _, c := range base {
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range derivedColumns {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// WideRecords renders every row as values aligned with WideColumns. Coerced
// columns carry float64 or nil, derived columns their typed value, and all
// other columns the original cell text.
func (t NormalizedTable) WideRecords() [][]any {
	cols := t.WideColumns()
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]any, len(cols))
		for j, c := range cols {
			vals[j] = r.value(c, idx)
		}
		out[i] = vals
	}
	return out
}

func (r Row) value(col string, idx map[string]int) any {
	switch col {
	case ColMonth:
		return r.Month
	case ColDay:
		return r.Day
	case ColWdir:
		return r.Direction.Code
	case ColWmax:
		return floatValue(r.Wmax)
	case ColWavg:
		return floatValue(r.Wavg)
	case ColHNS:
		return floatValue(r.HNS)
	case ColHNW:
		return floatValue(r.HNW)
	case ColWindDirectionDegrees:
		return r.Direction.Value()
	case ColYear:
		return r.Year
	case ColDate:
		if r.Date == nil {
			return nil
		}
		return r.DateString()
	}
	if i, ok := idx[col]; ok && i < len(r.Cells) {
		return r.Cells[i]
	}
	return ""
}

// DatedRows returns the rows that have a valid date, for date-keyed charts.
func (t NormalizedTable) DatedRows() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Date != nil {
			out = append(out, r)
		}
	}
	return out
}

// DatedWind returns the long-form points that have a valid date.
func (t NormalizedTable) DatedWind() []WindSpeedPoint {
	out := make([]WindSpeedPoint, 0, len(t.Wind))
	for _, p := range t.Wind {
		if p.Date != nil {
			out = append(out, p)
		}
	}
	return out
}

// IssueCounts tallies row issues by kind.
func (t NormalizedTable) IssueCounts() map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, is := range t.Issues {
		counts[is.Kind]++
	}
	return counts
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
