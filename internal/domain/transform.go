package domain

import (
	"fmt"
	"slices"
	"strings"
)

// InvalidDatePolicy decides what happens to a row whose date cannot be composed.
type InvalidDatePolicy int

const (
	// InvalidDateKeep retains the row with a nil Date.
	InvalidDateKeep InvalidDatePolicy = iota
	// InvalidDateDrop excludes the row from the wide and long tables.
	InvalidDateDrop
	// InvalidDateFail aborts the whole batch on the first invalid date.
	InvalidDateFail
)

func (p InvalidDatePolicy) String() string {
	switch p {
	case InvalidDateKeep:
		return "keep"
	case InvalidDateDrop:
		return "drop"
	case InvalidDateFail:
		return "fail"
	default:
		return fmt.Sprintf("InvalidDatePolicy(%d)", int(p))
	}
}

// ParseInvalidDatePolicy accepts "keep", "drop" or "fail".
func ParseInvalidDatePolicy(s string) (InvalidDatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return InvalidDateKeep, nil
	case "drop":
		return InvalidDateDrop, nil
	case "fail":
		return InvalidDateFail, nil
	default:
		return InvalidDateKeep, fmt.Errorf("invalid date policy %q (allowed: keep, drop, fail)", s)
	}
}

type options struct {
	invalidDates InvalidDatePolicy
	strictSeason bool
}

// Option configures Normalize.
type Option func(*options)

// WithInvalidDatePolicy sets how rows with invalid dates are handled.
func WithInvalidDatePolicy(p InvalidDatePolicy) Option {
	return func(o *options) { o.invalidDates = p }
}

// WithStrictSeason reports months outside November through April as
// out-of-season issues. The year rule is applied to them regardless.
func WithStrictSeason() Option {
	return func(o *options) { o.strictSeason = true }
}

// ParseTable interprets a raw table as records. It fails with a
// *MissingColumnError before reading any row when a required column is absent.
func ParseTable(t RawTable) ([]Record, error) {
	idx, err := columnIndex(t.Columns)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(t.Rows))
	for _, cells := range t.Rows {
		get := func(col string) string {
			if i := idx[col]; i < len(cells) {
				return strings.TrimSpace(cells[i])
			}
			return ""
		}
		// Unparsable month/day become 0 and surface later as invalid dates.
		month, _ := parseWholeNumber(get(ColMonth))
		day, _ := parseWholeNumber(get(ColDay))
		records = append(records, Record{
			Month: month,
			Day:   day,
			Wdir:  get(ColWdir),
			Wmax:  get(ColWmax),
			Wavg:  get(ColWavg),
			HNS:   get(ColHNS),
			HNW:   get(ColHNW),
			Cells: slices.Clone(cells),
		})
	}
	return records, nil
}

func columnIndex(columns []string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return idx, nil
}

// NormalizeTable parses and normalizes a raw table, keeping its column names.
func NormalizeTable(t RawTable, seasonStartYear int, opts ...Option) (NormalizedTable, error) {
	records, err := ParseTable(t)
	if err != nil {
		return NormalizedTable{}, err
	}
	table, err := Normalize(records, seasonStartYear, opts...)
	if err != nil {
		return NormalizedTable{}, err
	}
	table.Columns = slices.Clone(t.Columns)
	return table, nil
}

// Normalize derives wind direction degrees, season year, date and numeric
// speeds for every record, and melts the two wind-speed series into long form.
//
// Row-scoped problems are collected in NormalizedTable.Issues. An error is
// returned only under InvalidDateFail. Rows come out in input order and the
// long form holds exactly two points per retained row, Wmax before Wavg.
func Normalize(records []Record, seasonStartYear int, opts ...Option) (NormalizedTable, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	table := NormalizedTable{
		SeasonStartYear: seasonStartYear,
		Rows:            make([]Row, 0, len(records)),
		Wind:            make([]WindSpeedPoint, 0, 2*len(records)),
	}

	for i, rec := range records {
		row, issues := normalizeRecord(i, rec, seasonStartYear, o.strictSeason)
		table.Issues = append(table.Issues, issues...)

		if row.Date == nil {
			switch o.invalidDates {
			case InvalidDateFail:
				return NormalizedTable{}, fmt.Errorf("normalize: %w", dateIssue(issues))
			case InvalidDateDrop:
				continue
			}
		}

		table.Rows = append(table.Rows, row)
		table.Wind = append(table.Wind, meltWind(row)...)
	}

	return table, nil
}

func normalizeRecord(i int, rec Record, seasonStartYear int, strictSeason bool) (Row, []RowIssue) {
	var issues []RowIssue
	report := func(kind IssueKind, col, val string) {
		issues = append(issues, RowIssue{Row: i, Kind: kind, Column: col, Value: val})
	}

	row := Row{
		Index:     i,
		Cells:     slices.Clone(rec.Cells),
		Month:     rec.Month,
		Day:       rec.Day,
		Direction: MapDirection(rec.Wdir),
		Year:      SeasonYear(rec.Month, seasonStartYear),
	}

	if !row.Direction.Known && !row.Direction.Missing() {
		report(IssueInvalidDirection, ColWdir, rec.Wdir)
	}

	if strictSeason && rec.Month >= 1 && rec.Month <= 12 && !InSeason(rec.Month) {
		report(IssueOutOfSeason, ColMonth, fmt.Sprint(rec.Month))
	}

	if d, ok := ComposeDate(row.Year, rec.Month, rec.Day); ok {
		row.Date = &d
	} else {
		report(IssueInvalidDate, ColDate, fmt.Sprintf("%04d-%02d-%02d", row.Year, rec.Month, rec.Day))
	}

	coerce := func(col, raw string) *float64 {
		v, ok := CoerceFloat(raw)
		if !ok {
			report(IssueNumericCoercion, col, raw)
		}
		return v
	}
	row.Wmax = coerce(ColWmax, rec.Wmax)
	row.Wavg = coerce(ColWavg, rec.Wavg)
	row.HNS = coerce(ColHNS, rec.HNS)
	row.HNW = coerce(ColHNW, rec.HNW)

	return row, issues
}

// meltWind emits the long-form points for one row, Wmax first.
func meltWind(row Row) []WindSpeedPoint {
	return []WindSpeedPoint{
		{Row: row.Index, Date: row.Date, Series: SeriesWmax, Speed: row.Wmax},
		{Row: row.Index, Date: row.Date, Series: SeriesWavg, Speed: row.Wavg},
	}
}

func dateIssue(issues []RowIssue) RowIssue {
	for _, is := range issues {
		if is.Kind == IssueInvalidDate {
			return is
		}
	}
	return RowIssue{Kind: IssueInvalidDate}
}
