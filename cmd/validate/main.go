// Command validate runs integrity checks over an MWAC readings file: header
// completeness, row issues by kind, the shape of the long-form wind table,
// normalization idempotence, and consistency of the chart data with the table.
//
// Usage:
//
//	go run ./cmd/validate -in data/mwac.csv -season 2023
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/couchcryptid/mwac-vis/internal/adapter/file"
	"github.com/couchcryptid/mwac-vis/internal/chart"
	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	in := flag.String("in", "", "input CSV or XLSX file")
	season := flag.Int("season", 2023, "season start year")
	sheet := flag.String("sheet", "", "XLSX worksheet (default: first sheet)")
	encoding := flag.String("encoding", "utf-8", "CSV charset")
	delimiter := flag.String("delimiter", ",", `CSV field separator (a single character, or "tab")`)
	allowIssues := flag.Int("allow-issues", 0, "row issues tolerated before the issue phase fails")
	strict := flag.Bool("strict-season", false, "flag months outside November through April")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	delim, err := file.ParseDelimiter(*delimiter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	var opts []domain.Option
	if *strict {
		opts = append(opts, domain.WithStrictSeason())
	}

	if code := run(*in, file.Options{Sheet: *sheet, Delimiter: delim, Encoding: *encoding}, *season, *allowIssues, opts); code != 0 {
		os.Exit(code)
	}
}

func run(path string, fileOpts file.Options, season, allowIssues int, opts []domain.Option) int {
	fmt.Println("=== MWAC Data Integrity Validation ===")
	fmt.Println()

	raw, err := file.Load(context.Background(), path, fileOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", path, err)
		return 1
	}

	header := validateHeader(raw)
	phases := []*phase{header}

	var table domain.NormalizedTable
	if header.passed() {
		table, err = domain.NormalizeTable(raw, season, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: normalize: %v\n", err)
			return 1
		}
		phases = append(phases,
			validateRowIssues(table, allowIssues),
			validateLongForm(table),
			validateIdempotence(raw, table, season, opts),
			validateChartData(table),
		)
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d input rows, %d normalized rows, %d wind points\n",
		len(raw.Rows), len(table.Rows), len(table.Wind))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Header ──

func validateHeader(raw domain.RawTable) *phase {
	p := &phase{name: "Phase 1: Required columns"}

	_, err := domain.ParseTable(raw)
	var mce *domain.MissingColumnError
	switch {
	case errors.As(err, &mce):
		for _, c := range mce.Columns {
			p.errorf("missing column %q", c)
		}
	case err != nil:
		p.errorf("parse table: %v", err)
	}

	seen := make(map[string]bool, len(raw.Columns))
	for _, c := range raw.Columns {
		if seen[c] && slices.Contains(domain.RequiredColumns, c) {
			p.errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	return p
}

// ── Phase 2: Row issues ──

func validateRowIssues(table domain.NormalizedTable, allow int) *phase {
	p := &phase{name: "Phase 2: Row issues"}

	counts := table.IssueCounts()
	for _, kind := range domain.IssueKinds {
		fmt.Printf("  %-26s %d\n", kind, counts[kind])
	}
	if len(table.Issues) <= allow {
		return p
	}
	for _, is := range table.Issues {
		p.errorf("%v", is)
	}
	return p
}

// ── Phase 3: Long-form shape ──

func validateLongForm(table domain.NormalizedTable) *phase {
	p := &phase{name: "Phase 3: Long-form wind table"}

	if want := 2 * len(table.Rows); len(table.Wind) != want {
		p.errorf("wind points: got %d, want %d", len(table.Wind), want)
		return p
	}
	for i, row := range table.Rows {
		pair := table.Wind[2*i : 2*i+2]
		for j, series := range []string{domain.SeriesWmax, domain.SeriesWavg} {
			pt := pair[j]
			if pt.Series != series {
				p.errorf("row %d: point %d series %q, want %q", row.Index, j, pt.Series, series)
			}
			if pt.Row != row.Index {
				p.errorf("row %d: point %d belongs to row %d", row.Index, j, pt.Row)
			}
			if (pt.Date == nil) != (row.Date == nil) || (pt.Date != nil && !pt.Date.Equal(*row.Date)) {
				p.errorf("row %d: %s point date does not match row date", row.Index, series)
			}
		}
		if !sameValue(pair[0].Speed, row.Wmax) || !sameValue(pair[1].Speed, row.Wavg) {
			p.errorf("row %d: wind speeds differ from wide table", row.Index)
		}
	}
	return p
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ── Phase 4: Idempotence ──

func validateIdempotence(raw domain.RawTable, first domain.NormalizedTable, season int, opts []domain.Option) *phase {
	p := &phase{name: "Phase 4: Idempotent normalization"}

	before := cloneRaw(raw)
	second, err := domain.NormalizeTable(raw, season, opts...)
	if err != nil {
		p.errorf("second run: %v", err)
		return p
	}
	if diff := cmp.Diff(first, second); diff != "" {
		p.errorf("second run differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, raw); diff != "" {
		p.errorf("input modified by normalization (-before +after):\n%s", diff)
	}
	return p
}

func cloneRaw(raw domain.RawTable) domain.RawTable {
	out := domain.RawTable{Columns: slices.Clone(raw.Columns), Rows: make([][]string, len(raw.Rows))}
	for i, r := range raw.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// ── Phase 5: Chart data ──

func validateChartData(table domain.NormalizedTable) *phase {
	p := &phase{name: "Phase 5: Chart data consistency"}

	dated := table.DatedRows()
	if got, want := len(chart.WindValues(table)), len(table.DatedWind()); got != want {
		p.errorf("wind chart points: got %d, want %d", got, want)
	}
	if got, want := len(chart.SnowValues(table)), len(dated); got != want {
		p.errorf("snow chart points: got %d, want %d", got, want)
	}

	for i := 1; i < len(dated); i++ {
		prev, cur := dated[i-1], dated[i]
		if cur.Date.Before(*prev.Date) {
			p.errorf("row %d (%s) is dated before row %d (%s)",
				cur.Index, cur.DateString(), prev.Index, prev.DateString())
		}
	}
	return p
}
