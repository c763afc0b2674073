// Command normalize reads an MWAC readings file, normalizes it for one season,
// and writes the wide table, the long-form wind table, a workbook with both,
// and a JSON fixture of the published observations.
//
// Usage:
//
//	go run ./cmd/normalize \
//	  -in data/mwac.csv -season 2023 \
//	  -wide-out out/mwac_normalized.csv \
//	  -long-out out/mwac_wind.csv \
//	  -xlsx-out out/mwac.xlsx \
//	  -json-out out/mwac_observations.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/mwac-vis/internal/adapter/export"
	"github.com/couchcryptid/mwac-vis/internal/adapter/file"
	"github.com/couchcryptid/mwac-vis/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input CSV or XLSX file")
	season := flag.Int("season", 2023, "season start year (the November-December year)")
	sheet := flag.String("sheet", "", "XLSX worksheet (default: first sheet)")
	encoding := flag.String("encoding", "utf-8", "CSV charset: utf-8, windows-1252, iso-8859-1")
	delimiter := flag.String("delimiter", ",", `CSV field separator (a single character, or "tab")`)
	policy := flag.String("policy", "keep", "invalid date policy: keep, drop, fail")
	strict := flag.Bool("strict-season", false, "flag months outside November through April")
	wideOut := flag.String("wide-out", "", "output path for the normalized wide CSV")
	longOut := flag.String("long-out", "", "output path for the long-form wind CSV")
	xlsxOut := flag.String("xlsx-out", "", "output path for the XLSX workbook")
	jsonOut := flag.String("json-out", "", "output path for the observations JSON")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	delim, err := file.ParseDelimiter(*delimiter)
	if err != nil {
		return err
	}
	p, err := domain.ParseInvalidDatePolicy(*policy)
	if err != nil {
		return err
	}
	opts := []domain.Option{domain.WithInvalidDatePolicy(p)}
	if *strict {
		opts = append(opts, domain.WithStrictSeason())
	}

	raw, err := file.Load(context.Background(), *in, file.Options{Sheet: *sheet, Delimiter: delim, Encoding: *encoding})
	if err != nil {
		return err
	}
	table, err := domain.NormalizeTable(raw, *season, opts...)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", *in, err)
	}
	log.Printf("%s: %d rows, %d wind points", *in, len(table.Rows), len(table.Wind))

	outputs := []struct {
		path   string
		render func(io.Writer) error
	}{
		{*wideOut, func(w io.Writer) error { return export.WriteCSV(w, table) }},
		{*longOut, func(w io.Writer) error { return export.WriteLongCSV(w, table) }},
		{*xlsxOut, func(w io.Writer) error { return export.WriteXLSX(w, table) }},
		{*jsonOut, func(w io.Writer) error { return writeObservations(w, table) }},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := writeFile(o.path, o.render); err != nil {
			return fmt.Errorf("writing %s: %w", o.path, err)
		}
		log.Printf("wrote %s", o.path)
	}

	printStats(table)
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeObservations(w io.Writer, table domain.NormalizedTable) error {
	obs := make([]domain.Observation, len(table.Rows))
	for i, row := range table.Rows {
		obs[i] = domain.NewObservation(row, table.SeasonStartYear)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(obs)
}

// seriesStats summarizes one numeric column.
type seriesStats struct {
	count    int
	missing  int
	min, max float64
	sum      float64
}

func (s *seriesStats) add(v *float64) {
	if v == nil {
		s.missing++
		return
	}
	if s.count == 0 || *v < s.min {
		s.min = *v
	}
	if s.count == 0 || *v > s.max {
		s.max = *v
	}
	s.count++
	s.sum += *v
}

func (s seriesStats) String() string {
	if s.count == 0 {
		return fmt.Sprintf("no values (%d missing)", s.missing)
	}
	return fmt.Sprintf("min=%g max=%g mean=%.2f (%d missing)", s.min, s.max, s.sum/float64(s.count), s.missing)
}

func printStats(table domain.NormalizedTable) {
	var wmax, wavg, hns, hnw seriesStats
	for _, r := range table.Rows {
		wmax.add(r.Wmax)
		wavg.add(r.Wavg)
		hns.add(r.HNS)
		hnw.add(r.HNW)
	}
	dated := table.DatedRows()

	fmt.Printf("\n=== Season %d-%d ===\n", table.SeasonStartYear, table.SeasonStartYear+1)
	fmt.Printf("Rows: %d (%d dated)\n", len(table.Rows), len(dated))
	if len(dated) > 0 {
		fmt.Printf("Range: %s to %s\n", dated[0].DateString(), dated[len(dated)-1].DateString())
	}
	fmt.Printf("Wmax: %s\n", wmax)
	fmt.Printf("Wavg: %s\n", wavg)
	fmt.Printf("HNS:  %s\n", hns)
	fmt.Printf("HNW:  %s\n", hnw)

	counts := table.IssueCounts()
	fmt.Printf("Issues: %d\n", len(table.Issues))
	for _, kind := range domain.IssueKinds {
		fmt.Printf("  %-26s %d\n", kind, counts[kind])
	}
}
