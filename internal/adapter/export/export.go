// Package export writes normalized tables as CSV or XLSX downloads.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/mwac-vis/internal/chart"
	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by WriteXLSX.
const (
	SheetNormalized = "Normalized"
	SheetWind       = "Wind"
)

// LongColumns are the headers of the long-form export.
var LongColumns = []string{chart.FieldDate, chart.FieldWindType, chart.FieldSpeed}

// WriteCSV writes the wide table with its derived columns. Missing values are
// written as empty cells.
func WriteCSV(w io.Writer, t domain.NormalizedTable) error {
	df := frame(t.WideColumns(), t.WideRecords())
	if df.Err != nil {
		return fmt.Errorf("build wide frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write wide csv: %w", err)
	}
	return nil
}

// WriteLongCSV writes the long-form wind view, two lines per row.
func WriteLongCSV(w io.Writer, t domain.NormalizedTable) error {
	df := frame(LongColumns, longRecords(t))
	if df.Err != nil {
		return fmt.Errorf("build long frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write long csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with the wide table and the long-form view on
// separate sheets. Numbers are stored as numbers.
func WriteXLSX(w io.Writer, t domain.NormalizedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetNormalized); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetWind); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	if err := writeSheet(f, SheetNormalized, t.WideColumns(), t.WideRecords()); err != nil {
		return err
	}
	if err := writeSheet(f, SheetWind, LongColumns, longRecords(t)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, records [][]any) error {
	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for rowIdx, rec := range records {
		for colIdx, v := range rec {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, rowIdx, err)
			}
		}
	}
	return nil
}

func longRecords(t domain.NormalizedTable) [][]any {
	out := make([][]any, len(t.Wind))
	for i, p := range t.Wind {
		var date, speed any
		if p.Date != nil {
			date = p.Date.Format(domain.DateLayout)
		}
		if p.Speed != nil {
			speed = *p.Speed
		}
		out[i] = []any{date, p.Series, speed}
	}
	return out
}

// frame builds an all-text data frame so mixed columns such as
// Wind_Direction_Degrees keep their exact rendering.
func frame(columns []string, records [][]any) dataframe.DataFrame {
	cols := make([]series.Series, len(columns))
	for j, name := range columns {
		vals := make([]string, len(records))
		for i, rec := range records {
			vals[i] = cellText(rec[j])
		}
		cols[j] = series.New(vals, series.String, name)
	}
	return dataframe.New(cols...)
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
