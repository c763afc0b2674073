// Package file loads MWAC readings from CSV or XLSX exports into raw tables.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Format is a supported source file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file extensions with no reader.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Options tune how a source file is read.
type Options struct {
	// Sheet selects the XLSX worksheet. Empty means the first sheet.
	Sheet string
	// Delimiter separates CSV fields. Zero means a comma.
	Delimiter rune
	// Encoding names the CSV charset. Empty means UTF-8.
	Encoding string
}

// ParseDelimiter accepts a single character, or "tab" / `\t` for a tab.
// Empty means a comma.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter %q cannot separate fields", s)
	}
	return r, nil
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the file at path into a raw table.
func Load(ctx context.Context, path string, opts Options) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}
	format, err := DetectFormat(path)
	if err != nil {
		return domain.RawTable{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Read(f, format, opts)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}

// Read parses r in the given format.
func Read(r io.Reader, format Format, opts Options) (domain.RawTable, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, opts)
	case FormatXLSX:
		return ReadXLSX(r, opts.Sheet)
	default:
		return domain.RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadCSV reads a delimited file with a header row. Every column is kept as
// text and no cell is replaced by NaN, so interpretation stays with the domain.
// Column names come from the header exactly as written, duplicates and blanks
// included. A header with no data rows yields an empty table.
func ReadCSV(r io.Reader, opts Options) (domain.RawTable, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return domain.RawTable{}, err
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	cr := csv.NewReader(decoded)
	cr.Comma = delim
	records, err := cr.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return domain.RawTable{}, errors.New("parse csv: no header row")
	}

	header := slices.Clone(records[0])
	if len(records) == 1 {
		return domain.RawTable{Columns: header, Rows: [][]string{}}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", df.Err)
	}
	return fromDataFrame(header, df), nil
}

// fromDataFrame pairs the source header with the frame's rows. gota rewrites
// duplicate and blank column names, so its own header row is discarded.
func fromDataFrame(header []string, df dataframe.DataFrame) domain.RawTable {
	records := df.Records()
	rows := [][]string{}
	if len(records) > 1 {
		rows = records[1:]
	}
	return domain.RawTable{Columns: header, Rows: rows}
}

// ReadXLSX reads a worksheet whose first row is the header. Trailing empty
// cells that excelize trims are restored so every row matches the header width.
func ReadXLSX(r io.Reader, sheet string) (domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return domain.RawTable{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := rows[0]
	table := domain.RawTable{
		Columns: header,
		Rows:    make([][]string, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Source is a file on disk read with fixed options.
type Source struct {
	path string
	opts Options
}

// NewSource returns a Source for path.
func NewSource(path string, opts Options) *Source {
	return &Source{path: path, opts: opts}
}

// Name returns the file path.
func (s *Source) Name() string { return s.path }

// Load reads the file.
func (s *Source) Load(ctx context.Context) (domain.RawTable, error) {
	return Load(ctx, s.path, s.opts)
}
