package export_test

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/mwac-vis/internal/adapter/export"
	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testTable(t *testing.T) domain.NormalizedTable {
	t.Helper()
	table, err := domain.NormalizeTable(domain.RawTable{
		Columns: []string{"Month", "Day", "Wdir", "Wmax", "Wavg", "HNS", "HNW"},
		Rows: [][]string{
			{"12", "25", "NW", "45.2", "not_a_number", "10", "5"},
			{"2", "30", "Calm", "3", "1", "", "0.4"},
		},
	}, 2023)
	require.NoError(t, err)
	return table
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, testTable(t)))

	expected := "Month,Day,Wdir,Wmax,Wavg,HNS,HNW,Wind_Direction_Degrees,Year,Date\n" +
		"12,25,NW,45.2,,10,5,315,2023,2023-12-25\n" +
		"2,30,Calm,3,1,,0.4,Calm,2024,\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteLongCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteLongCSV(&buf, testTable(t)))

	expected := "Date,Wind Type,Speed (mph)\n" +
		"2023-12-25,Wmax,45.2\n" +
		"2023-12-25,Wavg,\n" +
		",Wmax,3\n" +
		",Wavg,1\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, domain.NormalizedTable{}))
	assert.Equal(t, "Month,Day,Wdir,Wmax,Wavg,HNS,HNW,Wind_Direction_Degrees,Year,Date\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, testTable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetNormalized, export.SheetWind}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Month", cell(export.SheetNormalized, "A1"))
	assert.Equal(t, "Date", cell(export.SheetNormalized, "J1"))
	assert.Equal(t, "45.2", cell(export.SheetNormalized, "D2"))
	assert.Empty(t, cell(export.SheetNormalized, "E2"))
	assert.Equal(t, "315", cell(export.SheetNormalized, "H2"))
	assert.Equal(t, "2023-12-25", cell(export.SheetNormalized, "J2"))
	assert.Equal(t, "Calm", cell(export.SheetNormalized, "H3"))
	assert.Empty(t, cell(export.SheetNormalized, "J3"))

	assert.Equal(t, "Wind Type", cell(export.SheetWind, "B1"))
	assert.Equal(t, "Wmax", cell(export.SheetWind, "B2"))
	assert.Equal(t, "Wavg", cell(export.SheetWind, "B3"))
	assert.Empty(t, cell(export.SheetWind, "C3"))

	rows, err := f.GetRows(export.SheetWind)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}
