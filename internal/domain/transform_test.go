package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeason = 2023

func christmasRecord() Record {
	return Record{
		Month: 12,
		Day:   25,
		Wdir:  "NW",
		Wmax:  "45.2",
		Wavg:  "not_a_number",
		HNS:   "10",
		HNW:   "5",
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_ChristmasScenario(t *testing.T) {
	table, err := Normalize([]Record{christmasRecord()}, testSeason)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.True(t, row.Direction.Known)
	assert.Equal(t, 315, row.Direction.Degrees)
	assert.Equal(t, 2023, row.Year)
	require.NotNil(t, row.Date)
	assert.Equal(t, date(2023, time.December, 25), *row.Date)
	require.NotNil(t, row.Wmax)
	assert.Equal(t, 45.2, *row.Wmax)
	assert.Nil(t, row.Wavg)
	require.NotNil(t, row.HNS)
	assert.Equal(t, 10.0, *row.HNS)

	require.Len(t, table.Wind, 2)
	assert.Equal(t, SeriesWmax, table.Wind[0].Series)
	assert.Equal(t, date(2023, time.December, 25), *table.Wind[0].Date)
	assert.Equal(t, 45.2, *table.Wind[0].Speed)
	assert.Equal(t, SeriesWavg, table.Wind[1].Series)
	assert.Equal(t, date(2023, time.December, 25), *table.Wind[1].Date)
	assert.Nil(t, table.Wind[1].Speed)

	require.Len(t, table.Issues, 1)
	assert.Equal(t, IssueNumericCoercion, table.Issues[0].Kind)
	assert.Equal(t, ColWavg, table.Issues[0].Column)
	assert.Equal(t, "not_a_number", table.Issues[0].Value)
	assert.ErrorIs(t, table.Issues[0], ErrNumericCoercion)
}

func TestNormalize_DirectionMapping(t *testing.T) {
	tests := []struct {
		code     string
		expected any
		known    bool
	}{
		{"N", 0, true},
		{"NE", 45, true},
		{"E", 90, true},
		{"SE", 135, true},
		{"S", 180, true},
		{"SW", 225, true},
		{"W", 270, true},
		{"NW", 315, true},
		{"NNE", "NNE", false},
		{"nw", "nw", false},
		{"Calm", "Calm", false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := Record{Month: 1, Day: 10, Wdir: tt.code}
			table, err := Normalize([]Record{rec}, testSeason)
			require.NoError(t, err)

			dir := table.Rows[0].Direction
			assert.Equal(t, tt.known, dir.Known)
			assert.Equal(t, tt.code, dir.Code)
			assert.Equal(t, tt.expected, dir.Value())
		})
	}
}

func TestNormalize_UnknownDirectionIsReported(t *testing.T) {
	recs := []Record{
		{Month: 1, Day: 1, Wdir: "NNW"},
		{Month: 1, Day: 2, Wdir: ""},
		{Month: 1, Day: 3, Wdir: "S"},
	}
	table, err := Normalize(recs, testSeason)
	require.NoError(t, err)

	require.Len(t, table.Issues, 1)
	assert.Equal(t, 0, table.Issues[0].Row)
	assert.Equal(t, IssueInvalidDirection, table.Issues[0].Kind)
	assert.True(t, errors.Is(table.Issues[0], ErrInvalidDirectionCode))
	assert.Equal(t, "NNW", table.Rows[0].Direction.Value())
}

func TestNormalize_SeasonYear(t *testing.T) {
	for month := 1; month <= 12; month++ {
		rec := Record{Month: month, Day: 1, Wdir: "N"}
		table, err := Normalize([]Record{rec}, testSeason)
		require.NoError(t, err)

		want := testSeason + 1
		if month >= 11 {
			want = testSeason
		}
		assert.Equal(t, want, table.Rows[0].Year, "month %d", month)
		require.NotNil(t, table.Rows[0].Date, "month %d", month)
		assert.Equal(t, want, table.Rows[0].Date.Year(), "month %d", month)
	}
}

func TestNormalize_LeapDay(t *testing.T) {
	rec := Record{Month: 2, Day: 29, Wdir: "N", Wmax: "10", Wavg: "5"}

	t.Run("leap year is valid", func(t *testing.T) {
		// Season 2023-2024: February falls in 2024, a leap year.
		table, err := Normalize([]Record{rec}, 2023)
		require.NoError(t, err)
		require.NotNil(t, table.Rows[0].Date)
		assert.Equal(t, date(2024, time.February, 29), *table.Rows[0].Date)
		assert.Empty(t, table.Issues)
	})

	t.Run("common year is invalid", func(t *testing.T) {
		// Season 2022-2023: February falls in 2023.
		table, err := Normalize([]Record{rec}, 2022)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Nil(t, table.Rows[0].Date)
		assert.Equal(t, 2023, table.Rows[0].Year)

		require.Len(t, table.Issues, 1)
		assert.Equal(t, IssueInvalidDate, table.Issues[0].Kind)
		assert.Equal(t, "2023-02-29", table.Issues[0].Value)
		assert.ErrorIs(t, table.Issues[0], ErrInvalidDate)

		require.Len(t, table.Wind, 2)
		assert.Nil(t, table.Wind[0].Date)
		assert.Nil(t, table.Wind[1].Date)
		assert.Empty(t, table.DatedWind())
	})
}

func TestNormalize_InvalidDatePolicies(t *testing.T) {
	recs := []Record{
		{Month: 11, Day: 30, Wdir: "N", Wmax: "1", Wavg: "1"},
		{Month: 11, Day: 31, Wdir: "N", Wmax: "2", Wavg: "2"}, // November has 30 days
		{Month: 12, Day: 1, Wdir: "N", Wmax: "3", Wavg: "3"},
	}

	t.Run("keep", func(t *testing.T) {
		table, err := Normalize(recs, testSeason, WithInvalidDatePolicy(InvalidDateKeep))
		require.NoError(t, err)
		assert.Len(t, table.Rows, 3)
		assert.Len(t, table.Wind, 6)
		assert.Nil(t, table.Rows[1].Date)
		assert.Len(t, table.DatedRows(), 2)
		assert.Len(t, table.DatedWind(), 4)
	})

	t.Run("drop", func(t *testing.T) {
		table, err := Normalize(recs, testSeason, WithInvalidDatePolicy(InvalidDateDrop))
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 0, table.Rows[0].Index)
		assert.Equal(t, 2, table.Rows[1].Index)
		assert.Len(t, table.Wind, 4)
		require.Len(t, table.Issues, 1)
		assert.Equal(t, 1, table.Issues[0].Row)
	})

	t.Run("fail", func(t *testing.T) {
		_, err := Normalize(recs, testSeason, WithInvalidDatePolicy(InvalidDateFail))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDate)
		assert.Contains(t, err.Error(), "row 1")
	})
}

func TestNormalize_StrictSeason(t *testing.T) {
	recs := []Record{
		{Month: 4, Day: 30, Wdir: "N"},
		{Month: 7, Day: 4, Wdir: "N"},
	}

	table, err := Normalize(recs, testSeason)
	require.NoError(t, err)
	assert.Empty(t, table.Issues)

	table, err = Normalize(recs, testSeason, WithStrictSeason())
	require.NoError(t, err)
	require.Len(t, table.Issues, 1)
	assert.Equal(t, IssueOutOfSeason, table.Issues[0].Kind)
	assert.Equal(t, 1, table.Issues[0].Row)
	assert.ErrorIs(t, table.Issues[0], ErrOutOfSeason)
	// The year rule still applies and the row is kept.
	assert.Equal(t, 2024, table.Rows[1].Year)
	assert.Len(t, table.Rows, 2)
}

func TestNormalize_LongFormShape(t *testing.T) {
	recs := []Record{
		{Month: 11, Day: 15, Wdir: "N", Wmax: "10", Wavg: "4"},
		{Month: 12, Day: 1, Wdir: "E", Wmax: "x", Wavg: "7"},
		{Month: 1, Day: 3, Wdir: "??", Wmax: "", Wavg: ""},
		{Month: 3, Day: 2, Wdir: "W", Wmax: "22.5", Wavg: "11"},
	}
	table, err := Normalize(recs, testSeason)
	require.NoError(t, err)

	require.Len(t, table.Wind, 2*len(recs))
	for i := 0; i < len(table.Wind); i += 2 {
		wmax, wavg := table.Wind[i], table.Wind[i+1]
		assert.Equal(t, SeriesWmax, wmax.Series)
		assert.Equal(t, SeriesWavg, wavg.Series)
		assert.Equal(t, i/2, wmax.Row)
		assert.Equal(t, wmax.Row, wavg.Row)
		assert.Equal(t, wmax.Date, wavg.Date)
	}
}

func TestNormalize_PreservesRowCountAndOrder(t *testing.T) {
	recs := []Record{
		{Month: 3, Day: 1, Wdir: "N", Wmax: "bad", Wavg: "bad", HNS: "bad", HNW: "bad"},
		{Month: 11, Day: 31, Wdir: "X"},
		{Month: 0, Day: 0},
		{Month: 12, Day: 2, Wdir: "S"},
	}
	table, err := Normalize(recs, testSeason)
	require.NoError(t, err)

	require.Len(t, table.Rows, len(recs))
	for i, r := range table.Rows {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, recs[i].Month, r.Month)
		assert.Equal(t, recs[i].Day, r.Day)
	}
	// 4 coercions + 1 direction + 2 dates.
	assert.Len(t, table.Issues, 7)
	assert.LessOrEqual(t, len(table.Issues), len(recs)*len(RequiredColumns))

	counts := table.IssueCounts()
	assert.Equal(t, 4, counts[IssueNumericCoercion])
	assert.Equal(t, 1, counts[IssueInvalidDirection])
	assert.Equal(t, 2, counts[IssueInvalidDate])
}

func TestNormalize_Idempotent(t *testing.T) {
	recs := []Record{
		christmasRecord(),
		{Month: 2, Day: 30, Wdir: "SW", Wmax: "31", Wavg: "12", Cells: []string{"2", "30", "SW"}},
		{Month: 4, Day: 1, Wdir: "Q", Wmax: "n/a", Wavg: "3.5"},
	}

	first, err := Normalize(recs, testSeason)
	require.NoError(t, err)
	second, err := Normalize(recs, testSeason)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalize not idempotent (-first +second):\n%s", diff)
	}
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	recs := []Record{{Month: 12, Day: 1, Wdir: "N", Cells: []string{"12", "1", "N"}}}
	table, err := Normalize(recs, testSeason)
	require.NoError(t, err)

	recs[0].Cells[2] = "S"
	assert.Equal(t, "N", table.Rows[0].Cells[2])
}

func TestNormalize_Empty(t *testing.T) {
	table, err := Normalize(nil, testSeason)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Wind)
	assert.Empty(t, table.Issues)
	assert.Equal(t, testSeason, table.SeasonStartYear)
}

func TestParseTable(t *testing.T) {
	t.Run("missing columns are fatal", func(t *testing.T) {
		raw := RawTable{
			Columns: []string{"Month", "Day", "Wdir", "Wmax", "wavg"},
			Rows:    [][]string{{"12", "1", "N", "3", "2"}},
		}
		_, err := ParseTable(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingColumn)

		var mce *MissingColumnError
		require.ErrorAs(t, err, &mce)
		assert.Equal(t, []string{"Wavg", "HNS", "HNW"}, mce.Columns)
	})

	t.Run("reads cells by header name", func(t *testing.T) {
		raw := RawTable{
			Columns: []string{"Obs", "HNW", "HNS", "Wavg", "Wmax", "Wdir", "Day", "Month"},
			Rows: [][]string{
				{"am", "5", "10", " 12 ", "45.2", "NW", "25", "12"},
				{"pm", "", "", "", "", "", "7.0", "1.0"},
			},
		}
		recs, err := ParseTable(raw)
		require.NoError(t, err)
		require.Len(t, recs, 2)

		assert.Equal(t, Record{
			Month: 12, Day: 25, Wdir: "NW", Wmax: "45.2", Wavg: "12", HNS: "10", HNW: "5",
			Cells: []string{"am", "5", "10", " 12 ", "45.2", "NW", "25", "12"},
		}, recs[0])
		assert.Equal(t, 1, recs[1].Month)
		assert.Equal(t, 7, recs[1].Day)
	})

	t.Run("short rows read as blank", func(t *testing.T) {
		raw := RawTable{
			Columns: RequiredColumns,
			Rows:    [][]string{{"12", "3"}},
		}
		recs, err := ParseTable(raw)
		require.NoError(t, err)
		assert.Equal(t, "", recs[0].Wdir)
		assert.Equal(t, "", recs[0].HNW)
	})

	t.Run("unparsable month becomes invalid date", func(t *testing.T) {
		raw := RawTable{
			Columns: RequiredColumns,
			Rows:    [][]string{{"Dec", "3", "N", "1", "1", "0", "0"}},
		}
		table, err := NormalizeTable(raw, testSeason)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Rows[0].Month)
		assert.Nil(t, table.Rows[0].Date)
		assert.Equal(t, 1, table.IssueCounts()[IssueInvalidDate])
	})
}

func TestNormalizeTable_WideRecords(t *testing.T) {
	raw := RawTable{
		Columns: []string{"Month", "Day", "Wdir", "Wmax", "Wavg", "HNS", "HNW", "Notes"},
		Rows: [][]string{
			{"12", "25", "NW", "45.2", "not_a_number", "10", "5", "gusty"},
			{"2", "30", "Calm", "3", "1", "", "0.4", ""},
		},
	}
	table, err := NormalizeTable(raw, testSeason)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Month", "Day", "Wdir", "Wmax", "Wavg", "HNS", "HNW", "Notes",
		"Wind_Direction_Degrees", "Year", "Date",
	}, table.WideColumns())

	recs := table.WideRecords()
	require.Len(t, recs, 2)
	assert.Equal(t, []any{12, 25, "NW", 45.2, nil, 10.0, 5.0, "gusty", 315, 2023, "2023-12-25"}, recs[0])
	assert.Equal(t, []any{2, 30, "Calm", 3.0, 1.0, nil, 0.4, "", "Calm", 2024, nil}, recs[1])
}

func TestWideColumns_ReplacesExistingDerivedColumn(t *testing.T) {
	table := NormalizedTable{Columns: []string{"Year", "Month", "Day", "Wdir", "Wmax", "Wavg", "HNS", "HNW"}}
	assert.Equal(t, []string{
		"Year", "Month", "Day", "Wdir", "Wmax", "Wavg", "HNS", "HNW",
		"Wind_Direction_Degrees", "Date",
	}, table.WideColumns())
}

func TestParseInvalidDatePolicy(t *testing.T) {
	tests := []struct {
		in       string
		expected InvalidDatePolicy
		wantErr  bool
	}{
		{"", InvalidDateKeep, false},
		{"keep", InvalidDateKeep, false},
		{"DROP", InvalidDateDrop, false},
		{" fail ", InvalidDateFail, false},
		{"skip", InvalidDateKeep, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParseInvalidDatePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
			assert.Equal(t, tt.expected.String(), p.String())
		})
	}
}
