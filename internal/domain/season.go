package domain

import "time"

// seasonTurnMonth is the first month recorded in the season start year.
// November and December belong to the start year, every later month to the next.
const seasonTurnMonth = 11

// SeasonYear assigns the calendar year of a reading from its month.
func SeasonYear(month, seasonStartYear int) int {
	if month >= seasonTurnMonth {
		return seasonStartYear
	}
	return seasonStartYear + 1
}

// InSeason reports whether month falls in the November through April window
// the dashboard is built for.
func InSeason(month int) bool {
	return month == 11 || month == 12 || (month >= 1 && month <= 4)
}

// ComposeDate builds a UTC calendar date, rejecting triples that time.Date
// would silently roll over (Feb 30, Apr 31, Feb 29 of a common year).
func ComposeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
