// Package domain models daily MWAC weather and snowpack readings for one
// winter season and normalizes them for charting.
//
// # Data Source
//
// Readings arrive as a spreadsheet export (CSV or XLSX), one row per
// observation day. The header must contain these exact, case-sensitive columns:
//
//	Month  integer 1-12
//	Day    integer 1-31
//	Wdir   compass code: N, NE, E, SE, S, SW, W, NW
//	Wmax   maximum wind speed (gust), mph
//	Wavg   average wind speed, mph
//	HNS    height of new snow
//	HNW    height of new water (snow/water equivalent)
//
// Any other columns are carried through untouched. Spreadsheet exports often
// write integer columns as decimals ("12.0"); those are accepted for Month and Day.
//
// # Season Dates
//
// Rows carry no year. A season starts in November of the configured start year
// and runs into the spring of the following one:
//
//	Month 11, 12  ->  Year = start
//	any other     ->  Year = start + 1
//
// The rule is applied to every month. [WithStrictSeason] additionally flags
// May through October as out-of-season without changing the year.
//
// # Failure Kinds
//
// A missing required column is fatal ([ErrMissingColumn]). Everything else is
// row-scoped and recorded as a [RowIssue]: unknown direction codes are passed
// through unmapped, unparsable speeds and snow totals become nil, and invalid
// calendar dates leave Date nil (or drop/abort, see [InvalidDatePolicy]).
//
// # Long Form
//
// The wind chart needs one row per (day, series). [Normalize] melts Wmax and
// Wavg into [WindSpeedPoint] values, Wmax first, preserving input order.
package domain
