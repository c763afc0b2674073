package domain

import (
	"math"
	"strconv"
	"strings"
)

// CoerceFloat parses a numeric cell. Blank and NaN cells are missing and
// yield (nil, true). Text that is not a finite number yields (nil, false).
func CoerceFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	if math.IsNaN(v) {
		return nil, true
	}
	if math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// parseWholeNumber parses integer text, also accepting integral decimals such
// as "12.0" that spreadsheet exports write for integer columns.
func parseWholeNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
