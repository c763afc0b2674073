package domain

import "encoding/json"

// directionDegrees maps the eight compass codes recorded in the Wdir column to
// degrees clockwise from north. Read-only after package init.
var directionDegrees = map[string]int{
	"N":  0,
	"NE": 45,
	"E":  90,
	"SE": 135,
	"S":  180,
	"SW": 225,
	"W":  270,
	"NW": 315,
}

// Direction is a wind direction code and, when the code is one of the eight
// compass points, its degree equivalent.
type Direction struct {
	Code    string
	Degrees int
	Known   bool
}

// DirectionDegrees looks up the degree value of a compass code.
func DirectionDegrees(code string) (int, bool) {
	deg, ok := directionDegrees[code]
	return deg, ok
}

// MapDirection resolves a raw Wdir value. Codes outside the table are kept
// as-is with Known=false.
func MapDirection(code string) Direction {
	deg, ok := directionDegrees[code]
	return Direction{Code: code, Degrees: deg, Known: ok}
}

// Missing reports whether no direction was recorded at all.
func (d Direction) Missing() bool {
	return d.Code == ""
}

// Value is the Wind_Direction_Degrees cell: the degrees for a known code, the
// original code for an unknown one, nil when nothing was recorded.
func (d Direction) Value() any {
	switch {
	case d.Known:
		return d.Degrees
	case d.Missing():
		return nil
	default:
		return d.Code
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value())
}
