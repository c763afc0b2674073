package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Observation is the published form of one normalized row.
type Observation struct {
	SeasonStartYear      int       `json:"season_start_year"`
	Row                  int       `json:"row"`
	Date                 *string   `json:"date"`
	Year                 int       `json:"year"`
	Month                int       `json:"month"`
	Day                  int       `json:"day"`
	Wdir                 string    `json:"wdir"`
	WindDirectionDegrees Direction `json:"wind_direction_degrees"`
	Wmax                 *float64  `json:"wmax"`
	Wavg                 *float64  `json:"wavg"`
	HNS                  *float64  `json:"hns"`
	HNW                  *float64  `json:"hnw"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewObservation flattens a normalized row for publication.
func NewObservation(row Row, seasonStartYear int) Observation {
	obs := Observation{
		SeasonStartYear:      seasonStartYear,
		Row:                  row.Index,
		Year:                 row.Year,
		Month:                row.Month,
		Day:                  row.Day,
		Wdir:                 row.Direction.Code,
		WindDirectionDegrees: row.Direction,
		Wmax:                 row.Wmax,
		Wavg:                 row.Wavg,
		HNS:                  row.HNS,
		HNW:                  row.HNW,
	}
	if row.Date != nil {
		s := row.DateString()
		obs.Date = &s
	}
	return obs
}

// SerializeRow marshals a row into an OutputEvent keyed by its date. Undated
// rows are keyed by their input position so they still land deterministically.
func SerializeRow(row Row, seasonStartYear int) (OutputEvent, error) {
	data, err := json.Marshal(NewObservation(row, seasonStartYear))
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize row %d: %w", row.Index, err)
	}
	key := row.DateString()
	if key == "" {
		key = "row-" + strconv.Itoa(row.Index)
	}
	return OutputEvent{
		Key:   []byte(key),
		Value: data,
		Headers: map[string]string{
			"season":     strconv.Itoa(seasonStartYear),
			"date_valid": strconv.FormatBool(row.Date != nil),
		},
	}, nil
}
