package chart

import "github.com/couchcryptid/mwac-vis/internal/domain"

// Field names as they appear in chart data and tooltips.
const (
	FieldDate     = "Date"
	FieldWindType = "Wind Type"
	FieldSpeed    = "Speed (mph)"
	FieldHNS      = domain.ColHNS
	FieldHNW      = domain.ColHNW
)

const (
	chartHeight    = 320
	containerWidth = "container"
)

// WindSpeedSpec plots the long-form wind series as one line per series with
// horizontal zoom and pan. Points without a valid date are left out.
func WindSpeedSpec(t domain.NormalizedTable) Spec {
	x := Channel{
		Field: FieldDate,
		Type:  Temporal,
		Axis:  &Axis{Title: "Date", Format: "%b %d", LabelAngle: -45},
	}
	y := Channel{
		Field: FieldSpeed,
		Type:  Quantitative,
		Axis:  &Axis{Title: FieldSpeed},
	}
	color := Channel{Field: FieldWindType, Type: Nominal}

	return Spec{
		Schema: SchemaURL,
		Title:  "Wind Speed Analysis",
		Width:  containerWidth,
		Height: chartHeight,
		Data:   &Data{Values: WindValues(t)},
		Mark:   &Mark{Type: "line"},
		Params: []Param{{
			Name:   "zoom",
			Select: Selection{Type: "interval", Encodings: []string{"x"}},
			Bind:   "scales",
		}},
		Encoding: &Encoding{
			X:     &x,
			Y:     &y,
			Color: &color,
			Tooltip: []Channel{
				{Field: FieldDate, Type: Temporal},
				{Field: FieldSpeed, Type: Quantitative},
				{Field: FieldWindType, Type: Nominal},
			},
		},
	}
}

// SnowTotalsSpec overlays HNS and HNW bars per day on a shared y scale,
// nudged apart so both stay visible.
func SnowTotalsSpec(t domain.NormalizedTable) Spec {
	tooltip := []Channel{
		{Field: FieldDate, Type: Temporal},
		{Field: FieldHNS, Type: Quantitative},
		{Field: FieldHNW, Type: Quantitative},
	}
	bar := func(color string, offset float64, y Channel) Spec {
		return Spec{
			Mark: &Mark{Type: "bar", Color: color, Opacity: 0.7, XOffset: offset},
			Encoding: &Encoding{
				X:       &Channel{Field: FieldDate, Type: Temporal, Title: "Date"},
				Y:       &y,
				Tooltip: tooltip,
			},
		}
	}

	return Spec{
		Schema: SchemaURL,
		Title:  "Snow Totals and Snow/Water Equivalent",
		Width:  containerWidth,
		Height: chartHeight,
		Data:   &Data{Values: SnowValues(t)},
		Layer: []Spec{
			bar("blue", -5, Channel{Field: FieldHNS, Type: Quantitative, Title: "Snow Totals (HNS)"}),
			bar("green", 5, Channel{Field: FieldHNW, Type: Quantitative}),
		},
		Resolve: &Resolve{Scale: map[string]string{"y": "shared"}},
	}
}

// WindValues renders dated long-form points as chart records.
func WindValues(t domain.NormalizedTable) []map[string]any {
	points := t.DatedWind()
	out := make([]map[string]any, 0, len(points))
	for _, p := range points {
		out = append(out, map[string]any{
			FieldDate:     p.Date.Format(domain.DateLayout),
			FieldWindType: p.Series,
			FieldSpeed:    optional(p.Speed),
		})
	}
	return out
}

// SnowValues renders dated wide rows as chart records.
func SnowValues(t domain.NormalizedTable) []map[string]any {
	rows := t.DatedRows()
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			FieldDate: r.DateString(),
			FieldHNS:  optional(r.HNS),
			FieldHNW:  optional(r.HNW),
		})
	}
	return out
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
