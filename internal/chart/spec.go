// Package chart declares the dashboard's charts as Vega-Lite specifications.
// The browser renders them with vega-embed; this package only shapes the data
// and maps fields to channels.
package chart

// SchemaURL is the Vega-Lite schema every top-level spec declares.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Vega-Lite field types.
const (
	Temporal     = "temporal"
	Quantitative = "quantitative"
	Nominal      = "nominal"
)

// Spec is a (possibly layered) Vega-Lite view.
type Spec struct {
	Schema   string    `json:"$schema,omitempty"`
	Title    string    `json:"title,omitempty"`
	Width    any       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Data     *Data     `json:"data,omitempty"`
	Mark     *Mark     `json:"mark,omitempty"`
	Params   []Param   `json:"params,omitempty"`
	Encoding *Encoding `json:"encoding,omitempty"`
	Layer    []Spec    `json:"layer,omitempty"`
	Resolve  *Resolve  `json:"resolve,omitempty"`
}

// Data holds inline records.
type Data struct {
	Values []map[string]any `json:"values"`
}

// Mark is the graphical primitive of a view.
type Mark struct {
	Type    string  `json:"type"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	XOffset float64 `json:"xOffset,omitempty"`
}

// Encoding maps data fields to visual channels.
type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Channel binds one field to a channel.
type Channel struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Axis  *Axis  `json:"axis,omitempty"`
}

// Axis customizes a positional channel's axis.
type Axis struct {
	Title      string `json:"title,omitempty"`
	Format     string `json:"format,omitempty"`
	LabelAngle int    `json:"labelAngle,omitempty"`
}

// Param declares an interactive selection.
type Param struct {
	Name   string    `json:"name"`
	Select Selection `json:"select"`
	Bind   string    `json:"bind,omitempty"`
}

// Selection describes how a param is populated.
type Selection struct {
	Type      string   `json:"type"`
	Encodings []string `json:"encodings,omitempty"`
}

// Resolve controls scale sharing between layers.
type Resolve struct {
	Scale map[string]string `json:"scale,omitempty"`
}
