package mapview

import (
	"html"
	"io"
)

// CircleMarker is a fixed-radius circle drawn at a coordinate.
type CircleMarker struct {
	name     string
	Location [2]float64
	Style    CircleStyle
	Tooltip  string // shown on hover, plain text
	Popup    string // shown on click, plain text
}

// CircleStyle holds the Leaflet path options of a circle marker.
type CircleStyle struct {
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Fill        bool    `json:"fill"`
	FillColor   string  `json:"fillColor"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// NewCircleMarker creates a circle marker at [lat, lng].
func NewCircleMarker(location [2]float64, style CircleStyle, tooltip, popup string) *CircleMarker {
	return &CircleMarker{
		name:     newName("circle_marker"),
		Location: location,
		Style:    style,
		Tooltip:  tooltip,
		Popup:    popup,
	}
}

func (c *CircleMarker) Name() string { return c.name }

func (c *CircleMarker) Assets() []Asset { return nil }

var circleMarkerScript = mustScript("circle_marker", `
var {{ .Name }} = L.circleMarker({{ json .Location }}, {{ json .Style }}).addTo({{ .Parent }});
{{- if .Tooltip }}
{{ .Name }}.bindTooltip({{ json .Tooltip }}, {"sticky": true});
{{- end }}
{{- if .Popup }}
{{ .Name }}.bindPopup({{ json .Popup }}, {"maxWidth": "100%"});
{{- end }}`)

func (c *CircleMarker) WriteScript(w io.Writer, parent string) error {
	// Leaflet treats tooltip and popup strings as HTML.
	return circleMarkerScript.Execute(w, struct {
		Name     string
		Parent   string
		Location [2]float64
		Style    CircleStyle
		Tooltip  string
		Popup    string
	}{
		Name:     c.name,
		Parent:   parent,
		Location: c.Location,
		Style:    c.Style,
		Tooltip:  html.EscapeString(c.Tooltip),
		Popup:    html.EscapeString(c.Popup),
	})
}
