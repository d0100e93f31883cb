// Package mapview renders interactive Leaflet maps as page fragments.
//
// A Map collects layers and at most one layer control, then renders three
// independent fragments: the map container markup, the head includes
// (stylesheets, scripts, sizing style) and the body script that builds the
// map in the browser. Callers inject the fragments into their own page
// template.
package mapview

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

const (
	leafletJS  = "https://cdn.jsdelivr.net/npm/leaflet@1.9.4/dist/leaflet.js"
	leafletCSS = "https://cdn.jsdelivr.net/npm/leaflet@1.9.4/dist/leaflet.css"
)

// sizeRe accepts CSS lengths such as "80%" or "600px".
var sizeRe = regexp.MustCompile(`^\d+(\.\d+)?(%|px)$`)

// Options configures the initial map view.
type Options struct {
	Center       [2]float64 // [lat, lng]
	Zoom         int
	Width        string // CSS length
	Height       string // CSS length
	ControlScale bool
}

// Fragments are the three pieces of a rendered map. They are already
// serialized and must be inserted into a page without further escaping.
type Fragments struct {
	HTML   template.HTML // map container, goes in <body>
	Header template.HTML // includes and style, goes in <head>
	Script template.JS   // goes inside a <script> element at the end of <body>
}

// Map is a Leaflet map with an ordered list of layers.
type Map struct {
	name    string
	opts    Options
	layers  []Layer
	control *LayerControl
}

// New creates a map without any tile layer; base tiles are added explicitly.
func New(opts Options) *Map {
	return &Map{name: newName("map"), opts: opts}
}

func (m *Map) Name() string { return m.name }

// Options returns the view configuration.
func (m *Map) Options() Options { return m.opts }

// AddLayer attaches a layer. Layers render in the order they are added.
func (m *Map) AddLayer(l Layer) *Map {
	m.layers = append(m.layers, l)
	return m
}

// SetControl attaches the layer control, replacing any previous one.
func (m *Map) SetControl(c *LayerControl) *Map {
	m.control = c
	return m
}

// Layers returns the attached layers in order.
func (m *Map) Layers() []Layer { return m.layers }

// BaseLayers returns the attached tile layers, in order.
func (m *Map) BaseLayers() []Layer {
	return m.filterLayers(false)
}

// Overlays returns the attached data layers, in order.
func (m *Map) Overlays() []Layer {
	return m.filterLayers(true)
}

// Control returns the layer control, or nil.
func (m *Map) Control() *LayerControl { return m.control }

func (m *Map) filterLayers(overlay bool) []Layer {
	var out []Layer
	for _, l := range m.layers {
		if l.Options().Overlay == overlay {
			out = append(out, l)
		}
	}
	return out
}

var mapScript = mustScript("map", `
var {{ .Name }} = L.map({{ json .Name }}, {{ json .Options }});
{{- if .ControlScale }}
L.control.scale().addTo({{ .Name }});
{{- end }}`)

type leafletMapOptions struct {
	Center        [2]float64 `json:"center"`
	Zoom          int        `json:"zoom"`
	ZoomControl   bool       `json:"zoomControl"`
	PreferCanvas  bool       `json:"preferCanvas"`
	WorldCopyJump bool       `json:"worldCopyJump"`
}

// Render serializes the map into its three fragments.
func (m *Map) Render() (Fragments, error) {
	if !sizeRe.MatchString(m.opts.Width) {
		return Fragments{}, fmt.Errorf("invalid map width %q", m.opts.Width)
	}
	if !sizeRe.MatchString(m.opts.Height) {
		return Fragments{}, fmt.Errorf("invalid map height %q", m.opts.Height)
	}

	var script bytes.Buffer
	err := mapScript.Execute(&script, struct {
		Name         string
		Options      leafletMapOptions
		ControlScale bool
	}{
		Name: m.name,
		Options: leafletMapOptions{
			Center:       m.opts.Center,
			Zoom:         m.opts.Zoom,
			ZoomControl:  true,
			PreferCanvas: true,
		},
		ControlScale: m.opts.ControlScale,
	})
	if err != nil {
		return Fragments{}, fmt.Errorf("render map: %w", err)
	}

	for _, l := range m.layers {
		if err := l.WriteScript(&script, m.name); err != nil {
			return Fragments{}, fmt.Errorf("render layer %s: %w", l.Name(), err)
		}
	}
	if m.control != nil {
		if err := m.control.writeFor(&script, m.name, m.layers); err != nil {
			return Fragments{}, fmt.Errorf("render layer control: %w", err)
		}
	}
	script.WriteString("\n")

	return Fragments{
		HTML:   template.HTML(fmt.Sprintf(`<div class="crash-map" id="%s"></div>`, m.name)), //nolint:gosec // name is generated
		Header: m.header(),
		Script: template.JS(script.String()), //nolint:gosec // values are JSON-encoded
	}, nil
}

func (m *Map) header() template.HTML {
	assets := []Asset{
		{Kind: AssetJS, URL: leafletJS},
		{Kind: AssetCSS, URL: leafletCSS},
	}
	for _, l := range m.layers {
		assets = append(assets, l.Assets()...)
	}
	if m.control != nil {
		assets = append(assets, m.control.Assets()...)
	}

	var b strings.Builder
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no" />` + "\n")
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		switch a.Kind {
		case AssetCSS:
			fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\"/>\n", html.EscapeString(a.URL))
		case AssetJS:
			fmt.Fprintf(&b, "<script src=\"%s\"></script>\n", html.EscapeString(a.URL))
		}
	}
	fmt.Fprintf(&b, "<style>#%s { position: relative; width: %s; height: %s; left: 0%%; top: 0%%; }</style>\n",
		m.name, m.opts.Width, m.opts.Height)

	return template.HTML(b.String()) //nolint:gosec // sizes validated, URLs escaped
}
