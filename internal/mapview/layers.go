package mapview

import (
	"fmt"
	"io"
)

const (
	markerClusterJS         = "https://cdnjs.cloudflare.com/ajax/libs/leaflet.markercluster/1.5.3/leaflet.markercluster.js"
	markerClusterCSS        = "https://cdnjs.cloudflare.com/ajax/libs/leaflet.markercluster/1.5.3/MarkerCluster.css"
	markerClusterDefaultCSS = "https://cdnjs.cloudflare.com/ajax/libs/leaflet.markercluster/1.5.3/MarkerCluster.Default.css"
	leafletHeatJS           = "https://cdn.jsdelivr.net/npm/leaflet.heat@0.2.0/dist/leaflet-heat.js"
)

// TileLayer is a background raster tile source.
type TileLayer struct {
	name        string
	opts        LayerOptions
	URL         string
	Attribution string
	MaxZoom     int
}

// NewTileLayer creates a base tile layer. Tile layers are always base layers
// and are always listed in the layer control.
func NewTileLayer(title, url, attribution string, maxZoom int, show bool) *TileLayer {
	return &TileLayer{
		name:        newName("tile_layer"),
		opts:        LayerOptions{Title: title, Show: show, Control: true},
		URL:         url,
		Attribution: attribution,
		MaxZoom:     maxZoom,
	}
}

func (t *TileLayer) Name() string          { return t.name }
func (t *TileLayer) Assets() []Asset       { return nil }
func (t *TileLayer) Options() LayerOptions { return t.opts }

var tileLayerScript = mustScript("tile_layer", `
var {{ .Name }} = L.tileLayer({{ json .URL }}, {{ json .Options }});
{{- if .Show }}
{{ .Name }}.addTo({{ .Parent }});
{{- end }}`)

type tileOptions struct {
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
	MinZoom     int    `json:"minZoom"`
	NoWrap      bool   `json:"noWrap"`
}

func (t *TileLayer) WriteScript(w io.Writer, parent string) error {
	if t.URL == "" {
		return fmt.Errorf("tile layer %q: empty URL", t.opts.Title)
	}
	return tileLayerScript.Execute(w, struct {
		Name, Parent, URL string
		Options           tileOptions
		Show              bool
	}{
		Name:    t.name,
		Parent:  parent,
		URL:     t.URL,
		Options: tileOptions{Attribution: t.Attribution, MaxZoom: t.MaxZoom},
		Show:    t.opts.Show,
	})
}

// markerSet is the shared body of FeatureGroup and MarkerCluster.
type markerSet struct {
	name    string
	opts    LayerOptions
	markers []*CircleMarker
}

func (s *markerSet) Name() string          { return s.name }
func (s *markerSet) Options() LayerOptions { return s.opts }

// Add appends a marker to the set.
func (s *markerSet) Add(m *CircleMarker) {
	s.markers = append(s.markers, m)
}

// Markers returns the markers in insertion order.
func (s *markerSet) Markers() []*CircleMarker {
	return s.markers
}

var markerSetScript = mustScript("marker_set", `
var {{ .Name }} = {{ .Constructor }};`)

var attachScript = mustScript("attach", `
{{ .Name }}.addTo({{ .Parent }});`)

func (s *markerSet) writeScript(w io.Writer, parent, constructor string) error {
	if err := markerSetScript.Execute(w, struct{ Name, Constructor string }{s.name, constructor}); err != nil {
		return err
	}
	for _, m := range s.markers {
		if err := m.WriteScript(w, s.name); err != nil {
			return err
		}
	}
	if !s.opts.Show {
		return nil
	}
	return attachScript.Execute(w, struct{ Name, Parent string }{s.name, parent})
}

// FeatureGroup is a flat, toggleable group of markers.
type FeatureGroup struct {
	markerSet
}

// NewFeatureGroup creates an empty overlay group.
func NewFeatureGroup(title string, show, control bool) *FeatureGroup {
	return &FeatureGroup{markerSet{
		name: newName("feature_group"),
		opts: LayerOptions{Title: title, Show: show, Control: control, Overlay: true},
	}}
}

func (g *FeatureGroup) Assets() []Asset { return nil }

func (g *FeatureGroup) WriteScript(w io.Writer, parent string) error {
	return g.writeScript(w, parent, "L.featureGroup({})")
}

// MarkerCluster groups nearby markers into a count badge until zoomed in.
type MarkerCluster struct {
	markerSet
}

// NewMarkerCluster creates an empty clustering overlay.
func NewMarkerCluster(title string, show, control bool) *MarkerCluster {
	return &MarkerCluster{markerSet{
		name: newName("marker_cluster"),
		opts: LayerOptions{Title: title, Show: show, Control: control, Overlay: true},
	}}
}

func (c *MarkerCluster) Assets() []Asset {
	return []Asset{
		{Kind: AssetJS, URL: markerClusterJS},
		{Kind: AssetCSS, URL: markerClusterCSS},
		{Kind: AssetCSS, URL: markerClusterDefaultCSS},
	}
}

func (c *MarkerCluster) WriteScript(w io.Writer, parent string) error {
	return c.writeScript(w, parent, "L.markerClusterGroup({})")
}

// HeatMap is a density layer computed in the browser from raw points.
type HeatMap struct {
	name       string
	opts       LayerOptions
	Data       [][2]float64
	MinOpacity float64
	Radius     int
	Blur       int
	MaxZoom    int
}

// NewHeatMap creates a heat map overlay over [lat, lng] points.
func NewHeatMap(title string, data [][2]float64, minOpacity float64, show, control bool) *HeatMap {
	if data == nil {
		data = [][2]float64{}
	}
	return &HeatMap{
		name:       newName("heat_map"),
		opts:       LayerOptions{Title: title, Show: show, Control: control, Overlay: true},
		Data:       data,
		MinOpacity: minOpacity,
		Radius:     25,
		Blur:       15,
		MaxZoom:    18,
	}
}

func (h *HeatMap) Name() string          { return h.name }
func (h *HeatMap) Options() LayerOptions { return h.opts }

func (h *HeatMap) Assets() []Asset {
	return []Asset{{Kind: AssetJS, URL: leafletHeatJS}}
}

type heatOptions struct {
	MinOpacity float64 `json:"minOpacity"`
	MaxZoom    int     `json:"maxZoom"`
	Radius     int     `json:"radius"`
	Blur       int     `json:"blur"`
}

var heatMapScript = mustScript("heat_map", `
var {{ .Name }} = L.heatLayer({{ json .Data }}, {{ json .Options }});
{{- if .Show }}
{{ .Name }}.addTo({{ .Parent }});
{{- end }}`)

func (h *HeatMap) WriteScript(w io.Writer, parent string) error {
	return heatMapScript.Execute(w, struct {
		Name, Parent string
		Data         [][2]float64
		Options      heatOptions
		Show         bool
	}{
		Name:    h.name,
		Parent:  parent,
		Data:    h.Data,
		Options: heatOptions{MinOpacity: h.MinOpacity, MaxZoom: h.MaxZoom, Radius: h.Radius, Blur: h.Blur},
		Show:    h.opts.Show,
	})
}
