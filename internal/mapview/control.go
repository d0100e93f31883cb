package mapview

import (
	"io"
)

// LayerControl is the widget that toggles layers on and off. Base layers are
// listed as radio buttons, overlays as checkboxes.
type LayerControl struct {
	name      string
	Position  string
	Collapsed bool
}

// NewLayerControl creates a collapsed control in the top right corner.
func NewLayerControl() *LayerControl {
	return &LayerControl{
		name:      newName("layer_control"),
		Position:  "topright",
		Collapsed: true,
	}
}

func (c *LayerControl) Name() string    { return c.name }
func (c *LayerControl) Assets() []Asset { return nil }

// controlEntry pairs a control label with the layer variable it toggles.
type controlEntry struct {
	Title string
	Var   string
}

var layerControlScript = mustScript("layer_control", `
var {{ .Name }}_layers = {
    base_layers: {
{{- range .Base }}
        {{ json .Title }}: {{ .Var }},
{{- end }}
    },
    overlays: {
{{- range .Overlays }}
        {{ json .Title }}: {{ .Var }},
{{- end }}
    },
};
let {{ .Name }} = L.control.layers(
    {{ .Name }}_layers.base_layers,
    {{ .Name }}_layers.overlays,
    {{ json .Options }}
).addTo({{ .Parent }});`)

type controlOptions struct {
	Position   string `json:"position"`
	Collapsed  bool   `json:"collapsed"`
	AutoZIndex bool   `json:"autoZIndex"`
}

// WriteScript renders a control that lists no layers. Map.Render uses
// writeFor so the control sees every layer attached to the map.
func (c *LayerControl) WriteScript(w io.Writer, parent string) error {
	return c.writeFor(w, parent, nil)
}

func (c *LayerControl) writeFor(w io.Writer, parent string, layers []Layer) error {
	var base, overlays []controlEntry
	for _, l := range layers {
		opts := l.Options()
		if !opts.Control {
			continue
		}
		entry := controlEntry{Title: opts.Title, Var: l.Name()}
		if opts.Overlay {
			overlays = append(overlays, entry)
		} else {
			base = append(base, entry)
		}
	}

	return layerControlScript.Execute(w, struct {
		Name, Parent   string
		Base, Overlays []controlEntry
		Options        controlOptions
	}{
		Name:     c.name,
		Parent:   parent,
		Base:     base,
		Overlays: overlays,
		Options:  controlOptions{Position: c.Position, Collapsed: c.Collapsed, AutoZIndex: true},
	})
}
