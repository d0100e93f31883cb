package mapview

import (
	"encoding/json"
	"io"
	"strings"
	"text/template"

	"github.com/google/uuid"
)

// AssetKind distinguishes stylesheet links from script includes.
type AssetKind int

const (
	AssetCSS AssetKind = iota
	AssetJS
)

// Asset is an external stylesheet or script the page header must load.
type Asset struct {
	Kind AssetKind
	URL  string
}

// Element is a renderable piece of a Leaflet map.
type Element interface {
	// Name is the JavaScript variable the element is bound to.
	Name() string
	// Assets lists the header includes the element depends on.
	Assets() []Asset
	// WriteScript writes the JavaScript that creates the element and
	// attaches it to the variable named parent.
	WriteScript(w io.Writer, parent string) error
}

// LayerOptions controls how a layer appears in the map and its layer control.
type LayerOptions struct {
	Title   string // label in the layer control
	Show    bool   // visible when the page loads
	Control bool   // listed in the layer control
	Overlay bool   // checkbox entry; base layers are radio entries
}

// Layer is an Element that can be toggled through a LayerControl.
type Layer interface {
	Element
	Options() LayerOptions
}

// newName returns a unique JavaScript identifier with the given prefix.
func newName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// toJSON encodes v for direct use inside a script. encoding/json escapes
// <, > and & so the output can never close the surrounding script tag.
func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var scriptFuncs = template.FuncMap{
	"json": toJSON,
}

func mustScript(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(scriptFuncs).Parse(text))
}
