package crashmap

import (
	"github.com/couchcryptid/crash-map-service/internal/domain"
	"github.com/couchcryptid/crash-map-service/internal/mapview"
)

// Base layer titles.
const (
	StreetTilesTitle = "Open Street Map"
	MonoTilesTitle   = "Black/White Map"
)

// TileSource describes a raster tile provider.
type TileSource struct {
	URL         string
	Attribution string
	MaxZoom     int
}

// View is the initial framing and background of the map.
type View struct {
	Center      [2]float64 // [lat, lng]
	Zoom        int
	Width       string
	Height      string
	StreetTiles TileSource
	MonoTiles   TileSource
}

// DefaultView centres on the Sunshine Coast with OpenStreetMap and Stamen
// Toner backgrounds.
func DefaultView() View {
	return View{
		Center: [2]float64{-26.52, 153.09},
		Zoom:   13,
		Width:  "80%",
		Height: "80%",
		StreetTiles: TileSource{
			URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			MaxZoom:     19,
		},
		MonoTiles: TileSource{
			URL:         "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}{r}.png",
			Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> &copy; <a href="https://openmaptiles.org/">OpenMapTiles</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			MaxZoom:     20,
		},
	}
}

// Compose builds the fatal-crash map: two base tile layers (street shown,
// monochrome hidden), the marker, cluster and heat layers in that order, and
// a layer control. The map has no default tiles of its own.
func Compose(view View, fatal domain.Dataset) *mapview.Map {
	m := mapview.New(mapview.Options{
		Center:       view.Center,
		Zoom:         view.Zoom,
		Width:        view.Width,
		Height:       view.Height,
		ControlScale: true,
	})

	m.AddLayer(newTiles(StreetTilesTitle, view.StreetTiles, true))
	m.AddLayer(newTiles(MonoTilesTitle, view.MonoTiles, false))

	m.AddLayer(MarkerLayer(fatal))
	m.AddLayer(ClusterLayer(fatal))
	m.AddLayer(HeatLayer(fatal))

	m.SetControl(mapview.NewLayerControl())
	return m
}

func newTiles(title string, src TileSource, show bool) *mapview.TileLayer {
	return mapview.NewTileLayer(title, src.URL, src.Attribution, src.MaxZoom, show)
}
