// Package crashmap turns a fatal-crash dataset into a layered Leaflet map.
package crashmap

import (
	"fmt"

	"github.com/couchcryptid/crash-map-service/internal/domain"
	"github.com/couchcryptid/crash-map-service/internal/mapview"
)

// Layer titles as shown in the layer control.
const (
	MarkerLayerTitle  = "Fatal Crashes"
	ClusterLayerTitle = "Clustered Markers"
	HeatLayerTitle    = "Heat Map"
)

// Marker appearance. The fill is translucent so dense areas stay readable
// when zoomed out.
const (
	markerRadius  = 10
	markerOpacity = 0.25
	markerColor   = "red"

	heatMinOpacity = 0.5
)

var fatalStyle = mapview.CircleStyle{
	Radius:      markerRadius,
	Color:       markerColor,
	Fill:        true,
	FillColor:   markerColor,
	Opacity:     markerOpacity,
	FillOpacity: markerOpacity,
}

// newFatalMarker builds the circle marker for one crash.
func newFatalMarker(r domain.CrashRecord) *mapview.CircleMarker {
	return mapview.NewCircleMarker(
		[2]float64{r.Latitude, r.Longitude},
		fatalStyle,
		fmt.Sprintf("%d Dead", r.Fatalities),
		r.Nature,
	)
}

// MarkerLayer returns a visible, toggleable group with one marker per record.
func MarkerLayer(d domain.Dataset) *mapview.FeatureGroup {
	g := mapview.NewFeatureGroup(MarkerLayerTitle, true, true)
	for _, r := range d {
		g.Add(newFatalMarker(r))
	}
	return g
}

// ClusterLayer returns a hidden, toggleable cluster group with one marker per record.
func ClusterLayer(d domain.Dataset) *mapview.MarkerCluster {
	c := mapview.NewMarkerCluster(ClusterLayerTitle, false, true)
	for _, r := range d {
		c.Add(newFatalMarker(r))
	}
	return c
}

// HeatLayer returns a hidden, toggleable heat map over the record coordinates.
func HeatLayer(d domain.Dataset) *mapview.HeatMap {
	return mapview.NewHeatMap(HeatLayerTitle, d.Coordinates(), heatMinOpacity, false, true)
}
