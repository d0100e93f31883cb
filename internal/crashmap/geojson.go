package crashmap

import (
	"github.com/couchcryptid/crash-map-service/internal/domain"
	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection converts records into GeoJSON point features, one per
// record in order. Coordinates are [lng, lat] as GeoJSON requires.
func FeatureCollection(d domain.Dataset) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range d {
		f := geojson.NewPointFeature([]float64{r.Longitude, r.Latitude})
		f.ID = domain.RecordID(r)
		f.SetProperty("fatalities", r.Fatalities)
		f.SetProperty("nature", r.Nature)
		f.SetProperty("type", r.Type)
		f.SetProperty("severity", r.Severity)
		f.SetProperty("post_code", r.PostCode)
		fc.AddFeature(f)
	}
	return fc
}
