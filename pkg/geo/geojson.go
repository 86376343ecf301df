package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// NewFeature returns a point feature at lng, lat carrying props.
func NewFeature(lng, lat float64, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lng, lat})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// points collects the point geometries of fs.
func points(fs []*geojson.Feature) orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, len(fs))
	for _, f := range fs {
		if p, ok := f.Geometry.(orb.Point); ok {
			mp = append(mp, p)
		}
	}
	return mp
}

// BBox returns [minLng, minLat, maxLng, maxLat] of the point features, or
// nil when there are none.
func BBox(fs []*geojson.Feature) geojson.BBox {
	mp := points(fs)
	if len(mp) == 0 {
		return nil
	}
	return geojson.NewBBox(mp.Bound())
}

// Centroid returns the mean position of the point features. ok is false
// when there are none.
func Centroid(fs []*geojson.Feature) (c orb.Point, ok bool) {
	mp := points(fs)
	if len(mp) == 0 {
		return c, false
	}
	c, _ = planar.CentroidArea(mp)
	return c, true
}
