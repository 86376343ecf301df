// Package geo places a family's birthplaces on a map.
//
// A [Geocoder] resolves (country, city) pairs through the Mapbox forward
// geocoding v6 API. Results, including misses, are cached through
// [cache.Cache] so repeated map requests do not hit the API. Lookups run
// concurrently, bounded and throttled.
//
// [Geocoder.Locate] turns people into a GeoJSON [FeatureCollection] with one
// point per person with a known birthplace, plus the bounding box and
// centroid a map view needs to frame the points.
package geo
