package cache

import "strings"

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey names a positioned graph computed from the unpositioned
	// graph with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey names a rendered file (SVG, DOT) of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
	// GeocodeKey names a forward geocoding result for a place.
	GeocodeKey(country, city string) string
}

// LayoutKeyOpts are the layout settings that change the result.
type LayoutKeyOpts struct {
	NodeSpacing      float64 `json:"node_spacing"`
	RankSpacing      float64 `json:"rank_spacing"`
	ComponentSpacing float64 `json:"component_spacing"`
	LooseColumns     int     `json:"loose_columns"`
	Quality          string  `json:"quality"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Title    string `json:"title,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// GeocodeKey normalises case and surrounding space so "NL"/"Utrecht " and
// "nl"/"utrecht" share an entry.
func (DefaultKeyer) GeocodeKey(country, city string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return hashKey("geocode", norm(country), norm(city))
}
