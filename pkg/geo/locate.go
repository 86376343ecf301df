package geo

import (
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stamboom/pkg/family"
)

// Map is the birthplace map of a family.
type Map struct {
	Collection *geojson.FeatureCollection `json:"collection"`
	// Centroid is [lng, lat], nil when no birthplace resolved.
	Centroid *orb.Point `json:"centroid,omitempty"`
	// Unresolved lists places that were unknown or failed to resolve.
	Unresolved []Place `json:"unresolved,omitempty"`
}

// Places returns the distinct birthplaces of people with both a birth city
// and a birth country, in first-seen order.
func Places(people []family.Person) []Place {
	seen := make(map[Place]struct{})
	var out []Place
	for _, p := range people {
		if p.BirthCity == "" || p.BirthCountry == "" {
			continue
		}
		pl := Place{Country: p.BirthCountry, City: p.BirthCity}
		if _, ok := seen[pl]; ok {
			continue
		}
		seen[pl] = struct{}{}
		out = append(out, pl)
	}
	return out
}

// Locate resolves every birthplace and returns one feature per person born
// in a resolved place. A place that fails is logged and listed in
// Unresolved; only cancellation fails the whole call.
func (g *Geocoder) Locate(ctx context.Context, people []family.Person) (Map, error) {
	places := Places(people)
	found := make(map[Place]*Location, len(places))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for _, pl := range places {
		eg.Go(func() error {
			loc, err := g.Geocode(egCtx, pl)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				g.logger.Warn("could not resolve birthplace", "place", pl.String(), "err", err)
			}
			mu.Lock()
			found[pl] = loc
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Map{}, err
	}

	m := Map{Collection: geojson.NewFeatureCollection()}
	for _, pl := range places {
		if found[pl] == nil {
			m.Unresolved = append(m.Unresolved, pl)
		}
	}
	for _, p := range people {
		loc := found[Place{Country: p.BirthCountry, City: p.BirthCity}]
		if loc == nil {
			continue
		}
		m.Collection.Append(NewFeature(loc.Lng, loc.Lat, map[string]any{
			"name_preferred": loc.Name,
			"person_id":      p.ID,
			"person":         p.FullName(),
		}))
	}
	m.Collection.BBox = BBox(m.Collection.Features)
	if c, ok := Centroid(m.Collection.Features); ok {
		m.Centroid = &c
	}
	return m, nil
}
