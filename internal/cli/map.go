package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/internal/config"
	"github.com/matzehuels/stamboom/pkg/cache"
	"github.com/matzehuels/stamboom/pkg/geo"
)

func (c *CLI) mapCommand() *cobra.Command {
	var (
		src     source
		output  string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "map [seed.json]",
		Short: "Geocode birthplaces into a GeoJSON file",
		Long: `Geocode every birthplace with Mapbox and write a GeoJSON FeatureCollection
with one point per person.

Needs a Mapbox access token in the config file or in
STAMBOOM_MAPBOX_TOKEN. Lookups, including unknown places, are cached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMap(cmd.Context(), &src, args, output, noCache)
		},
	}
	src.addFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.geojson)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// newGeocoder returns nil when no Mapbox token is configured.
func (c *CLI) newGeocoder(ch cache.Cache) *geo.Geocoder {
	mb := c.cfg.Mapbox
	if mb.Token == "" {
		return nil
	}
	return geo.NewGeocoder(mb.Token,
		geo.WithCache(ch, cache.NewDefaultKeyer()),
		geo.WithRateLimit(mb.RateLimit),
		geo.WithConcurrency(mb.Concurrency),
		geo.WithLogger(c.Logger),
	)
}

func (c *CLI) runMap(ctx context.Context, src *source, args []string, output string, noCache bool) error {
	f, ds, err := src.load(ctx, c, args)
	if err != nil {
		return err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	g := c.newGeocoder(ch)
	if g == nil {
		return fmt.Errorf("no Mapbox token: set mapbox.token in %s or %sMAPBOX_TOKEN", c.configFile(), config.EnvPrefix)
	}

	prog := newProgress(c.Logger)
	var m geo.Map
	err = spin(ctx, fmt.Sprintf("Geocoding %d places...", len(geo.Places(ds.People))), "Geocoding failed", func(ctx context.Context) (err error) {
		m, err = g.Locate(ctx, ds.People)
		return err
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Located %d people", len(m.Collection.Features)))

	if output == "" {
		output = src.outputBase(f, args) + ".geojson"
	}
	data, err := json.MarshalIndent(m.Collection, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Map written")
	printFile(output)
	if m.Centroid != nil {
		printDetail("centre %.4f, %.4f", m.Centroid.Lat(), m.Centroid.Lon())
	}
	for _, p := range m.Unresolved {
		printWarning("Could not place %s", p)
	}
	return nil
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	if p, err := config.Path(); err == nil {
		return p
	}
	return "the config file"
}
