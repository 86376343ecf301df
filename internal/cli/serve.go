package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/internal/api"
	"github.com/matzehuels/stamboom/pkg/pipeline"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		seeds   []string
		noCache bool
		opts    pipeline.Options
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Families are read from the configured storage. With the memory backend the
data lives only as long as the process; use --seed to load families at
startup:

  stamboom serve --seed examples/seed/smit.json

Every edit made through the API re-lays the family tree in the background.
GET /families/{id}/tree returns the newest finished layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, seeds, opts, noCache)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().StringSliceVar(&seeds, "seed", nil, "seed files to import at startup (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	layoutFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, seeds []string, opts pipeline.Options, noCache bool) error {
	repo, err := openRepository(ctx, c.cfg, c.Logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	for _, path := range seeds {
		if err := c.seedFile(ctx, repo, path); err != nil {
			return err
		}
	}

	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	defer runner.Close()

	serverOpts := []api.Option{
		api.WithLogger(c.Logger),
		api.WithPipelineOptions(c.layoutOptions(opts)),
	}
	if g := c.newGeocoder(ch); g != nil {
		serverOpts = append(serverOpts, api.WithGeocoder(g))
	} else {
		c.Logger.Warn("no Mapbox token, /map is disabled")
	}
	srv := api.New(repo, runner, serverOpts...)
	defer srv.Close()

	printInfo("Serving on %s", StyleHighlight.Render(addr))
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
