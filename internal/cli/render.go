package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src     source
		formats string
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [seed.json]",
		Short: "Render a family tree to SVG, PNG, DOT or JSON",
		Long: `Render a family tree.

The tree is built, laid out and drawn with Graphviz using the computed
positions. Several formats can be written in one run:

  stamboom render smit.json -f svg,png
  stamboom render --family 3 -f dot -o out/smit

Each format is written to <output>.<format>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runRender(cmd.Context(), &src, args, opts, output, noCache)
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats: svg, png, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path without extension (default: input name)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show places, dates and comments on the cards")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title above the tree (default: family name)")
	layoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, src *source, args []string, opts pipeline.Options, output string, noCache bool) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	f, ds, err := src.load(ctx, c, args)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = f.Name
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts = c.layoutOptions(opts)

	var result *pipeline.Result
	err = spin(ctx, "Rendering family tree...", "Render failed", func(ctx context.Context) (err error) {
		result, err = runner.Execute(ctx, ds, opts)
		return err
	})
	if err != nil {
		return err
	}

	base := output
	if base == "" {
		base = src.outputBase(f, args)
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", dash(f.Name))
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.Members, len(ds.Marriages), result.Stats.Disconnected, result.CacheInfo.LayoutHit)
	return nil
}
