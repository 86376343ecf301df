package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/layout"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// layoutCommand creates the layout command for positioning a family tree.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src     source
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [seed.json]",
		Short: "Position a family tree and write the layout as JSON",
		Long: `Position a family tree and write the layout as JSON.

The records come from a seed file or, with --family, from the configured
storage. The output lists every node with its box and every edge, the same
document 'render -f json' writes.

Layouts are cached, so an unchanged family is positioned only once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), &src, args, opts, output, noCache)
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	layoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, src *source, args []string, opts pipeline.Options, output string, noCache bool) error {
	f, ds, err := src.load(ctx, c, args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts = c.layoutOptions(opts)
	g := runner.Build(ctx, ds, opts)

	var (
		positioned tree.Graph
		info       layout.Result
		cacheHit   bool
	)
	prog := newProgress(c.Logger)
	err = spin(ctx, "Computing layout...", "Layout failed", func(ctx context.Context) (err error) {
		positioned, info, cacheHit, err = runner.LayoutWithCacheInfo(ctx, g, opts)
		return err
	})
	if err != nil {
		return err
	}
	prog.family("Laid out", f.Name, len(ds.People), len(ds.Marriages), len(ds.Children))

	if output == "" {
		output = src.outputBase(f, args) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(graph.FromTree(positioned), output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(ds.People), len(ds.Marriages), len(g.Disconnected()), cacheHit)
	printDetail("%d components, %d crossings", info.Components, info.Crossings)
	printNewline()
	printNextStep("Render", appName+" render "+renderHint(args, src))

	return nil
}

func renderHint(args []string, src *source) string {
	if len(args) > 0 {
		return args[0]
	}
	return fmt.Sprintf("--family %d", src.familyID)
}
