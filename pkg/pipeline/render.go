package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/observability"
	"github.com/matzehuels/stamboom/pkg/render/nodelink"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// Render generates output artifacts for a positioned graph in the
// requested formats.
func Render(ctx context.Context, positioned tree.Graph, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hooks.OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = graph.MarshalLayout(graph.FromTree(positioned))
		case FormatDOT, FormatSVG, FormatPNG:
			if dot == "" {
				dot = nodelink.ToDOT(positioned, nodelink.Options{Detailed: opts.Detailed, Title: opts.Title})
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.Render(ctx, dot, format)
			}
		}

		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
