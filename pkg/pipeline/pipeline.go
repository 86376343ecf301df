// Package pipeline runs the family tree pipeline: build the graph from
// records, lay it out, render it.
//
// The CLI, the HTTP API and the [Refresher] all go through a [Runner] so
// that caching and observability behave the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, ds, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g := runner.Build(ctx, ds, opts)
//	positioned, info, hit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
//	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, positioned, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/cache"
	"github.com/matzehuels/stamboom/pkg/layout"
	"github.com/matzehuels/stamboom/pkg/layout/ordering"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// DefaultQuality is the ordering preset used when none is given.
const DefaultQuality = "balanced"

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Options contains all configuration for a pipeline run.
// Zero values mean "use the default".
type Options struct {
	// Layout options
	NodeSpacing      float64 `json:"node_spacing,omitempty" toml:"node_spacing"`
	RankSpacing      float64 `json:"rank_spacing,omitempty" toml:"rank_spacing"`
	ComponentSpacing float64 `json:"component_spacing,omitempty" toml:"component_spacing"`
	LooseColumns     int     `json:"loose_columns,omitempty" toml:"loose_columns"`
	Quality          string  `json:"quality,omitempty" toml:"quality"`

	// Render options
	Formats  []string `json:"formats,omitempty" toml:"-"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"`
	Title    string   `json:"title,omitempty" toml:"-"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger  *log.Logger      `json:"-" toml:"-"`
	Orderer ordering.Orderer `json:"-" toml:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the unpositioned graph built from the records.
	Graph tree.Graph
	// GraphHash is the content hash of Graph.
	GraphHash string
	// Positioned is Graph with every node placed.
	Positioned tree.Graph
	// Layout describes the layout run.
	Layout layout.Result
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	Members      int
	Disconnected int
	BuildTime    time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuality checks an ordering preset name.
func ValidateQuality(q string) error {
	if _, ok := ordering.ParseQuality(q); !ok {
		return fmt.Errorf("invalid quality: %q (must be one of: fast, balanced)", q)
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.NodeSpacing == 0 {
		o.NodeSpacing = layout.DefaultNodeSpacing
	}
	if o.RankSpacing == 0 {
		o.RankSpacing = layout.DefaultRankSpacing
	}
	if o.ComponentSpacing == 0 {
		o.ComponentSpacing = layout.DefaultComponentSpacing
	}
	if o.LooseColumns == 0 {
		o.LooseColumns = layout.DefaultLooseColumns
	}
	if o.Quality == "" {
		o.Quality = DefaultQuality
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.NodeSpacing < 0 || o.RankSpacing < 0 || o.ComponentSpacing < 0 {
		return fmt.Errorf("spacing must not be negative")
	}
	if o.LooseColumns < 0 {
		return fmt.Errorf("loose_columns must not be negative")
	}
	return ValidateQuality(o.Quality)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutOptions translates the options for [layout.Compute].
func (o *Options) LayoutOptions() []layout.Option {
	orderer := o.Orderer
	if orderer == nil {
		q, _ := ordering.ParseQuality(o.Quality)
		orderer = ordering.ForQuality(q)
	}
	return []layout.Option{
		layout.WithNodeSpacing(o.NodeSpacing),
		layout.WithRankSpacing(o.RankSpacing),
		layout.WithComponentSpacing(o.ComponentSpacing),
		layout.WithLooseColumns(o.LooseColumns),
		layout.WithOrderer(orderer),
		layout.WithLogger(o.Logger),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeSpacing:      o.NodeSpacing,
		RankSpacing:      o.RankSpacing,
		ComponentSpacing: o.ComponentSpacing,
		LooseColumns:     o.LooseColumns,
		Quality:          o.Quality,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		Title:    o.Title,
	}
}
