package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/cache"
	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/layout"
	"github.com/matzehuels/stamboom/pkg/observability"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no pipeline results, only the cache and logger, so
// several goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer means [cache.DefaultKeyer], a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Scoped returns a runner sharing r's cache whose layout and artifact keys
// carry prefix, so entries of one family can be told apart in a shared
// cache.
func (r *Runner) Scoped(prefix string) *Runner {
	return &Runner{
		Cache:  r.Cache,
		Keyer:  cache.NewScopedKeyer(r.Keyer, prefix),
		Logger: r.Logger,
	}
}

// layoutEntry is the cached form of a layout run.
type layoutEntry struct {
	Graph tree.Graph    `json:"graph"`
	Info  layout.Result `json:"info"`
}

// Execute runs build, layout and render with caching.
func (r *Runner) Execute(ctx context.Context, ds family.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid options")
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	buildStart := time.Now()
	g := r.Build(ctx, ds, opts)
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.Stats.Members = len(g.Members())
	result.Stats.Disconnected = len(g.Disconnected())
	result.GraphHash = graphHash(g)

	r.Logger.Info("built family graph",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"disconnected", result.Stats.Disconnected,
		"duration", result.Stats.BuildTime)

	layoutStart := time.Now()
	positioned, info, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Positioned = positioned
	result.Layout = info
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"components", info.Components,
		"crossings", info.Crossings,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, positioned, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Run builds and lays out ds and returns the positioned graph. It is the
// unit of work the [Refresher] schedules.
func (r *Runner) Run(ctx context.Context, ds family.Dataset, opts Options) (tree.Graph, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return tree.Graph{}, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid options")
	}
	g := r.Build(ctx, ds, opts)
	positioned, _, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return positioned, err
}

// Build converts the records into an unpositioned graph.
func (r *Runner) Build(ctx context.Context, ds family.Dataset, opts Options) tree.Graph {
	r.applyLogger(&opts)
	start := time.Now()
	g := tree.Build(ds.People, ds.Marriages, ds.Children, tree.WithLogger(opts.Logger))
	observability.Pipeline().OnBuildComplete(ctx, len(g.Nodes), len(g.Edges), time.Since(start))
	return g
}

// LayoutWithCacheInfo positions g, consulting the cache first. Layout
// failures are returned as [ferrors.ErrCodeLayoutFailed]; cancellation is
// returned unwrapped.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g tree.Graph, opts Options) (tree.Graph, layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return tree.Graph{}, layout.Result{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(graphHash(g), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var entry layoutEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return entry.Graph, entry.Info, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("layout cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(g.Nodes))
	start := time.Now()
	positioned, info, err := layout.Compute(ctx, g, opts.LayoutOptions()...)
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return tree.Graph{}, info, false, err
		}
		return tree.Graph{}, info, false, ferrors.Wrap(ferrors.ErrCodeLayoutFailed, err, "layout failed")
	}

	if data, err := json.Marshal(layoutEntry{Graph: positioned, Info: info}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return positioned, info, false, nil
}

// RenderWithCacheInfo renders the positioned graph in every requested
// format. The hit flag is true only when all formats came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, positioned tree.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash := graphHash(positioned)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, positioned, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func graphHash(g tree.Graph) string {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
