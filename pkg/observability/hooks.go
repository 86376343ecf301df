// Package observability lets a binary observe the tree pipeline, the live
// refresh of edited families, the cache and outgoing geocoding calls without
// the libraries depending on a metrics backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	observability.SetPipelineHooks(observability.NewLogHooks(logger))
//
// Libraries call them at the matching points:
//
//	observability.Pipeline().OnLayoutStart(ctx, len(g.Nodes))
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the build, layout and render steps.
type PipelineHooks interface {
	OnBuildComplete(ctx context.Context, nodes, edges int, duration time.Duration)

	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// RefreshHooks receives events from a live view refresher. Generations
// increase with every edit; only the newest may publish.
type RefreshHooks interface {
	OnRefreshTriggered(ctx context.Context, generation uint64)
	OnRefreshPublished(ctx context.Context, generation uint64, duration time.Duration)
	// OnRefreshSuperseded fires when a finished run is dropped because a
	// newer edit arrived while it was computing.
	OnRefreshSuperseded(ctx context.Context, generation, latest uint64)
	OnRefreshFailed(ctx context.Context, generation uint64, err error)
}

// CacheHooks receives cache events. keyType is "layout", "artifact" or
// "geocode".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events for outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure such as a timeout.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration)       {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                             {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)         {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// NoopRefreshHooks ignores every event.
type NoopRefreshHooks struct{}

func (NoopRefreshHooks) OnRefreshTriggered(context.Context, uint64)                {}
func (NoopRefreshHooks) OnRefreshPublished(context.Context, uint64, time.Duration) {}
func (NoopRefreshHooks) OnRefreshSuperseded(context.Context, uint64, uint64)       {}
func (NoopRefreshHooks) OnRefreshFailed(context.Context, uint64, error)            {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	refreshHooks  RefreshHooks  = NoopRefreshHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetRefreshHooks registers refresh hooks. A nil h is ignored.
func SetRefreshHooks(h RefreshHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		refreshHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

func Refresh() RefreshHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return refreshHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	refreshHooks = NoopRefreshHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
