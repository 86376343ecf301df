package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// every hook interface.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{logger: l} }

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("graph built", "nodes", nodes, "edges", edges, "took", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.logger.Debug("layout started", "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "took", d, "err", err)
		return
	}
	h.logger.Debug("layout complete", "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render started", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("render complete", "format", format, "took", d, "err", err)
}

func (h *LogHooks) OnRefreshTriggered(_ context.Context, gen uint64) {
	h.logger.Debug("refresh triggered", "generation", gen)
}

func (h *LogHooks) OnRefreshPublished(_ context.Context, gen uint64, d time.Duration) {
	h.logger.Debug("refresh published", "generation", gen, "took", d)
}

func (h *LogHooks) OnRefreshSuperseded(_ context.Context, gen, latest uint64) {
	h.logger.Debug("refresh superseded", "generation", gen, "latest", latest)
}

func (h *LogHooks) OnRefreshFailed(_ context.Context, gen uint64, err error) {
	h.logger.Debug("refresh failed", "generation", gen, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ RefreshHooks  = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
