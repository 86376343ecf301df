package pipeline

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/observability"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// RefreshFailedMessage is what the [Notifier] receives when a run fails and
// the previous view stays on screen.
const RefreshFailedMessage = "view could not refresh"

// Engine computes a positioned graph. [*Runner] implements it.
type Engine interface {
	Run(ctx context.Context, ds family.Dataset, opts Options) (tree.Graph, error)
}

// Notifier receives user-facing failure messages.
type Notifier interface {
	Notify(ctx context.Context, message string, err error)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, message string, err error)

func (f NotifierFunc) Notify(ctx context.Context, message string, err error) { f(ctx, message, err) }

// View is a published positioned graph.
type View struct {
	Graph      tree.Graph
	Generation uint64
	UpdatedAt  time.Time
}

// Refresher keeps the current view in step with the source records.
//
// Every [Refresher.Trigger] starts a new run and cancels the one in flight.
// Only the run of the newest generation may publish; a failed run leaves
// the previous view in place and notifies.
type Refresher struct {
	engine    Engine
	opts      Options
	notifier  Notifier
	logger    *log.Logger
	onPublish func(*View)

	parent context.Context

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	current atomic.Pointer[View]
	wg      sync.WaitGroup
}

// RefresherOption configures a [Refresher].
type RefresherOption func(*Refresher)

// WithNotifier sets where failure messages go. The notifier runs with the
// refresher locked and must not call back into it.
func WithNotifier(n Notifier) RefresherOption {
	return func(r *Refresher) { r.notifier = n }
}

// WithRefreshLogger sets the logger.
func WithRefreshLogger(l *log.Logger) RefresherOption {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPublishHook is called with each newly published view, under the same
// lock as the notifier.
func WithPublishHook(fn func(*View)) RefresherOption {
	return func(r *Refresher) { r.onPublish = fn }
}

// NewRefresher creates a refresher whose runs derive from ctx. Cancelling
// ctx stops all runs.
func NewRefresher(ctx context.Context, engine Engine, opts Options, options ...RefresherOption) *Refresher {
	r := &Refresher{
		engine: engine,
		opts:   opts,
		logger: log.New(io.Discard),
		parent: ctx,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Trigger schedules a run for ds and returns its generation.
func (r *Refresher) Trigger(ds family.Dataset) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(r.parent)
	r.cancel = cancel

	observability.Refresh().OnRefreshTriggered(ctx, gen)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.run(ctx, gen, ds)
	}()
	return gen
}

func (r *Refresher) run(ctx context.Context, gen uint64, ds family.Dataset) {
	start := time.Now()
	g, err := r.engine.Run(ctx, ds, r.opts)

	hooks := observability.Refresh()
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || ctx.Err() != nil {
		r.logger.Debug("discarding superseded layout", "generation", gen, "latest", r.gen)
		hooks.OnRefreshSuperseded(ctx, gen, r.gen)
		return
	}
	if err != nil {
		r.logger.Error("layout failed, keeping previous view", "generation", gen, "error", err)
		hooks.OnRefreshFailed(ctx, gen, err)
		if r.notifier != nil {
			r.notifier.Notify(ctx, RefreshFailedMessage, err)
		}
		return
	}

	v := &View{Graph: g, Generation: gen, UpdatedAt: time.Now()}
	r.current.Store(v)
	r.logger.Debug("published layout", "generation", gen, "nodes", len(g.Nodes))
	hooks.OnRefreshPublished(ctx, gen, time.Since(start))
	if r.onPublish != nil {
		r.onPublish(v)
	}
}

// Current returns the latest published view, or nil before the first
// successful run.
func (r *Refresher) Current() *View { return r.current.Load() }

// Clear drops the current view and cancels any run in flight, as on
// logout or when switching families.
func (r *Refresher) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
	r.current.Store(nil)
}

// Wait blocks until every scheduled run has returned.
func (r *Refresher) Wait() { r.wg.Wait() }

// Close cancels the run in flight and waits for it.
func (r *Refresher) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
