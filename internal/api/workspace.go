package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/store"
)

// Notice is the last refresh failure of a family view.
type Notice struct {
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// workspace is the live state of one family: its records and the
// positioned graph kept in step with them.
type workspace struct {
	runner    *pipeline.Runner
	store     *store.Store
	refresher *pipeline.Refresher
	unsub     func()

	// writeMu orders repository writes and their store mutations alike.
	writeMu sync.Mutex

	version   atomic.Uint64
	triggered atomic.Uint64
	notice    atomic.Pointer[Notice]
}

func newWorkspace(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *workspace {
	ws := &workspace{runner: runner, store: store.New()}
	notifier := pipeline.NotifierFunc(func(_ context.Context, msg string, err error) {
		n := &Notice{Message: msg, At: time.Now()}
		if err != nil {
			n.Detail = ferrors.UserMessage(err)
		}
		ws.notice.Store(n)
	})
	ws.refresher = pipeline.NewRefresher(ctx, runner, opts,
		pipeline.WithNotifier(notifier),
		pipeline.WithRefreshLogger(logger),
		pipeline.WithPublishHook(func(*pipeline.View) { ws.notice.Store(nil) }),
	)
	ws.unsub = ws.store.Subscribe(ws.onChange)
	return ws
}

func (ws *workspace) onChange(snap store.Snapshot) {
	for {
		cur := ws.version.Load()
		if snap.Version <= cur {
			return
		}
		if ws.version.CompareAndSwap(cur, snap.Version) {
			break
		}
	}
	if !snap.Loaded() {
		ws.refresher.Clear()
		return
	}
	gen := ws.refresher.Trigger(snap.Dataset)
	for {
		cur := ws.triggered.Load()
		if gen <= cur || ws.triggered.CompareAndSwap(cur, gen) {
			return
		}
	}
}

// view returns the published view, waiting for the first run if nothing
// has been published yet. stale is true while a newer run is in flight.
func (ws *workspace) view() (v *pipeline.View, stale bool, err error) {
	v = ws.refresher.Current()
	if v == nil {
		ws.refresher.Wait()
		v = ws.refresher.Current()
	}
	if v == nil {
		msg := pipeline.RefreshFailedMessage
		if n := ws.notice.Load(); n != nil && n.Detail != "" {
			msg += ": " + n.Detail
		}
		return nil, false, ferrors.New(ferrors.ErrCodeLayoutFailed, "%s", msg)
	}
	return v, v.Generation < ws.triggered.Load(), nil
}

// mutate runs fn with the workspace's writes serialized.
func (ws *workspace) mutate(fn func() error) error {
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	return fn()
}

func (ws *workspace) dataset() family.Dataset { return ws.store.Snapshot().Dataset }

func (ws *workspace) close() {
	ws.unsub()
	ws.refresher.Close()
}
