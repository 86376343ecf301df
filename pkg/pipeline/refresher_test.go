package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/observability"
	"github.com/matzehuels/stamboom/pkg/tree"
)

var _ Engine = (*Runner)(nil)

// fakeEngine builds the graph without laying it out. Runs for datasets with
// a gate wait for the gate to close, ignoring cancellation, so tests can
// finish a superseded run after a newer one.
type fakeEngine struct {
	mu    sync.Mutex
	gates map[int]chan struct{}
	fail  map[int]error
}

func (e *fakeEngine) Run(ctx context.Context, ds family.Dataset, opts Options) (tree.Graph, error) {
	e.mu.Lock()
	gate := e.gates[len(ds.People)]
	err := e.fail[len(ds.People)]
	e.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return tree.Graph{}, err
	}
	return tree.Build(ds.People, ds.Marriages, ds.Children), nil
}

func people(n int) family.Dataset {
	var ds family.Dataset
	for i := 1; i <= n; i++ {
		ds.People = append(ds.People, family.Person{ID: int64(i), FirstName: "P", LastName: "Q"})
	}
	return ds
}

func TestRefresherPublishes(t *testing.T) {
	var published []uint64
	r := NewRefresher(context.Background(), &fakeEngine{}, Options{},
		WithPublishHook(func(v *View) { published = append(published, v.Generation) }))
	defer r.Close()

	if r.Current() != nil {
		t.Fatal("Current() before first run should be nil")
	}
	gen := r.Trigger(people(2))
	r.Wait()

	v := r.Current()
	if v == nil || v.Generation != gen || len(v.Graph.Nodes) != 2 {
		t.Fatalf("Current() = %+v", v)
	}
	if len(published) != 1 || published[0] != gen {
		t.Errorf("published = %v", published)
	}
}

func TestRefresherLastRequestWins(t *testing.T) {
	slow := make(chan struct{})
	eng := &fakeEngine{gates: map[int]chan struct{}{1: slow}}
	published := make(chan uint64, 2)
	r := NewRefresher(context.Background(), eng, Options{},
		WithPublishHook(func(v *View) { published <- v.Generation }))
	defer r.Close()

	first := r.Trigger(people(1))
	second := r.Trigger(people(3))
	if second <= first {
		t.Fatalf("generations not increasing: %d, %d", first, second)
	}

	// Let the newer run finish, then release the stale one.
	if got := <-published; got != second {
		t.Fatalf("first publish = %d, want %d", got, second)
	}
	close(slow)
	r.Wait()

	v := r.Current()
	if v.Generation != second {
		t.Errorf("Generation = %d, want %d", v.Generation, second)
	}
	if len(v.Graph.Nodes) != 3 {
		t.Errorf("stale run published %d nodes", len(v.Graph.Nodes))
	}
	if len(published) != 0 {
		t.Error("superseded run should not publish")
	}
}

func TestRefresherKeepsViewOnFailure(t *testing.T) {
	boom := errors.New("boom")
	eng := &fakeEngine{fail: map[int]error{5: boom}}

	var (
		gotMsg string
		gotErr error
	)
	r := NewRefresher(context.Background(), eng, Options{},
		WithNotifier(NotifierFunc(func(_ context.Context, msg string, err error) {
			gotMsg, gotErr = msg, err
		})))
	defer r.Close()

	good := r.Trigger(people(2))
	r.Wait()
	r.Trigger(people(5))
	r.Wait()

	v := r.Current()
	if v == nil || v.Generation != good || len(v.Graph.Nodes) != 2 {
		t.Errorf("view after failure = %+v, want generation %d", v, good)
	}
	if gotMsg != RefreshFailedMessage || !errors.Is(gotErr, boom) {
		t.Errorf("notified %q, %v", gotMsg, gotErr)
	}
}

func TestRefresherClear(t *testing.T) {
	r := NewRefresher(context.Background(), &fakeEngine{}, Options{})
	defer r.Close()

	r.Trigger(people(1))
	r.Wait()
	r.Clear()
	if r.Current() != nil {
		t.Error("Clear() should drop the view")
	}
}

func TestRefresherWithRunner(t *testing.T) {
	r := NewRefresher(context.Background(), NewRunner(nil, nil, nil), Options{})
	defer r.Close()

	r.Trigger(sampleDataset())
	r.Wait()
	v := r.Current()
	if v == nil {
		t.Fatal("no view published")
	}
	if len(v.Graph.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(v.Graph.Nodes))
	}
}

type recordingRefreshHooks struct {
	observability.NoopRefreshHooks
	mu        sync.Mutex
	published []uint64
	failed    []uint64
}

func (h *recordingRefreshHooks) OnRefreshPublished(_ context.Context, gen uint64, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, gen)
}

func (h *recordingRefreshHooks) OnRefreshFailed(_ context.Context, gen uint64, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = append(h.failed, gen)
}

func TestRefresherReportsToHooks(t *testing.T) {
	hooks := &recordingRefreshHooks{}
	observability.SetRefreshHooks(hooks)
	defer observability.Reset()

	eng := &fakeEngine{fail: map[int]error{2: errors.New("boom")}}
	r := NewRefresher(context.Background(), eng, Options{})
	defer r.Close()

	ok := r.Trigger(people(1))
	r.Wait()
	bad := r.Trigger(people(2))
	r.Wait()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.published) != 1 || hooks.published[0] != ok {
		t.Errorf("published = %v, want [%d]", hooks.published, ok)
	}
	if len(hooks.failed) != 1 || hooks.failed[0] != bad {
		t.Errorf("failed = %v, want [%d]", hooks.failed, bad)
	}
}
