package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/cache"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/store"
)

func TestWorkspaceIgnoresOlderSnapshots(t *testing.T) {
	quiet := log.New(io.Discard)
	ws := newWorkspace(context.Background(), pipeline.NewRunner(cache.NewNullCache(), nil, quiet), pipeline.Options{}, quiet)
	t.Cleanup(ws.close)

	ws.store.Load(family.Family{ID: 1, Name: "Smit"}, family.Dataset{
		People: []family.Person{{ID: 1, FirstName: "Jan", LastName: "Smit"}},
	})
	if err := ws.store.AddPerson(family.Person{ID: 2, FirstName: "Els", LastName: "Bakker"}); err != nil {
		t.Fatal(err)
	}
	ws.refresher.Wait()
	triggered := ws.triggered.Load()

	// A late delivery of version 1, or of an empty store, must not roll
	// the view back.
	ws.onChange(store.Snapshot{Family: &family.Family{ID: 1}, Version: 1})
	ws.onChange(store.Snapshot{Version: 1})
	ws.refresher.Wait()

	if got := ws.triggered.Load(); got != triggered {
		t.Errorf("triggered generation moved from %d to %d", triggered, got)
	}
	v, stale, err := ws.view()
	if err != nil {
		t.Fatal(err)
	}
	if stale || len(v.Graph.Nodes) != 2 {
		t.Errorf("view has %d nodes, stale=%v", len(v.Graph.Nodes), stale)
	}
}

func TestConcurrentEditsPublishFinalVersion(t *testing.T) {
	f := newFixture(t)
	// Load the workspace before the writers race for it.
	if status, _ := do(t, http.MethodGet, f.path("/stats"), nil, nil); status != http.StatusOK {
		t.Fatalf("stats = %d", status)
	}

	const writers = 16
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(family.Person{FirstName: "Kind", LastName: "Smit"})
			resp, err := http.Post(f.path("/people"), "application/json", bytes.NewReader(body))
			if err != nil {
				t.Error(err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("create = %d", resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	f.settle()

	f.srv.mu.Lock()
	ws := f.srv.workspaces[f.family.ID]
	f.srv.mu.Unlock()

	snap := ws.store.Snapshot()
	if want := 4 + writers; len(snap.Dataset.People) != want {
		t.Fatalf("store has %d people, want %d", len(snap.Dataset.People), want)
	}
	if got := ws.version.Load(); got != snap.Version {
		t.Errorf("last triggered store version %d, store at %d", got, snap.Version)
	}

	ds, _ := f.repo.FetchFamily(context.Background(), f.family.ID)
	if len(ds.People) != len(snap.Dataset.People) {
		t.Errorf("repository has %d people, store %d", len(ds.People), len(snap.Dataset.People))
	}

	var resp TreeResponse
	if status, apiErr := do(t, http.MethodGet, f.path("/tree"), nil, &resp); status != http.StatusOK {
		t.Fatalf("tree = %d %+v", status, apiErr)
	}
	if resp.Stale || resp.Generation != ws.triggered.Load() {
		t.Errorf("view generation %d stale=%v, last triggered %d", resp.Generation, resp.Stale, ws.triggered.Load())
	}
	// Every store member plus the unknown spouse of Piet.
	if members, _, _ := countMembers(resp.Layout); members != len(snap.Dataset.People)+1 {
		t.Errorf("view has %d members, store has %d people", members, len(snap.Dataset.People))
	}
}
