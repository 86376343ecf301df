package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/cache"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/storage"
	"github.com/matzehuels/stamboom/pkg/storage/memory"
	"github.com/matzehuels/stamboom/pkg/tree"
)

type fixture struct {
	srv    *Server
	ts     *httptest.Server
	repo   *memory.Repository
	family family.Family
	people map[string]int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	quiet := log.New(io.Discard)
	repo := memory.New()

	res, err := storage.Seed(ctx, repo, graph.Seed{
		Name: "Smit",
		Members: []graph.SeedMember{
			{ID: 1, FirstName: "Jan", LastName: "Smit", BirthDate: "1920"},
			{ID: 2, FirstName: "Els", LastName: "Bakker", BirthDate: "1922"},
			{ID: 3, FirstName: "Piet", LastName: "Smit", BirthDate: "1950"},
			{ID: 4, FirstName: "Anna", LastName: "Jansen"},
		},
		Marriages: []graph.SeedMarriage{
			{P1: family.ID(1), P2: family.ID(2), Children: []int64{3}},
			{P1: family.ID(3)},
		},
	}, quiet)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	ds, err := repo.FetchFamily(ctx, res.Family.ID)
	if err != nil {
		t.Fatal(err)
	}
	people := make(map[string]int64, len(ds.People))
	for _, p := range ds.People {
		people[p.FirstName] = p.ID
	}

	srv := New(repo, pipeline.NewRunner(cache.NewNullCache(), nil, quiet), WithLogger(quiet))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return &fixture{srv: srv, ts: ts, repo: repo, family: res.Family, people: people}
}

func (f *fixture) path(format string, args ...any) string {
	return f.ts.URL + "/families/" + strconv.FormatInt(f.family.ID, 10) + fmt.Sprintf(format, args...)
}

// settle waits for the layout of every pending edit.
func (f *fixture) settle() {
	f.srv.mu.Lock()
	ws := f.srv.workspaces[f.family.ID]
	f.srv.mu.Unlock()
	if ws != nil {
		ws.refresher.Wait()
	}
}

type apiError struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// do sends body as JSON and decodes the data envelope into out, or the
// error envelope when the status is not 2xx.
func do(t *testing.T, method, url string, body, out any) (int, apiError) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var apiErr apiError
	switch {
	case resp.StatusCode >= 300:
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			t.Fatalf("%s %s: decode error body: %v", method, url, err)
		}
	case out != nil:
		env := struct {
			Data any `json:"data"`
		}{Data: out}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("%s %s: decode body: %v", method, url, err)
		}
	}
	return resp.StatusCode, apiErr
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	var body map[string]string
	if status, _ := do(t, http.MethodGet, f.ts.URL+"/healthz", nil, &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Error("no request id assigned")
	}

	req, _ := http.NewRequest(http.MethodGet, f.ts.URL+"/families/0/tree", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("header = %q", got)
	}
	if apiErr.RequestID != "abc-123" {
		t.Errorf("envelope request_id = %q", apiErr.RequestID)
	}
}

func TestFamilies(t *testing.T) {
	f := newFixture(t)

	var list []family.Family
	if status, _ := do(t, http.MethodGet, f.ts.URL+"/families", nil, &list); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if len(list) != 1 || list[0].Name != "Smit" {
		t.Fatalf("families = %+v", list)
	}

	var created family.Family
	status, _ := do(t, http.MethodPost, f.ts.URL+"/families", map[string]string{"name": " Bakker "}, &created)
	if status != http.StatusCreated || created.Name != "Bakker" || created.ID == 0 {
		t.Fatalf("create = %d %+v", status, created)
	}

	status, apiErr := do(t, http.MethodPost, f.ts.URL+"/families", map[string]string{"name": ""}, nil)
	if status != http.StatusBadRequest || apiErr.Code != "INVALID_INPUT" {
		t.Errorf("empty name = %d %+v", status, apiErr)
	}

	var copied family.Family
	status, _ = do(t, http.MethodPost, f.path("/copy"), nil, &copied)
	if status != http.StatusCreated || copied.Name != "Smit"+storage.CopySuffix {
		t.Fatalf("copy = %d %+v", status, copied)
	}
	ds, err := f.repo.FetchFamily(context.Background(), copied.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.People) != 4 || len(ds.Marriages) != 2 || len(ds.Children) != 1 {
		t.Errorf("copy has %d people, %d marriages, %d children", len(ds.People), len(ds.Marriages), len(ds.Children))
	}
}

func TestUnknownFamily(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/families/99/tree", http.StatusNotFound, "FAMILY_NOT_FOUND"},
		{"/families/abc/stats", http.StatusBadRequest, "INVALID_INPUT"},
		{"/families/-1/search?q=x", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, apiErr := do(t, http.MethodGet, f.ts.URL+tt.path, nil, nil)
			if status != tt.status || apiErr.Code != tt.code {
				t.Errorf("got %d %q, want %d %q", status, apiErr.Code, tt.status, tt.code)
			}
		})
	}
}

func countMembers(l graph.Layout) (members, placeholders, disconnected int) {
	for _, b := range l.Nodes {
		if b.Type != tree.Member {
			continue
		}
		members++
		if b.Placeholder {
			placeholders++
		}
		if b.Disconnected {
			disconnected++
		}
	}
	return
}

func TestTree(t *testing.T) {
	f := newFixture(t)

	var resp TreeResponse
	if status, apiErr := do(t, http.MethodGet, f.path("/tree"), nil, &resp); status != http.StatusOK {
		t.Fatalf("status = %d %+v", status, apiErr)
	}
	if resp.Family.Name != "Smit" || resp.Generation == 0 {
		t.Errorf("family = %+v, generation = %d", resp.Family, resp.Generation)
	}
	members, placeholders, disconnected := countMembers(resp.Layout)
	// Four people plus the unknown spouse of Piet.
	if members != 5 || placeholders != 1 || disconnected != 1 {
		t.Errorf("members=%d placeholders=%d disconnected=%d", members, placeholders, disconnected)
	}
	if resp.Layout.Width <= 0 || resp.Layout.Height <= 0 {
		t.Errorf("extent = %vx%v", resp.Layout.Width, resp.Layout.Height)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	var stats family.Stats
	if status, _ := do(t, http.MethodGet, f.path("/stats"), nil, &stats); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if stats.Members != 4 || stats.Marriages != 2 || stats.ChildLinks != 1 || stats.Disconnected != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Oldest == nil || stats.Oldest.Person.FirstName != "Jan" {
		t.Errorf("oldest = %+v", stats.Oldest)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.settle()
	// Make sure a view exists before searching.
	do(t, http.MethodGet, f.path("/tree"), nil, nil)

	var results []SearchResult
	if status, _ := do(t, http.MethodGet, f.path("/search?q=smit"), nil, &results); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	for _, r := range results {
		if r.Person.LastName != "Smit" || r.Center == nil || r.NodeID != strconv.FormatInt(r.Person.ID, 10) {
			t.Errorf("result = %+v", r)
		}
	}

	status, apiErr := do(t, http.MethodGet, f.path("/search?q=+"), nil, nil)
	if status != http.StatusBadRequest || apiErr.Code != "INVALID_INPUT" {
		t.Errorf("blank query = %d %+v", status, apiErr)
	}
}

func TestMapWithoutGeocoder(t *testing.T) {
	f := newFixture(t)
	status, apiErr := do(t, http.MethodGet, f.path("/map"), nil, nil)
	if status != http.StatusNotImplemented || apiErr.Code != "UNSUPPORTED" {
		t.Errorf("got %d %+v", status, apiErr)
	}
}

func TestPersonLifecycle(t *testing.T) {
	f := newFixture(t)

	var kees family.Person
	status, apiErr := do(t, http.MethodPost, f.path("/people"),
		family.Person{FirstName: "Kees", LastName: "Smit", BirthDate: "1980/02/01"}, &kees)
	if status != http.StatusCreated || kees.ID == 0 || kees.FamilyID != f.family.ID {
		t.Fatalf("create = %d %+v %+v", status, kees, apiErr)
	}

	f.settle()
	var resp TreeResponse
	do(t, http.MethodGet, f.path("/tree"), nil, &resp)
	if members, _, disconnected := countMembers(resp.Layout); members != 6 || disconnected != 2 {
		t.Errorf("after add: members=%d disconnected=%d", members, disconnected)
	}
	if resp.Stale {
		t.Error("view stale after settling")
	}

	var updated family.Person
	status, _ = do(t, http.MethodPut, f.path("/people/%d", kees.ID),
		family.Person{FirstName: "Cornelis", LastName: "Smit"}, &updated)
	if status != http.StatusOK || updated.ID != kees.ID || updated.FirstName != "Cornelis" {
		t.Errorf("update = %d %+v", status, updated)
	}

	status, apiErr = do(t, http.MethodDelete, f.path("/people/%d", f.people["Jan"]), nil, nil)
	if status != http.StatusConflict || apiErr.Code != "HAS_DEPENDENTS" {
		t.Errorf("delete with dependents = %d %+v", status, apiErr)
	}

	if status, _ = do(t, http.MethodDelete, f.path("/people/%d", kees.ID), nil, nil); status != http.StatusNoContent {
		t.Errorf("delete = %d", status)
	}
	ds, _ := f.repo.FetchFamily(context.Background(), f.family.ID)
	if len(ds.People) != 4 {
		t.Errorf("repository has %d people after delete", len(ds.People))
	}

	status, apiErr = do(t, http.MethodPut, f.path("/people/999"), family.Person{FirstName: "X", LastName: "Y"}, nil)
	if status != http.StatusNotFound || apiErr.Code != "PERSON_NOT_FOUND" {
		t.Errorf("update missing = %d %+v", status, apiErr)
	}
}

func TestCreatePersonInvalid(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing first name", map[string]string{"lastname": "Smit"}, "INVALID_PERSON"},
		{"bad date", map[string]string{"firstname": "A", "lastname": "B", "birthdate": "soon"}, "INVALID_DATE"},
		{"unknown field", map[string]string{"firstname": "A", "lastname": "B", "nickname": "C"}, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := do(t, http.MethodPost, f.path("/people"), tt.body, nil)
			if status != http.StatusBadRequest || apiErr.Code != tt.code {
				t.Errorf("got %d %+v, want 400 %s", status, apiErr, tt.code)
			}
		})
	}
}

func TestMarriageAndChild(t *testing.T) {
	f := newFixture(t)
	anna, piet := f.people["Anna"], f.people["Piet"]

	status, apiErr := do(t, http.MethodPost, f.path("/marriages"), family.Marriage{P1: family.ID(anna), P2: family.ID(999)}, nil)
	if status != http.StatusNotFound || apiErr.Code != "PERSON_NOT_FOUND" {
		t.Errorf("unknown partner = %d %+v", status, apiErr)
	}
	status, apiErr = do(t, http.MethodPost, f.path("/marriages"), family.Marriage{P1: family.ID(anna), P2: family.ID(anna)}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("self marriage = %d %+v", status, apiErr)
	}

	var m family.Marriage
	status, _ = do(t, http.MethodPost, f.path("/marriages"), family.Marriage{P1: family.ID(piet), P2: family.ID(anna), City: "Gent"}, &m)
	if status != http.StatusCreated || m.ID == 0 {
		t.Fatalf("create marriage = %d %+v", status, m)
	}

	var baby family.Person
	do(t, http.MethodPost, f.path("/people"), family.Person{FirstName: "Lotte", LastName: "Smit"}, &baby)

	status, apiErr = do(t, http.MethodPost, f.path("/children"), family.Child{MarriageID: 999, ChildID: baby.ID}, nil)
	if status != http.StatusNotFound || apiErr.Code != "NOT_FOUND" {
		t.Errorf("unknown marriage = %d %+v", status, apiErr)
	}

	var c family.Child
	status, _ = do(t, http.MethodPost, f.path("/children"), family.Child{MarriageID: m.ID, ChildID: baby.ID}, &c)
	if status != http.StatusCreated || c.ID == 0 {
		t.Fatalf("create child = %d %+v", status, c)
	}

	var stats family.Stats
	do(t, http.MethodGet, f.path("/stats"), nil, &stats)
	if stats.Marriages != 3 || stats.ChildLinks != 2 || stats.Disconnected != 0 {
		t.Errorf("stats = %+v", stats)
	}

	var moved family.Marriage
	status, _ = do(t, http.MethodPut, f.path("/marriages/%d", m.ID), family.Marriage{P1: family.ID(piet), P2: family.ID(anna), City: "Brugge"}, &moved)
	if status != http.StatusOK || moved.City != "Brugge" {
		t.Errorf("update marriage = %d %+v", status, moved)
	}

	if status, _ = do(t, http.MethodDelete, f.path("/children/%d", c.ID), nil, nil); status != http.StatusNoContent {
		t.Errorf("delete child = %d", status)
	}
	if status, _ = do(t, http.MethodDelete, f.path("/marriages/%d", m.ID), nil, nil); status != http.StatusNoContent {
		t.Errorf("delete marriage = %d", status)
	}
	status, apiErr = do(t, http.MethodDelete, f.path("/marriages/%d", m.ID), nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("delete twice = %d %+v", status, apiErr)
	}
}
