package store

import (
	"sync"
	"testing"
	"time"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
)

func loaded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Load(family.Family{ID: 1, Name: "Jansen"}, family.Dataset{
		People: []family.Person{
			{ID: 1, FirstName: "Jan", LastName: "Jansen"},
			{ID: 2, FirstName: "Marie", LastName: "de Vries"},
			{ID: 3, FirstName: "Piet", LastName: "Jansen"},
		},
		Marriages: []family.Marriage{{ID: 1, P1: family.ID(1), P2: family.ID(2)}},
		Children:  []family.Child{{ID: 1, MarriageID: 1, ChildID: 3}},
	})
	return s
}

func TestLifecycle(t *testing.T) {
	s := New()
	if s.Snapshot().Loaded() {
		t.Fatal("new store should be empty")
	}

	var versions []uint64
	unsubscribe := s.Subscribe(func(snap Snapshot) { versions = append(versions, snap.Version) })

	s.Load(family.Family{ID: 1, Name: "Jansen"}, family.Dataset{People: []family.Person{{ID: 1}}})
	if snap := s.Snapshot(); !snap.Loaded() || snap.Family.Name != "Jansen" || len(snap.Dataset.People) != 1 {
		t.Errorf("after Load = %+v", snap)
	}

	s.Replace(family.Family{ID: 2, Name: "Smit"}, family.Dataset{})
	if snap := s.Snapshot(); snap.Family.ID != 2 || len(snap.Dataset.People) != 0 {
		t.Errorf("after Replace = %+v", snap)
	}

	s.Clear()
	if s.Snapshot().Loaded() {
		t.Error("Clear should unload the family")
	}

	unsubscribe()
	s.Load(family.Family{ID: 3}, family.Dataset{})

	if len(versions) != 3 || versions[0] != 1 || versions[2] != 3 {
		t.Errorf("notified versions = %v", versions)
	}
}

func TestLoadCopiesInput(t *testing.T) {
	people := []family.Person{{ID: 1, FirstName: "Jan"}}
	s := New()
	s.Load(family.Family{ID: 1}, family.Dataset{People: people})
	people[0].FirstName = "changed"
	if got := s.Snapshot().Dataset.People[0].FirstName; got != "Jan" {
		t.Errorf("store shares the caller's slice: %q", got)
	}
}

func TestMutationsReplaceSlices(t *testing.T) {
	s := loaded(t)
	before := s.Snapshot()

	if err := s.UpdatePerson(family.Person{ID: 3, FirstName: "Pieter", LastName: "Jansen"}); err != nil {
		t.Fatal(err)
	}
	after := s.Snapshot()

	if before.Dataset.People[2].FirstName != "Piet" {
		t.Error("earlier snapshot was modified")
	}
	if after.Dataset.People[2].FirstName != "Pieter" {
		t.Errorf("update not applied: %+v", after.Dataset.People[2])
	}
	if &after.Dataset.People[0] == &before.Dataset.People[0] {
		t.Error("people slice should have a new identity")
	}
	if &after.Dataset.Marriages[0] != &before.Dataset.Marriages[0] {
		t.Error("untouched slices should keep their identity")
	}
	if after.Version != before.Version+1 {
		t.Errorf("Version = %d, want %d", after.Version, before.Version+1)
	}
}

func TestAdd(t *testing.T) {
	s := loaded(t)
	var calls int
	s.Subscribe(func(Snapshot) { calls++ })

	if err := s.AddPerson(family.Person{ID: 4, FirstName: "Kees", LastName: "Smit"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMarriage(family.Marriage{ID: 2, P1: family.ID(3)}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddChild(family.Child{ID: 2, MarriageID: 2, ChildID: 4}); err != nil {
		t.Fatal(err)
	}

	ds := s.Snapshot().Dataset
	if len(ds.People) != 4 || len(ds.Marriages) != 2 || len(ds.Children) != 2 {
		t.Errorf("dataset = %d/%d/%d", len(ds.People), len(ds.Marriages), len(ds.Children))
	}
	if calls != 3 {
		t.Errorf("subscriber called %d times, want 3", calls)
	}
}

func TestAddRequiresFamily(t *testing.T) {
	s := New()
	err := s.AddPerson(family.Person{ID: 1})
	if !ferrors.Is(err, ferrors.ErrCodeFamilyNotFound) {
		t.Errorf("AddPerson on empty store = %v", err)
	}
}

func TestDeletePerson(t *testing.T) {
	s := loaded(t)

	tests := []struct {
		name string
		id   int64
		code ferrors.Code
	}{
		{"Partner", 1, ferrors.ErrCodeHasDependents},
		{"Child", 3, ferrors.ErrCodeHasDependents},
		{"Missing", 99, ferrors.ErrCodePersonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.DeletePerson(tt.id); !ferrors.Is(err, tt.code) {
				t.Errorf("DeletePerson(%d) = %v, want %s", tt.id, err, tt.code)
			}
		})
	}

	version := s.Snapshot().Version
	if err := s.DeleteChild(1); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePerson(3); err != nil {
		t.Fatalf("DeletePerson after removing the child link: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Dataset.People) != 2 || snap.Version != version+2 {
		t.Errorf("after delete: %d people, version %d", len(snap.Dataset.People), snap.Version)
	}
}

func TestFailedMutationDoesNotNotify(t *testing.T) {
	s := loaded(t)
	var calls int
	s.Subscribe(func(Snapshot) { calls++ })
	version := s.Snapshot().Version

	_ = s.UpdateMarriage(family.Marriage{ID: 42})
	_ = s.DeleteMarriage(42)
	_ = s.DeleteChild(42)

	if calls != 0 || s.Snapshot().Version != version {
		t.Errorf("failed mutations notified %d times", calls)
	}
}

func TestDeleteMarriageKeepsChildLinks(t *testing.T) {
	s := loaded(t)
	if err := s.UpdateMarriage(family.Marriage{ID: 1, P1: family.ID(1), P2: family.ID(2), City: "Utrecht"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMarriage(1); err != nil {
		t.Fatal(err)
	}
	ds := s.Snapshot().Dataset
	if len(ds.Marriages) != 0 || len(ds.Children) != 1 {
		t.Errorf("dataset = %d marriages, %d children", len(ds.Marriages), len(ds.Children))
	}
}

func TestNotificationsFollowVersionOrder(t *testing.T) {
	s := loaded(t)

	var (
		mu       sync.Mutex
		versions []uint64
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(snap Snapshot) {
		if snap.Version == 2 {
			close(entered)
			<-release
		}
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.AddPerson(family.Person{ID: 10, FirstName: "Kees"}); err != nil {
			t.Error(err)
		}
	}()
	<-entered
	go func() {
		defer wg.Done()
		if err := s.AddPerson(family.Person{ID: 11, FirstName: "Bep"}); err != nil {
			t.Error(err)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	if v := s.Snapshot().Version; v != 2 {
		t.Errorf("version %d committed while version 2 was being delivered", v)
	}
	close(release)
	wg.Wait()

	if len(versions) != 2 || versions[0] != 2 || versions[1] != 3 {
		t.Fatalf("notified versions = %v, want [2 3]", versions)
	}
	if last := versions[len(versions)-1]; last != s.Snapshot().Version {
		t.Errorf("last notification carried version %d, store is at %d", last, s.Snapshot().Version)
	}
}

func TestConcurrentMutationsNotifyEveryVersion(t *testing.T) {
	s := loaded(t)
	start := s.Snapshot().Version

	var (
		mu   sync.Mutex
		seen []Snapshot
	)
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})

	const writers = 32
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddPerson(family.Person{ID: int64(100 + i), FirstName: "Kind"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if len(seen) != writers {
		t.Fatalf("got %d notifications, want %d", len(seen), writers)
	}
	for i, snap := range seen {
		if want := start + uint64(i) + 1; snap.Version != want {
			t.Fatalf("notification %d carried version %d, want %d", i, snap.Version, want)
		}
		if len(snap.Dataset.People) != 3+i+1 {
			t.Errorf("notification %d has %d people", i, len(snap.Dataset.People))
		}
	}
	last := seen[len(seen)-1]
	if final := s.Snapshot(); last.Version != final.Version || len(last.Dataset.People) != len(final.Dataset.People) {
		t.Errorf("last notification v%d, store v%d", last.Version, final.Version)
	}
}
