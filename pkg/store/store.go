// Package store holds the records of the selected family and tells
// subscribers whenever they change.
//
// A [Store] starts empty, is filled by [Store.Load], replaced wholesale by
// [Store.Replace] on a family switch and emptied by [Store.Clear] on logout.
// Each mutation replaces the affected slice instead of editing it, so a
// [Snapshot] handed out earlier never changes underneath its holder and
// "changed" means "different slice", never a deep comparison.
//
//	s := store.New()
//	unsubscribe := s.Subscribe(func(snap store.Snapshot) {
//	    refresher.Trigger(snap.Dataset)
//	})
//	defer unsubscribe()
//	s.Load(fam, ds)
package store

import (
	"slices"
	"sync"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
)

// Snapshot is the store content at one version. Its slices must be treated
// as read-only.
type Snapshot struct {
	Family  *family.Family
	Dataset family.Dataset
	Version uint64
}

// Loaded reports whether a family is selected.
func (s Snapshot) Loaded() bool { return s.Family != nil }

// Store is an explicit state container for one family. The zero value is
// not usable; use New.
type Store struct {
	// commitMu serializes commit and notification so subscribers see
	// versions in order.
	commitMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New returns an empty store.
func New() *Store {
	return &Store{subs: make(map[int]func(Snapshot))}
}

// Snapshot returns the current content.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to be called after every change. It returns a
// function that removes the subscription. Subscribers run synchronously on
// the mutating goroutine, in registration order, and see versions in
// increasing order. A subscriber must not mutate the store; it may read it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// update applies fn to a copy of the snapshot under the write lock and, if
// fn succeeds, publishes it and notifies subscribers. The next commit waits
// until every subscriber has returned.
func (s *Store) update(fn func(*Snapshot) error) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	next := s.snap
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	next.Version = s.snap.Version + 1
	s.snap = next
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// Load selects a family and its records.
func (s *Store) Load(f family.Family, ds family.Dataset) {
	_ = s.update(func(snap *Snapshot) error {
		snap.Family = &f
		snap.Dataset = family.Dataset{
			People:    slices.Clone(ds.People),
			Marriages: slices.Clone(ds.Marriages),
			Children:  slices.Clone(ds.Children),
		}
		return nil
	})
}

// Replace switches to another family. It is Load under the name the
// lifecycle uses.
func (s *Store) Replace(f family.Family, ds family.Dataset) { s.Load(f, ds) }

// Clear empties the store.
func (s *Store) Clear() {
	_ = s.update(func(snap *Snapshot) error {
		snap.Family = nil
		snap.Dataset = family.Dataset{}
		return nil
	})
}

func requireLoaded(snap *Snapshot) error {
	if !snap.Loaded() {
		return ferrors.New(ferrors.ErrCodeFamilyNotFound, "no family loaded")
	}
	return nil
}
