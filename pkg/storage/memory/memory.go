// Package memory is an in-process [storage.Repository]. Ids are assigned
// from per-kind counters starting at 1, the way SERIAL columns do.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/storage"
)

// Repository is safe for concurrent use.
type Repository struct {
	mu        sync.RWMutex
	families  map[int64]family.Family
	people    map[int64]family.Person
	marriages map[int64]family.Marriage
	children  map[int64]family.Child
	seq       struct{ family, person, marriage, child int64 }
}

var _ storage.Repository = (*Repository)(nil)

// New returns an empty repository.
func New() *Repository {
	return &Repository{
		families:  make(map[int64]family.Family),
		people:    make(map[int64]family.Person),
		marriages: make(map[int64]family.Marriage),
		children:  make(map[int64]family.Child),
	}
}

func (r *Repository) ListFamilies(ctx context.Context) ([]family.Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]family.Family, 0, len(r.families))
	for _, f := range r.families {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b family.Family) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *Repository) CreateFamily(ctx context.Context, name string) (family.Family, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq.family++
	f := family.Family{ID: r.seq.family, Name: name}
	r.families[f.ID] = f
	return f, nil
}

func (r *Repository) FindFamily(ctx context.Context, name string) (family.Family, error) {
	families, _ := r.ListFamilies(ctx)
	for _, f := range families {
		if f.Name == name {
			return f, nil
		}
	}
	return family.Family{}, storage.NotFound(storage.KindFamily, 0)
}

func (r *Repository) GetFamily(ctx context.Context, familyID int64) (family.Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[familyID]
	if !ok {
		return family.Family{}, storage.NotFound(storage.KindFamily, familyID)
	}
	return f, nil
}

// FetchFamily returns the records ordered by id.
func (r *Repository) FetchFamily(ctx context.Context, familyID int64) (family.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.families[familyID]; !ok {
		return family.Dataset{}, storage.NotFound(storage.KindFamily, familyID)
	}
	var ds family.Dataset
	for _, p := range r.people {
		if p.FamilyID == familyID {
			ds.People = append(ds.People, p)
		}
	}
	for _, m := range r.marriages {
		if m.FamilyID == familyID {
			m.P1, m.P2 = cloneID(m.P1), cloneID(m.P2)
			ds.Marriages = append(ds.Marriages, m)
		}
	}
	for _, c := range r.children {
		if c.FamilyID == familyID {
			ds.Children = append(ds.Children, c)
		}
	}
	slices.SortFunc(ds.People, func(a, b family.Person) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(ds.Marriages, func(a, b family.Marriage) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(ds.Children, func(a, b family.Child) int { return cmp.Compare(a.ID, b.ID) })
	return ds, nil
}

func (r *Repository) CreatePerson(ctx context.Context, familyID int64, p family.Person) (family.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[familyID]; !ok {
		return family.Person{}, storage.NotFound(storage.KindFamily, familyID)
	}
	r.seq.person++
	p.ID, p.FamilyID = r.seq.person, familyID
	r.people[p.ID] = p
	return p, nil
}

func (r *Repository) UpdatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.people[p.ID]
	if !ok || old.FamilyID != p.FamilyID {
		return family.Person{}, storage.NotFound(storage.KindPerson, p.ID)
	}
	r.people[p.ID] = p
	return p, nil
}

func (r *Repository) DeletePerson(ctx context.Context, familyID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.people[id]; !ok || p.FamilyID != familyID {
		return storage.NotFound(storage.KindPerson, id)
	}
	delete(r.people, id)
	return nil
}

func (r *Repository) CreateMarriage(ctx context.Context, familyID int64, m family.Marriage) (family.Marriage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[familyID]; !ok {
		return family.Marriage{}, storage.NotFound(storage.KindFamily, familyID)
	}
	r.seq.marriage++
	m.ID, m.FamilyID = r.seq.marriage, familyID
	m.P1, m.P2 = cloneID(m.P1), cloneID(m.P2)
	r.marriages[m.ID] = m
	return m, nil
}

func (r *Repository) UpdateMarriage(ctx context.Context, m family.Marriage) (family.Marriage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.marriages[m.ID]
	if !ok || old.FamilyID != m.FamilyID {
		return family.Marriage{}, storage.NotFound(storage.KindMarriage, m.ID)
	}
	m.P1, m.P2 = cloneID(m.P1), cloneID(m.P2)
	r.marriages[m.ID] = m
	return m, nil
}

func (r *Repository) DeleteMarriage(ctx context.Context, familyID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.marriages[id]; !ok || m.FamilyID != familyID {
		return storage.NotFound(storage.KindMarriage, id)
	}
	delete(r.marriages, id)
	return nil
}

func (r *Repository) CreateChild(ctx context.Context, familyID int64, c family.Child) (family.Child, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[familyID]; !ok {
		return family.Child{}, storage.NotFound(storage.KindFamily, familyID)
	}
	r.seq.child++
	c.ID, c.FamilyID = r.seq.child, familyID
	r.children[c.ID] = c
	return c, nil
}

func (r *Repository) DeleteChild(ctx context.Context, familyID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.children[id]; !ok || c.FamilyID != familyID {
		return storage.NotFound(storage.KindChild, id)
	}
	delete(r.children, id)
	return nil
}

func (r *Repository) Close() error { return nil }

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	return family.ID(*id)
}
