package store

import (
	"slices"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
)

// AddPerson appends a persisted person.
func (s *Store) AddPerson(p family.Person) error {
	return s.update(func(snap *Snapshot) error {
		if err := requireLoaded(snap); err != nil {
			return err
		}
		snap.Dataset.People = append(slices.Clip(snap.Dataset.People), p)
		return nil
	})
}

// UpdatePerson replaces the person with the same id.
func (s *Store) UpdatePerson(p family.Person) error {
	return s.update(func(snap *Snapshot) error {
		i := slices.IndexFunc(snap.Dataset.People, func(x family.Person) bool { return x.ID == p.ID })
		if i < 0 {
			return ferrors.New(ferrors.ErrCodePersonNotFound, "person %d not found", p.ID)
		}
		people := slices.Clone(snap.Dataset.People)
		people[i] = p
		snap.Dataset.People = people
		return nil
	})
}

// DeletePerson removes a person. Marriages and child links that still
// reference the person must be deleted first.
func (s *Store) DeletePerson(id int64) error {
	return s.update(func(snap *Snapshot) error {
		i := slices.IndexFunc(snap.Dataset.People, func(x family.Person) bool { return x.ID == id })
		if i < 0 {
			return ferrors.New(ferrors.ErrCodePersonNotFound, "person %d not found", id)
		}
		marriages, children := family.Dependents(snap.Dataset, id)
		if len(marriages) > 0 || len(children) > 0 {
			return ferrors.New(ferrors.ErrCodeHasDependents,
				"person %d is still in %d marriage(s) and %d child link(s)", id, len(marriages), len(children))
		}
		snap.Dataset.People = slices.Delete(slices.Clone(snap.Dataset.People), i, i+1)
		return nil
	})
}

// AddMarriage appends a persisted marriage.
func (s *Store) AddMarriage(m family.Marriage) error {
	return s.update(func(snap *Snapshot) error {
		if err := requireLoaded(snap); err != nil {
			return err
		}
		snap.Dataset.Marriages = append(slices.Clip(snap.Dataset.Marriages), m)
		return nil
	})
}

// UpdateMarriage replaces the marriage with the same id.
func (s *Store) UpdateMarriage(m family.Marriage) error {
	return s.update(func(snap *Snapshot) error {
		i := slices.IndexFunc(snap.Dataset.Marriages, func(x family.Marriage) bool { return x.ID == m.ID })
		if i < 0 {
			return ferrors.New(ferrors.ErrCodeNotFound, "marriage %d not found", m.ID)
		}
		marriages := slices.Clone(snap.Dataset.Marriages)
		marriages[i] = m
		snap.Dataset.Marriages = marriages
		return nil
	})
}

// DeleteMarriage removes a marriage. Child links to it are kept; the
// children then show up as disconnected until they are relinked.
func (s *Store) DeleteMarriage(id int64) error {
	return s.update(func(snap *Snapshot) error {
		i := slices.IndexFunc(snap.Dataset.Marriages, func(x family.Marriage) bool { return x.ID == id })
		if i < 0 {
			return ferrors.New(ferrors.ErrCodeNotFound, "marriage %d not found", id)
		}
		snap.Dataset.Marriages = slices.Delete(slices.Clone(snap.Dataset.Marriages), i, i+1)
		return nil
	})
}

// AddChild appends a persisted child link.
func (s *Store) AddChild(c family.Child) error {
	return s.update(func(snap *Snapshot) error {
		if err := requireLoaded(snap); err != nil {
			return err
		}
		snap.Dataset.Children = append(slices.Clip(snap.Dataset.Children), c)
		return nil
	})
}

// DeleteChild removes a child link.
func (s *Store) DeleteChild(id int64) error {
	return s.update(func(snap *Snapshot) error {
		i := slices.IndexFunc(snap.Dataset.Children, func(x family.Child) bool { return x.ID == id })
		if i < 0 {
			return ferrors.New(ferrors.ErrCodeNotFound, "child link %d not found", id)
		}
		snap.Dataset.Children = slices.Delete(slices.Clone(snap.Dataset.Children), i, i+1)
		return nil
	})
}
