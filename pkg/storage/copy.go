package storage

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/stamboom/pkg/family"
)

// CopySuffix is appended to the name of a copied family.
const CopySuffix = "_COPY"

// CopyResult maps every source id to the id of its copy.
type CopyResult struct {
	Family    family.Family
	People    map[int64]int64
	Marriages map[int64]int64
	Children  map[int64]int64
}

// CopyFamily duplicates a family and all its records into a new family
// named "<name>_COPY". Records are copied in id order, references are
// remapped to the new ids and the copy is verified against the source
// before returning.
func CopyFamily(ctx context.Context, repo Repository, familyID int64) (CopyResult, error) {
	src, err := repo.GetFamily(ctx, familyID)
	if err != nil {
		return CopyResult{}, err
	}
	ds, err := repo.FetchFamily(ctx, familyID)
	if err != nil {
		return CopyResult{}, err
	}

	dst, err := repo.CreateFamily(ctx, src.Name+CopySuffix)
	if err != nil {
		return CopyResult{}, err
	}
	res := CopyResult{
		Family:    dst,
		People:    make(map[int64]int64, len(ds.People)),
		Marriages: make(map[int64]int64, len(ds.Marriages)),
		Children:  make(map[int64]int64, len(ds.Children)),
	}

	people := slices.SortedFunc(slices.Values(ds.People), func(a, b family.Person) int { return cmp.Compare(a.ID, b.ID) })
	for _, p := range people {
		oldID := p.ID
		p.ID, p.FamilyID = 0, dst.ID
		created, err := repo.CreatePerson(ctx, dst.ID, p)
		if err != nil {
			return res, fmt.Errorf("copy person %d: %w", oldID, err)
		}
		res.People[oldID] = created.ID
	}

	marriages := slices.SortedFunc(slices.Values(ds.Marriages), func(a, b family.Marriage) int { return cmp.Compare(a.ID, b.ID) })
	for _, m := range marriages {
		oldID := m.ID
		m.ID, m.FamilyID = 0, dst.ID
		m.P1 = remap(m.P1, res.People)
		m.P2 = remap(m.P2, res.People)
		created, err := repo.CreateMarriage(ctx, dst.ID, m)
		if err != nil {
			return res, fmt.Errorf("copy marriage %d: %w", oldID, err)
		}
		res.Marriages[oldID] = created.ID
	}

	children := slices.SortedFunc(slices.Values(ds.Children), func(a, b family.Child) int { return cmp.Compare(a.ID, b.ID) })
	for _, c := range children {
		mid, okM := res.Marriages[c.MarriageID]
		cid, okC := res.People[c.ChildID]
		if !okM || !okC {
			return res, fmt.Errorf("copy child link %d: references a record outside the family", c.ID)
		}
		created, err := repo.CreateChild(ctx, dst.ID, family.Child{FamilyID: dst.ID, MarriageID: mid, ChildID: cid})
		if err != nil {
			return res, fmt.Errorf("copy child link %d: %w", c.ID, err)
		}
		res.Children[c.ID] = created.ID
	}

	if err := verifyCopy(ctx, repo, ds, res); err != nil {
		return res, err
	}
	return res, nil
}

// verifyCopy re-reads the copy and compares it field by field with the
// source, after mapping ids.
func verifyCopy(ctx context.Context, repo Repository, src family.Dataset, res CopyResult) error {
	dst, err := repo.FetchFamily(ctx, res.Family.ID)
	if err != nil {
		return err
	}
	if len(dst.People) != len(src.People) || len(dst.Marriages) != len(src.Marriages) || len(dst.Children) != len(src.Children) {
		return fmt.Errorf("copy verification: record counts differ")
	}

	byID := make(map[int64]family.Person, len(dst.People))
	for _, p := range dst.People {
		byID[p.ID] = p
	}
	for _, p := range src.People {
		got := byID[res.People[p.ID]]
		want := p
		want.ID, want.FamilyID = got.ID, got.FamilyID
		if got != want {
			return fmt.Errorf("copy verification: person %d does not match", p.ID)
		}
	}

	marriages := make(map[int64]family.Marriage, len(dst.Marriages))
	for _, m := range dst.Marriages {
		marriages[m.ID] = m
	}
	for _, m := range src.Marriages {
		got := marriages[res.Marriages[m.ID]]
		if got.City != m.City || got.Date != m.Date ||
			!sameID(got.P1, remap(m.P1, res.People)) || !sameID(got.P2, remap(m.P2, res.People)) {
			return fmt.Errorf("copy verification: marriage %d does not match", m.ID)
		}
	}

	children := make(map[int64]family.Child, len(dst.Children))
	for _, c := range dst.Children {
		children[c.ID] = c
	}
	for _, c := range src.Children {
		got := children[res.Children[c.ID]]
		if got.MarriageID != res.Marriages[c.MarriageID] || got.ChildID != res.People[c.ChildID] {
			return fmt.Errorf("copy verification: child link %d does not match", c.ID)
		}
	}
	return nil
}

func remap(id *int64, mapping map[int64]int64) *int64 {
	if id == nil {
		return nil
	}
	if n, ok := mapping[*id]; ok {
		return family.ID(n)
	}
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
