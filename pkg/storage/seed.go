package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/graph"
)

// SeedResult reports what an import created and what it found already
// present.
type SeedResult struct {
	Family  family.Family
	Created bool // false when a family with the seed's name already existed

	People    int
	Marriages int
	Children  int
	Skipped   int
}

// Seed imports a seed file. The import is idempotent: a family with the
// same name is reused, and members (by name, birth city and birth date),
// marriages (by partners) and child links already present are skipped.
func Seed(ctx context.Context, repo Repository, s graph.Seed, logger *log.Logger) (SeedResult, error) {
	if err := s.Validate(); err != nil {
		return SeedResult{}, err
	}
	if logger == nil {
		logger = log.Default()
	}

	var res SeedResult
	var existing family.Dataset
	fam, err := repo.FindFamily(ctx, s.Name)
	switch {
	case err == nil:
		logger.Warn("family already exists, skipping creation", "family", s.Name, "id", fam.ID)
		if existing, err = repo.FetchFamily(ctx, fam.ID); err != nil {
			return res, err
		}
	case errors.Is(err, ErrNotFound):
		if fam, err = repo.CreateFamily(ctx, s.Name); err != nil {
			return res, err
		}
		res.Created = true
		logger.Info("created family", "family", s.Name, "id", fam.ID)
	default:
		return res, err
	}
	res.Family = fam

	ids := make(map[int64]int64, len(s.Members))
	for _, m := range s.Members {
		if p, ok := findMember(existing.People, m); ok {
			logger.Debug("skipping existing member", "name", p.FullName())
			ids[m.ID] = p.ID
			res.Skipped++
			continue
		}
		p, err := repo.CreatePerson(ctx, fam.ID, m.Person())
		if err != nil {
			return res, fmt.Errorf("seed member %d: %w", m.ID, err)
		}
		ids[m.ID] = p.ID
		res.People++
	}
	logger.Info("processed family members", "created", res.People)

	for i, sm := range s.Marriages {
		want := family.Marriage{
			FamilyID: fam.ID,
			P1:       remap(sm.P1, ids),
			P2:       remap(sm.P2, ids),
			City:     sm.City,
			Date:     sm.Date,
		}
		m, ok := findMarriage(existing.Marriages, want)
		if ok {
			res.Skipped++
		} else {
			if m, err = repo.CreateMarriage(ctx, fam.ID, want); err != nil {
				return res, fmt.Errorf("seed marriage %d: %w", i, err)
			}
			res.Marriages++
		}
		for _, c := range sm.Children {
			child := family.Child{FamilyID: fam.ID, MarriageID: m.ID, ChildID: ids[c]}
			if hasChild(existing.Children, child) {
				res.Skipped++
				continue
			}
			if _, err := repo.CreateChild(ctx, fam.ID, child); err != nil {
				return res, fmt.Errorf("seed child %d of marriage %d: %w", c, i, err)
			}
			res.Children++
		}
	}
	logger.Info("processed marriages", "created", res.Marriages, "children", res.Children, "skipped", res.Skipped)
	return res, nil
}

func findMember(people []family.Person, m graph.SeedMember) (family.Person, bool) {
	for _, p := range people {
		if p.FirstName == m.FirstName && p.LastName == m.LastName &&
			p.BirthCity == m.BirthCity && p.BirthDate == m.BirthDate {
			return p, true
		}
	}
	return family.Person{}, false
}

func findMarriage(marriages []family.Marriage, want family.Marriage) (family.Marriage, bool) {
	for _, m := range marriages {
		if sameID(m.P1, want.P1) && sameID(m.P2, want.P2) {
			return m, true
		}
	}
	return family.Marriage{}, false
}

func hasChild(children []family.Child, want family.Child) bool {
	for _, c := range children {
		if c.MarriageID == want.MarriageID && c.ChildID == want.ChildID {
			return true
		}
	}
	return false
}
