package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stamboom/pkg/family"
)

// Seed is a whole family in import-file form.
type Seed struct {
	Name      string         `json:"name"`
	Members   []SeedMember   `json:"members"`
	Marriages []SeedMarriage `json:"marriages"`
}

// SeedMember is a person keyed by a file-local id.
type SeedMember struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	BirthCity    string `json:"birthCity,omitempty"`
	BirthCountry string `json:"birthCountry,omitempty"`
	BirthDate    string `json:"birthDate,omitempty"`
	DeathCity    string `json:"deathCity,omitempty"`
	DeathCountry string `json:"deathCountry,omitempty"`
	DeathDate    string `json:"deathDate,omitempty"`
	Comments     string `json:"comments,omitempty"`
}

// SeedMarriage references members by their file-local id. Children are the
// member ids born into the marriage.
type SeedMarriage struct {
	P1       *int64  `json:"p1,omitempty"`
	P2       *int64  `json:"p2,omitempty"`
	City     string  `json:"city,omitempty"`
	Date     string  `json:"date,omitempty"`
	Children []int64 `json:"children,omitempty"`
}

// ReadSeed decodes and validates a seed file.
func ReadSeed(r io.Reader) (Seed, error) {
	var s Seed
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

// ReadSeedFile reads a seed from disk.
func ReadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSeed(f)
}

// Validate checks that member ids are unique and positive, and that every
// marriage reference names a member.
func (s Seed) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("seed: missing family name")
	}
	ids := make(map[int64]struct{}, len(s.Members))
	for _, m := range s.Members {
		if m.ID <= 0 {
			return fmt.Errorf("seed: member %s %s has no id", m.FirstName, m.LastName)
		}
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("seed: duplicate member id %d", m.ID)
		}
		ids[m.ID] = struct{}{}
	}
	known := func(id *int64) bool {
		if id == nil {
			return true
		}
		_, ok := ids[*id]
		return ok
	}
	for i, m := range s.Marriages {
		if !known(m.P1) || !known(m.P2) {
			return fmt.Errorf("seed: marriage %d references an unknown member", i)
		}
		for _, c := range m.Children {
			if !known(&c) {
				return fmt.Errorf("seed: marriage %d lists unknown child %d", i, c)
			}
		}
	}
	return nil
}

// Person converts the member to a record with its file-local id.
func (m SeedMember) Person() family.Person {
	return family.Person{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		BirthCity:    m.BirthCity,
		BirthCountry: m.BirthCountry,
		BirthDate:    m.BirthDate,
		DeathCity:    m.DeathCity,
		DeathCountry: m.DeathCountry,
		DeathDate:    m.DeathDate,
		Comments:     m.Comments,
	}
}

// Dataset converts the seed into records without touching storage. Person
// ids are the file-local ids; marriages and child links are numbered from 1
// in file order.
func (s Seed) Dataset() family.Dataset {
	ds := family.Dataset{
		People:    make([]family.Person, 0, len(s.Members)),
		Marriages: make([]family.Marriage, 0, len(s.Marriages)),
	}
	for _, m := range s.Members {
		ds.People = append(ds.People, m.Person())
	}
	var childID int64
	for i, m := range s.Marriages {
		mid := int64(i + 1)
		ds.Marriages = append(ds.Marriages, family.Marriage{
			ID:   mid,
			P1:   copyID(m.P1),
			P2:   copyID(m.P2),
			City: m.City,
			Date: m.Date,
		})
		for _, c := range m.Children {
			childID++
			ds.Children = append(ds.Children, family.Child{ID: childID, MarriageID: mid, ChildID: c})
		}
	}
	return ds
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	return family.ID(*id)
}
