package family

import (
	"strconv"
	"time"
)

// Person is a single member of a family.
//
// ID is zero until the record has been persisted. FirstName and LastName are
// required; every other field is optional.
type Person struct {
	ID           int64  `json:"id,omitempty" bson:"_id,omitempty"`
	FamilyID     int64  `json:"familyid,omitempty" bson:"familyid,omitempty"`
	Picture      string `json:"picture,omitempty" bson:"picture,omitempty"`
	FirstName    string `json:"firstname" bson:"firstname"`
	LastName     string `json:"lastname" bson:"lastname"`
	BirthCity    string `json:"birthcity,omitempty" bson:"birthcity,omitempty"`
	BirthCountry string `json:"birthcountry,omitempty" bson:"birthcountry,omitempty"`
	BirthDate    string `json:"birthdate,omitempty" bson:"birthdate,omitempty"`
	DeathCity    string `json:"deathcity,omitempty" bson:"deathcity,omitempty"`
	DeathCountry string `json:"deathcountry,omitempty" bson:"deathcountry,omitempty"`
	DeathDate    string `json:"deathdate,omitempty" bson:"deathdate,omitempty"`
	Comments     string `json:"comments,omitempty" bson:"comments,omitempty"`
}

// FullName returns "FirstName LastName".
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age returns the person's age in whole years, computed as
// (deathYear or now's year) minus birthYear. The second return value is
// false when the birth date is missing or either date cannot be parsed.
func (p Person) Age(now time.Time) (int, bool) {
	if p.BirthDate == "" {
		return 0, false
	}
	born, err := ParseYear(p.BirthDate)
	if err != nil {
		return 0, false
	}
	end := now.Year()
	if p.DeathDate != "" {
		died, err := ParseYear(p.DeathDate)
		if err != nil {
			return 0, false
		}
		end = died
	}
	return end - born, true
}

// IsDeceased reports whether a death date has been recorded.
func (p Person) IsDeceased() bool { return p.DeathDate != "" }

// Marriage joins two partners. A nil partner is an unknown spouse.
type Marriage struct {
	ID       int64  `json:"id,omitempty" bson:"_id,omitempty"`
	FamilyID int64  `json:"familyid,omitempty" bson:"familyid,omitempty"`
	P1       *int64 `json:"p1,omitempty" bson:"p1,omitempty"`
	P2       *int64 `json:"p2,omitempty" bson:"p2,omitempty"`
	City     string `json:"city,omitempty" bson:"city,omitempty"`
	Date     string `json:"date,omitempty" bson:"date,omitempty"`
}

// Partners returns both partner slots in order. Absent partners are nil.
func (m Marriage) Partners() [2]*int64 { return [2]*int64{m.P1, m.P2} }

// Involves reports whether id is one of the marriage partners.
func (m Marriage) Involves(id int64) bool {
	return (m.P1 != nil && *m.P1 == id) || (m.P2 != nil && *m.P2 == id)
}

// Child links a person to the marriage they were born into.
type Child struct {
	ID         int64 `json:"id,omitempty" bson:"_id,omitempty"`
	FamilyID   int64 `json:"familyid,omitempty" bson:"familyid,omitempty"`
	MarriageID int64 `json:"marriageid" bson:"marriageid"`
	ChildID    int64 `json:"childid" bson:"childid"`
}

// Family is a named collection of people owned by a single account.
type Family struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Dataset is the flat relational view of one family.
type Dataset struct {
	People    []Person   `json:"people"`
	Marriages []Marriage `json:"marriages"`
	Children  []Child    `json:"children"`
}

// PersonByID returns the person with the given id.
func (d Dataset) PersonByID(id int64) (Person, bool) {
	for _, p := range d.People {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// MaxPersonID returns the highest person id in people, or 0 if empty.
func MaxPersonID(people []Person) int64 {
	var hi int64
	for _, p := range people {
		hi = max(hi, p.ID)
	}
	return hi
}

// ID returns a pointer to id, convenient for filling Marriage partners.
func ID(id int64) *int64 { return &id }

// IDToken renders an optional id the way node identifiers do: the decimal
// id, or "undefined" when absent.
func IDToken(id *int64) string {
	if id == nil {
		return UnknownToken
	}
	return strconv.FormatInt(*id, 10)
}

// UnknownToken stands in for an absent id inside generated identifiers.
const UnknownToken = "undefined"

// Dependents lists the marriages and child links that reference personID.
// Deleting a person does not cascade, so callers remove these first.
func Dependents(d Dataset, personID int64) ([]Marriage, []Child) {
	var marriages []Marriage
	for _, m := range d.Marriages {
		if m.Involves(personID) {
			marriages = append(marriages, m)
		}
	}
	var children []Child
	for _, c := range d.Children {
		if c.ChildID == personID {
			children = append(children, c)
		}
	}
	return marriages, children
}
