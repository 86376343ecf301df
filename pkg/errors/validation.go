package errors

import (
	"strings"
	"unicode"

	"github.com/matzehuels/stamboom/pkg/family"
)

const (
	maxNameLength    = 200
	maxCommentLength = 10000
)

// ValidatePerson checks the fields a person must have before it is stored:
// a first and last name without control characters, and well-formed dates
// that do not put death before birth.
func ValidatePerson(p family.Person) error {
	if err := validateName("first name", p.FirstName); err != nil {
		return err
	}
	if err := validateName("last name", p.LastName); err != nil {
		return err
	}
	if len(p.Comments) > maxCommentLength {
		return New(ErrCodeInvalidPerson, "comments too long (max %d characters)", maxCommentLength)
	}
	if p.BirthCountry != "" && !isCountryCode(p.BirthCountry) {
		return New(ErrCodeInvalidPerson, "birth country must be a two letter code: %q", p.BirthCountry)
	}
	if p.DeathCountry != "" && !isCountryCode(p.DeathCountry) {
		return New(ErrCodeInvalidPerson, "death country must be a two letter code: %q", p.DeathCountry)
	}
	if p.BirthDate != "" {
		if err := ValidateDate(p.BirthDate); err != nil {
			return err
		}
	}
	if p.DeathDate != "" {
		if err := ValidateDate(p.DeathDate); err != nil {
			return err
		}
	}
	if p.BirthDate != "" && p.DeathDate != "" {
		born, _ := family.ParseYear(p.BirthDate)
		died, _ := family.ParseYear(p.DeathDate)
		if died < born {
			return New(ErrCodeInvalidDate, "death year %d is before birth year %d", died, born)
		}
	}
	return nil
}

func validateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidPerson, "%s cannot be empty", field)
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPerson, "%s too long (max %d characters)", field, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPerson, "%s contains control characters", field)
		}
	}
	return nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ValidateDate accepts a bare four digit year or a full date in one of the
// layouts [family.ParseDate] understands.
func ValidateDate(s string) error {
	if s == "" {
		return New(ErrCodeInvalidDate, "date cannot be empty")
	}
	if _, err := family.ParseYear(s); err != nil {
		return Wrap(ErrCodeInvalidDate, err, "unrecognised date %q", s)
	}
	return nil
}

// ValidateFamilyName checks a family name for storage.
func ValidateFamilyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidInput, "family name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "family name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "family name contains control characters")
		}
	}
	return nil
}

// ValidateMarriage rejects a marriage of a person with themselves.
func ValidateMarriage(m family.Marriage) error {
	if m.P1 != nil && m.P2 != nil && *m.P1 == *m.P2 {
		return New(ErrCodeInvalidInput, "person %d cannot marry themselves", *m.P1)
	}
	if m.Date != "" {
		return ValidateDate(m.Date)
	}
	return nil
}

// ValidateURL requires an http or https URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
