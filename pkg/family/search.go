package family

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips diacritics, so "Désiré" and "desire" compare
// equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func isMark(r rune) bool { return unicode.Is(unicode.Mn, r) }

// Matches reports whether query is a substring of the person's first name,
// last name or comments, ignoring case and accents.
func (p Person) Matches(query string) bool {
	q := fold(query)
	return strings.Contains(fold(p.FirstName), q) ||
		strings.Contains(fold(p.LastName), q) ||
		strings.Contains(fold(p.Comments), q)
}

// Search returns the people matching query in input order.
// An empty query matches nothing.
func Search(people []Person, query string) []Person {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	var out []Person
	for _, p := range people {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a family name into a lowercase ASCII file name stem, e.g.
// "Van Dijk-Rosé" becomes "van-dijk-rose". It returns "" when nothing
// printable is left.
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(fold(name), "-"), "-")
}
