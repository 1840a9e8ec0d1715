package reference

import (
	"strings"
	"unicode"
)

// Name is an author string split into family and given parts.
type Name struct {
	Given  string `json:"given,omitempty"`  // Given name(s) or initials
	Family string `json:"family,omitempty"` // Last/family name
}

// ParseName splits a single author string. "Smith, J." and "J. Smith" both
// give Family "Smith", Given "J.". Corporate or single-word names end up
// entirely in Family.
func ParseName(s string) Name {
	s = strings.Trim(strings.Join(strings.Fields(s), " "), " ,;")
	if s == "" {
		return Name{}
	}

	// "Family, Given"
	if family, given, ok := strings.Cut(s, ","); ok {
		return Name{Given: strings.TrimSpace(given), Family: strings.TrimSpace(family)}
	}

	words := strings.Fields(s)
	if len(words) == 1 {
		return Name{Family: s}
	}

	// "Family J." with trailing initials
	last := words[len(words)-1]
	if isInitials(last) && !isInitials(words[0]) {
		return Name{Given: strings.Join(words[1:], " "), Family: words[0]}
	}

	// "Given Family"
	return Name{Given: strings.Join(words[:len(words)-1], " "), Family: last}
}

// Initials returns the given names reduced to initials, e.g. "John Paul" to
// "J. P.".
func (n Name) Initials() string {
	var out []string
	for _, w := range strings.FieldsFunc(n.Given, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.'
	}) {
		for i, part := range strings.Split(w, "-") {
			r := []rune(part)
			if len(r) == 0 {
				continue
			}
			initial := string(unicode.ToUpper(r[0])) + "."
			if i > 0 && len(out) > 0 {
				out[len(out)-1] += "-" + initial
				continue
			}
			out = append(out, initial)
		}
	}
	return strings.Join(out, " ")
}

// isInitials reports whether w looks like "J." or "J.K." or "JK".
func isInitials(w string) bool {
	letters := 0
	for _, r := range w {
		switch {
		case r == '.' || r == '-':
		case unicode.IsUpper(r):
			letters++
		default:
			return false
		}
	}
	return letters > 0 && letters <= 3
}
