package export

import (
	"strings"
	"unicode"

	"github.com/matsen/bibextract/internal/reference"
	"github.com/matsen/bibextract/internal/textnorm"
)

// titleStopWords are skipped when picking the title word of a citekey.
var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "of": true, "in": true,
	"for": true, "and": true, "to": true, "with": true, "from": true, "by": true,
}

// Citekey builds the base identifier for ref from its first author's family
// name, its year and the first significant title word, e.g.
// "smith2019deep". Missing parts become "anon" and "nd".
func Citekey(ref reference.ParsedReference) string {
	author := "anon"
	if first := ref.FirstAuthor(); first != "" {
		if family := keyPart(reference.ParseName(first).Family); family != "" {
			author = family
		}
	}

	year := ref.Year
	if year == "" {
		year = "nd"
	}

	var word string
	for _, w := range strings.Fields(ref.Title) {
		w = keyPart(w)
		if w != "" && !titleStopWords[w] {
			word = w
			break
		}
	}

	return author + year + word
}

// Citekeys returns one key per reference, aligned with refs. Repeated base
// keys get "a", "b", ... suffixes in sequence order, so the result only
// depends on the order of refs.
func Citekeys(refs []reference.ParsedReference) []string {
	keys := make([]string, len(refs))
	used := make(map[string]bool, len(refs))
	for i, ref := range refs {
		base := Citekey(ref)
		key := base
		for n := 0; used[key]; n++ {
			key = base + suffix(n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

// suffix returns "a".."z", then "aa", "ab", ...
func suffix(n int) string {
	if n < 26 {
		return string(rune('a' + n))
	}
	return suffix(n/26-1) + suffix(n%26)
}

// keyPart lower-cases s, folds diacritics and keeps only letters and digits.
func keyPart(s string) string {
	s = strings.ToLower(textnorm.FoldDiacritics(s))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
