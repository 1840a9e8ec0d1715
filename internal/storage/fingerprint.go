package storage

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"github.com/matsen/bibextract/internal/reference"
	"github.com/matsen/bibextract/internal/textnorm"
)

// Fingerprint identifies a reference across runs. References with a DOI are
// keyed by it; others by normalised first author, year and title, so the
// same entry extracted from two documents collides.
func Fingerprint(ref reference.ParsedReference) string {
	var key string
	if ref.DOI != "" {
		key = "doi\x00" + strings.ToLower(strings.TrimSpace(ref.DOI))
	} else {
		key = strings.Join([]string{
			"ref",
			fingerprintPart(reference.ParseName(ref.FirstAuthor()).Family),
			strings.TrimSpace(ref.Year),
			fingerprintPart(ref.Title),
		}, "\x00")
	}
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// fingerprintPart lower-cases, folds diacritics and keeps letters and digits
// separated by single spaces.
func fingerprintPart(s string) string {
	s = strings.ToLower(textnorm.FoldDiacritics(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
