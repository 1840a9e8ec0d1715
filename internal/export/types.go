package export

import (
	"strings"

	"github.com/matsen/bibextract/internal/reference"
)

var (
	bookKeywords       = []string{"book", "knyga", "leidykla", "publisher", "press"}
	proceedingKeywords = []string{"proceedings", "conference", "konferencija"}
)

func looksLikeBook(raw string) bool {
	return containsAny(strings.ToLower(raw), bookKeywords)
}

func looksLikeProceedings(raw string) bool {
	return containsAny(strings.ToLower(raw), proceedingKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// splitPages splits "45-67", "45–67" or "45--67" into its ends.
func splitPages(pages string) (start, end string, ok bool) {
	p := strings.ReplaceAll(pages, "–", "-")
	p = strings.ReplaceAll(p, "--", "-")
	start, end, ok = strings.Cut(p, "-")
	return strings.TrimSpace(start), strings.TrimSpace(end), ok
}

// risType guesses the RIS record type.
func risType(ref reference.ParsedReference) string {
	switch {
	case ref.Parser == reference.StrategyProceedings:
		return "CONF"
	case ref.Journal != "":
		return "JOUR"
	case ref.Publisher != "" || looksLikeBook(ref.Raw):
		return "BOOK"
	case looksLikeProceedings(ref.Raw):
		return "CONF"
	case ref.DOI != "" || ref.Volume != "":
		return "JOUR"
	default:
		return "GEN"
	}
}

// cslType guesses the CSL item type.
func cslType(ref reference.ParsedReference) string {
	switch {
	case ref.Parser == reference.StrategyProceedings:
		return "paper-conference"
	case ref.Journal != "":
		return "article-journal"
	case ref.Publisher != "" || looksLikeBook(ref.Raw):
		return "book"
	case looksLikeProceedings(ref.Raw):
		return "paper-conference"
	default:
		return "article"
	}
}
