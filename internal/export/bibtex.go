// Package export renders parsed references into citation-manager formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/bibextract/internal/reference"
)

// ToBibTeX converts a reference to a BibTeX entry with the given key.
func ToBibTeX(ref reference.ParsedReference, key string) string {
	entryType := determineEntryType(ref)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	// Authors
	if len(ref.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", escapeLatex(formatAuthors(ref.Authors))))
	} else if ref.Author != "" {
		b.WriteString(fmt.Sprintf("  author = {{%s}},\n", escapeLatex(ref.Author)))
	}

	// Title
	if ref.Title != "" {
		b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(ref.Title)))
	}

	// Venue
	if ref.Journal != "" {
		fieldName := "journal"
		switch entryType {
		case "inproceedings":
			fieldName = "booktitle"
		case "book", "misc":
			fieldName = "howpublished"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(ref.Journal)))
	}

	if ref.Year != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", ref.Year))
	}
	if ref.Volume != "" {
		b.WriteString(fmt.Sprintf("  volume = {%s},\n", ref.Volume))
	}
	if ref.Issue != "" {
		b.WriteString(fmt.Sprintf("  number = {%s},\n", ref.Issue))
	}
	if ref.Pages != "" {
		b.WriteString(fmt.Sprintf("  pages = {%s},\n", bibtexPages(ref.Pages)))
	}
	if ref.Publisher != "" {
		b.WriteString(fmt.Sprintf("  publisher = {%s},\n", escapeLatex(ref.Publisher)))
	}
	if ref.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", ref.DOI))
	}
	if ref.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", ref.URL))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts references to BibTeX, keyed by Citekeys.
func ToBibTeXList(refs []reference.ParsedReference) string {
	keys := Citekeys(refs)
	var entries []string
	for i, ref := range refs {
		entries = append(entries, ToBibTeX(ref, keys[i]))
	}
	return strings.Join(entries, "\n")
}

// determineEntryType returns the BibTeX entry type for a reference.
func determineEntryType(ref reference.ParsedReference) string {
	venue := strings.ToLower(ref.Journal)

	// Conference proceedings
	if ref.Parser == reference.StrategyProceedings ||
		strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	if ref.Journal != "" || ref.Volume != "" {
		return "article"
	}

	// Books carry a publisher instead of a container
	if ref.Publisher != "" || looksLikeBook(ref.Raw) {
		return "book"
	}

	return "misc"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []string) string {
	var formatted []string
	for _, a := range authors {
		n := reference.ParseName(a)
		if n.Given != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", n.Family, n.Given))
		} else {
			formatted = append(formatted, n.Family)
		}
	}
	return strings.Join(formatted, " and ")
}

// bibtexPages writes page ranges with the BibTeX en-dash "--".
func bibtexPages(pages string) string {
	start, end, ok := splitPages(pages)
	if !ok {
		return pages
	}
	return start + "--" + end
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
