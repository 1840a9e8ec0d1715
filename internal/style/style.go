// Package style renders parsed references as human-readable citations in a
// handful of common citation styles.
package style

import (
	"fmt"
	"strings"

	"github.com/matsen/bibextract/internal/reference"
)

// Style names a citation style.
type Style string

const (
	APA7   Style = "APA 7"
	IEEE   Style = "IEEE"
	ISO690 Style = "ISO 690"
	MLA9   Style = "MLA 9"
)

// SupportedStyles lists the styles FormatReference can produce.
var SupportedStyles = []Style{APA7, IEEE, ISO690, MLA9}

// styleTokens maps the lower-case token searched for in a style name.
var styleTokens = []struct {
	token string
	style Style
}{
	{"apa", APA7},
	{"ieee", IEEE},
	{"iso", ISO690},
	{"mla", MLA9},
}

// Lookup resolves a style name by case-insensitive substring, so "apa",
// "APA 7th" and "apa7" all give APA7.
func Lookup(name string) (Style, bool) {
	l := strings.ToLower(strings.TrimSpace(name))
	for _, t := range styleTokens {
		if strings.Contains(l, t.token) {
			return t.style, true
		}
	}
	return "", false
}

// Resolve is Lookup with APA 7 as the fallback.
func Resolve(name string) Style {
	if s, ok := Lookup(name); ok {
		return s
	}
	return APA7
}

// FormatReference renders ref in the named style. number is the 1-based
// position used by numbered styles.
func FormatReference(ref reference.ParsedReference, style string, number int) string {
	switch Resolve(style) {
	case IEEE:
		return formatIEEE(ref, number)
	case ISO690:
		return formatISO690(ref)
	case MLA9:
		return formatMLA9(ref)
	default:
		return formatAPA7(ref)
	}
}

// FormatBibliography renders refs in order, separated by blank lines.
func FormatBibliography(refs []reference.ParsedReference, style string) string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = FormatReference(ref, style, i+1)
	}
	return strings.Join(out, "\n\n")
}

func formatAPA7(ref reference.ParsedReference) string {
	parts := []string{fmt.Sprintf("%s (%s). %s",
		apaAuthors(authorList(ref)), orDefault(ref.Year, "n.d."), period(orDefault(ref.Title, "Untitled")))}

	if ref.Journal != "" {
		j := "*" + ref.Journal + "*"
		if ref.Volume != "" {
			j += ", *" + ref.Volume + "*"
			if ref.Issue != "" {
				j += "(" + ref.Issue + ")"
			}
		}
		if ref.Pages != "" {
			j += ", " + ref.Pages
		}
		parts = append(parts, j+".")
	}

	if ref.DOI != "" {
		parts = append(parts, "https://doi.org/"+ref.DOI)
	} else if ref.URL != "" {
		parts = append(parts, ref.URL)
	}
	return strings.Join(parts, " ")
}

func formatIEEE(ref reference.ParsedReference, number int) string {
	parts := []string{
		fmt.Sprintf("[%d] %s,", number, ieeeAuthors(authorList(ref))),
		fmt.Sprintf(`"%s,"`, orDefault(ref.Title, "Untitled")),
	}

	switch {
	case ref.Journal != "":
		j := "*" + ref.Journal + "*"
		if ref.Volume != "" {
			j += ", vol. " + ref.Volume
		}
		if ref.Issue != "" {
			j += ", no. " + ref.Issue
		}
		if ref.Pages != "" {
			j += ", pp. " + ref.Pages
		}
		if ref.Year != "" {
			j += ", " + ref.Year
		}
		parts = append(parts, j+".")
	case ref.Year != "":
		parts = append(parts, ref.Year+".")
	}

	if ref.DOI != "" {
		parts = append(parts, "doi: "+ref.DOI+".")
	}
	return strings.Join(parts, " ")
}

func formatISO690(ref reference.ParsedReference) string {
	year := orDefault(ref.Year, "n.d.")
	parts := []string{isoAuthors(authorList(ref)) + " " + period(orDefault(ref.Title, "Untitled"))}

	if ref.Journal != "" {
		j := "*" + ref.Journal + "*"
		if ref.Year != "" {
			j += ", " + year
		}
		if ref.Volume != "" {
			j += ", vol. " + ref.Volume
		}
		if ref.Issue != "" {
			j += ", no. " + ref.Issue
		}
		if ref.Pages != "" {
			j += ", p. " + ref.Pages
		}
		parts = append(parts, j+".")
	} else {
		parts = append(parts, period(year))
	}

	if ref.DOI != "" {
		parts = append(parts, "DOI: "+ref.DOI+".")
	} else if ref.URL != "" {
		parts = append(parts, "Prieiga per: "+ref.URL+".")
	}
	return strings.Join(parts, " ")
}

func formatMLA9(ref reference.ParsedReference) string {
	parts := []string{
		mlaAuthors(authorList(ref)),
		`"` + period(orDefault(ref.Title, "Untitled")) + `"`,
	}

	if ref.Journal != "" {
		j := "*" + ref.Journal + "*"
		if ref.Volume != "" {
			j += ", vol. " + ref.Volume
		}
		if ref.Issue != "" {
			j += ", no. " + ref.Issue
		}
		if ref.Year != "" {
			j += ", " + ref.Year
		}
		if ref.Pages != "" {
			j += ", pp. " + ref.Pages
		}
		parts = append(parts, j+".")
	}

	if ref.DOI != "" {
		parts = append(parts, "https://doi.org/"+ref.DOI+".")
	} else if ref.URL != "" {
		parts = append(parts, ref.URL+".")
	}
	return strings.Join(parts, " ")
}

// authorList returns the split authors, or the display string as a single
// author when splitting found nothing.
func authorList(ref reference.ParsedReference) []string {
	if len(ref.Authors) > 0 {
		return ref.Authors
	}
	if a := strings.TrimSpace(ref.Author); a != "" {
		return []string{a}
	}
	return nil
}

func apaAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return "Anon."
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " & " + authors[1]
	default:
		return strings.Join(authors[:len(authors)-1], ", ") + ", & " + authors[len(authors)-1]
	}
}

func ieeeAuthors(authors []string) string {
	switch {
	case len(authors) == 0:
		return "Anon"
	case len(authors) <= 3:
		return strings.Join(authors, ", ")
	default:
		return authors[0] + " et al."
	}
}

func mlaAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return "Anon."
	case 1:
		return period(authors[0])
	case 2:
		return authors[0] + ", and " + period(authors[1])
	default:
		return authors[0] + ", et al."
	}
}

// isoAuthors upper-cases family names: "SMITH, J., JONES, K.".
func isoAuthors(authors []string) string {
	if len(authors) == 0 {
		return "ANON."
	}
	out := make([]string, len(authors))
	for i, a := range authors {
		n := reference.ParseName(a)
		if n.Given == "" {
			out[i] = strings.ToUpper(n.Family)
			continue
		}
		out[i] = strings.ToUpper(n.Family) + ", " + n.Given
	}
	return period(strings.Join(out, ", "))
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// period terminates s with a full stop unless it already ends a sentence.
func period(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}
