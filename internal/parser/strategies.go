package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matsen/bibextract/internal/reference"
	"github.com/matsen/bibextract/internal/textnorm"
)

var (
	// Smith, J. (2019). Title. Journal, 5(2), 100-120.
	authorDateRe = regexp.MustCompile(`^\s*(.+?)\s*\(\s*((?:19|20)\d{2})[a-z]?\s*\)\s*\.?\s*(.+)$`)

	// J. Smith, "Title," Journal, vol. 1, 2020. The comma after the title
	// may sit inside or outside the closing quote.
	numberedRe = regexp.MustCompile(`^\s*(?:\[\d+\]\s*)?([^"“”]+?)\s*,\s*["“”](.+?),?["“”]\s*,?\s*(.+)$`)

	// Smith, J. 2008 Title. In Proc. of X, pp. 1-10.
	proceedingsRe = regexp.MustCompile(`^\s*(.+?)\.\s*((?:19|20)\d{2})\s+(.+?)\.\s+In\s+(.+)$`)

	// The container of a proceedings entry ends at the pages, DOI or publisher.
	venueEndRe = regexp.MustCompile(`(?i)(?:,?\s*pp?\.\s*\d|\.\s*(?:doi|https?://|ieee\b))`)
)

// strategy parses a cleaned entry or abstains.
type strategy func(clean string) (reference.ParsedReference, bool)

// strategies in tie-break order. The generic strategy never abstains.
var strategies = []strategy{
	parseAuthorDate,
	parseNumbered,
	parseProceedings,
	func(clean string) (reference.ParsedReference, bool) { return parseGeneric(clean), true },
}

func parseAuthorDate(clean string) (reference.ParsedReference, bool) {
	m := authorDateRe.FindStringSubmatch(clean)
	if m == nil {
		return reference.ParsedReference{}, false
	}
	author := textnorm.NormalizeWhitespace(m[1])
	rest := textnorm.NormalizeWhitespace(m[3])
	vol, issue := extractVolIssue(rest)

	return withConfidence(reference.ParsedReference{
		Title:     extractTitle(rest),
		Year:      m[2],
		Author:    author,
		Authors:   splitAuthors(author),
		Journal:   extractJournal(rest),
		Volume:    vol,
		Issue:     issue,
		Pages:     extractPages(rest),
		Publisher: extractPublisher(rest),
		DOI:       extractDOI(clean),
		URL:       extractURL(clean),
		Parser:    reference.StrategyAuthorDate,
	}), true
}

func parseNumbered(clean string) (reference.ParsedReference, bool) {
	m := numberedRe.FindStringSubmatch(clean)
	if m == nil {
		return reference.ParsedReference{}, false
	}
	author := textnorm.NormalizeWhitespace(strings.TrimRight(m[1], ","))
	rest := textnorm.NormalizeWhitespace(m[3])
	vol, issue := extractVolIssue(rest)

	year := textnorm.FindYear(rest)
	if year == "" {
		year = textnorm.FindYear(clean)
	}

	return withConfidence(reference.ParsedReference{
		Title:   textnorm.NormalizeWhitespace(m[2]),
		Year:    year,
		Author:  author,
		Authors: splitAuthors(author),
		Journal: extractJournal(rest),
		Volume:  vol,
		Issue:   issue,
		Pages:   extractPages(rest),
		DOI:     extractDOI(clean),
		URL:     extractURL(clean),
		Parser:  reference.StrategyNumbered,
	}), true
}

func parseProceedings(clean string) (reference.ParsedReference, bool) {
	m := proceedingsRe.FindStringSubmatch(clean)
	if m == nil {
		return reference.ParsedReference{}, false
	}
	author := textnorm.NormalizeWhitespace(m[1])
	rest := textnorm.NormalizeWhitespace(m[4])
	vol, issue := extractVolIssue(rest)

	// The journal field doubles as the proceedings container.
	venue := rest
	if loc := venueEndRe.FindStringIndex(rest); loc != nil {
		venue = rest[:loc[0]]
	}
	venue = textnorm.NormalizeWhitespace(strings.TrimRight(venue, ".,;"))
	if len([]rune(venue)) < 6 {
		venue = extractJournal(rest)
	}

	return withConfidence(reference.ParsedReference{
		Title:   textnorm.NormalizeWhitespace(m[3]),
		Year:    m[2],
		Author:  author,
		Authors: splitAuthors(author),
		Journal: venue,
		Volume:  vol,
		Issue:   issue,
		Pages:   extractPages(rest),
		DOI:     extractDOI(clean),
		URL:     extractURL(clean),
		Parser:  reference.StrategyProceedings,
	}), true
}

// parseGeneric splits the entry around its first year token, or its first
// period when there is no year.
func parseGeneric(clean string) reference.ParsedReference {
	author, rest := "", clean
	if loc := textnorm.YearRe.FindStringIndex(clean); loc != nil {
		if cut := strings.TrimRight(clean[:loc[0]], " ,.("); len([]rune(cut)) > 2 {
			author = textnorm.NormalizeWhitespace(cut)
			rest = textnorm.NormalizeWhitespace(clean[loc[1]:])
		}
	} else if dot := strings.Index(clean, "."); dot >= 0 && utf8.RuneCountInString(clean[:dot]) > 4 {
		author = textnorm.NormalizeWhitespace(clean[:dot])
		rest = textnorm.NormalizeWhitespace(clean[dot+1:])
	}
	vol, issue := extractVolIssue(clean)

	return withConfidence(reference.ParsedReference{
		Title:     extractTitle(rest),
		Year:      textnorm.FindYear(clean),
		Author:    author,
		Authors:   splitAuthors(author),
		Journal:   extractJournal(rest),
		Volume:    vol,
		Issue:     issue,
		Pages:     extractPages(clean),
		Publisher: extractPublisher(rest),
		DOI:       extractDOI(clean),
		URL:       extractURL(clean),
		Parser:    reference.StrategyGeneric,
	})
}
