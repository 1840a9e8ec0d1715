package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matsen/bibextract/internal/textnorm"
)

var (
	doiRe   = regexp.MustCompile(`(?i)(?:doi\s*:\s*|https?://(?:dx\.)?doi\.org/)(10\.\d{4,9}/[^\s,;]+)`)
	urlRe   = regexp.MustCompile(`(https?://[^\s,;]+)`)
	pagesRe = regexp.MustCompile(`(?:pp?\.\s*)?(\d{1,5}\s*[-–]\s*\d{1,5})`)

	// Volume and issue, tried in order: "5(2)", "vol. 12, no. 3", "Vol. 12".
	volIssueRe = regexp.MustCompile(`(?i)(?:vol\.?\s*)?(\d{1,4})\s*\((\d{1,4})\)`)
	volNoRe    = regexp.MustCompile(`(?i)\bvol\.?\s*(\d{1,4})\s*,?\s*(?:no\.?|nr\.?|issue)\s*(\d{1,4})\b`)
	volOnlyRe  = regexp.MustCompile(`(?i)\bvol\.?\s*(\d{1,4})\b`)

	// Leading "[12]", "[12].", "12." or "12)" marker.
	numPrefixRe = regexp.MustCompile(`^\s*(?:\[\d{1,4}\][.)]?|\d{1,4}[.)])\s*`)

	// A double-quoted or guillemet span, or a single-quoted span that does
	// not start inside a word.
	quotedRe = regexp.MustCompile(`["“«„](.+?)["”»“]|(?:^|\s)[‘'](.+?)[’'](?:[\s,.;:]|$)`)

	stripDOIURLRe = regexp.MustCompile(`(?i)\s*[(\[]?\s*(?:doi\s*:\s*|https?://doi\.org/|https?://)\S+[)\]]?$`)

	dotSpaceRe = regexp.MustCompile(`\.\s+`)
	commaRe    = regexp.MustCompile(`,\s*`)

	inVenueRe      = regexp.MustCompile(`\b(?:In[:\s]|in:)\s*(.+?)(?:\.|,\s*(?i:vol|pp|\d))`)
	locatorWordRe  = regexp.MustCompile(`(?i)\b(?:vol|no|pp)\b`)
	authorHeadRe   = regexp.MustCompile(`^[A-Z][a-zA-Z\-']+\s*,\s*[A-Z]\.`)
	ocrParenRe     = regexp.MustCompile(`([A-Za-z])\(`)
	authorSepRes   = compileSeparators("; ", " and ", " & ", " ir ")
	publisherColon = regexp.MustCompile(`(?:^|[.,]\s+)(\p{Lu}\p{L}+(?: \p{L}+){0,2})\s*:\s*(\p{Lu}[^.,;:]{1,80})`)
	publisherWord  = regexp.MustCompile(`((?:\p{Lu}[\p{L}&'-]*\s+){0,4}(?:Press|Publishers?|Publishing|Verlag|Leidykla))\b`)
)

// ocrRepairs are run-together words seen in PDF-extracted bibliographies.
var ocrRepairs = strings.NewReplacer(
	"largesparse", "large sparse",
)

func compileSeparators(seps ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(seps))
	for i, s := range seps {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s))
	}
	return out
}

// clean prepares an entry for field extraction. The result is never stored
// as the reference's raw text.
func clean(raw string) string {
	s := numPrefixRe.ReplaceAllString(raw, "")
	s = textnorm.NormalizeWhitespace(s)
	s = ocrParenRe.ReplaceAllString(s, "$1 (")
	return ocrRepairs.Replace(s)
}

func extractDOI(text string) string {
	m := doiRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimRight(m[1], ".,;)"))
}

func extractURL(text string) string {
	m := urlRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], ".,;)")
}

func extractPages(text string) string {
	m := pagesRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractVolIssue(text string) (volume, issue string) {
	if m := volIssueRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	if m := volNoRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	if m := volOnlyRe.FindStringSubmatch(text); m != nil {
		return m[1], ""
	}
	return "", ""
}

// splitSentences splits s at ". " boundaries whose preceding character is
// not an uppercase ASCII letter, so initials such as "J. " do not end a
// sentence. n < 0 returns all parts, otherwise at most n parts.
func splitSentences(s string, n int) []string {
	var parts []string
	prev := 0
	for _, m := range dotSpaceRe.FindAllStringIndex(s, -1) {
		if n > 0 && len(parts) == n-1 {
			break
		}
		if m[0] == 0 {
			continue
		}
		r, _ := utf8.DecodeLastRuneInString(s[:m[0]])
		if r >= 'A' && r <= 'Z' {
			continue
		}
		parts = append(parts, s[prev:m[0]])
		prev = m[1]
	}
	return append(parts, s[prev:])
}

func stripDOIURLSuffix(s string) string {
	return strings.TrimRight(stripDOIURLRe.ReplaceAllString(s, ""), " .,;(")
}

func extractTitle(rest string) string {
	if rest == "" {
		return ""
	}
	if m := quotedRe.FindStringSubmatch(rest); m != nil {
		q := m[1]
		if q == "" {
			q = m[2]
		}
		return textnorm.NormalizeWhitespace(stripDOIURLSuffix(q))
	}

	lead := textnorm.NormalizeWhitespace(stripDOIURLSuffix(splitSentences(rest, 2)[0]))
	if utf8.RuneCountInString(lead) >= 5 {
		return lead
	}
	if utf8.RuneCountInString(rest) > 5 {
		return textnorm.NormalizeWhitespace(stripDOIURLSuffix(truncateRunes(rest, 200)))
	}
	return ""
}

func extractJournal(rest string) string {
	if m := inVenueRe.FindStringSubmatch(rest); m != nil {
		return textnorm.NormalizeWhitespace(stripDOIURLSuffix(m[1]))
	}

	if parts := splitSentences(rest, -1); len(parts) >= 2 {
		first, _, _ := strings.Cut(parts[1], ",")
		candidate := textnorm.NormalizeWhitespace(stripDOIURLSuffix(first))
		if n := utf8.RuneCountInString(candidate); n > 3 && n < 120 {
			return candidate
		}
	}

	var commaParts []string
	for _, p := range strings.Split(rest, ",") {
		if p = textnorm.NormalizeWhitespace(p); p != "" {
			commaParts = append(commaParts, p)
		}
	}
	if len(commaParts) >= 2 && utf8.RuneCountInString(commaParts[0]) > 3 && !locatorWordRe.MatchString(commaParts[0]) {
		return textnorm.NormalizeWhitespace(stripDOIURLSuffix(commaParts[0]))
	}
	return ""
}

// extractPublisher finds a "City: Publisher" segment or a phrase ending in
// a publisher keyword. The lead sentence is the title and is skipped.
func extractPublisher(rest string) string {
	parts := splitSentences(rest, 2)
	if len(parts) < 2 {
		return ""
	}
	tail := parts[1]
	for _, m := range publisherColon.FindAllStringSubmatch(tail, -1) {
		if strings.EqualFold(m[1], "in") {
			continue
		}
		return textnorm.NormalizeWhitespace(m[2])
	}
	if m := publisherWord.FindStringSubmatch(tail); m != nil {
		return textnorm.NormalizeWhitespace(m[1])
	}
	return ""
}

// splitAuthors splits an author display string on the first separator found,
// else before each "Last, F." boundary, else returns it whole.
func splitAuthors(author string) []string {
	s := textnorm.NormalizeWhitespace(author)
	if s == "" {
		return []string{}
	}

	for _, sep := range authorSepRes {
		if !sep.MatchString(s) {
			continue
		}
		out := nonEmpty(sep.Split(s, -1))
		if len(out) == 0 {
			return []string{s}
		}
		return out
	}

	var chunks []string
	prev := 0
	for _, m := range commaRe.FindAllStringIndex(s, -1) {
		if authorHeadRe.MatchString(s[m[1]:]) {
			chunks = append(chunks, s[prev:m[0]])
			prev = m[1]
		}
	}
	if len(chunks) > 0 {
		return nonEmpty(append(chunks, s[prev:]))
	}
	return []string{s}
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(textnorm.NormalizeWhitespace(p), " ,"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
