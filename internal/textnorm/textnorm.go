// Package textnorm provides the text normalisation helpers shared by the
// bibliography segmenter, the entry splitter and the reference parser.
//
// Every function in this package is pure and safe for concurrent use.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxStopHeadingLen is the longest line still treated as a stop heading.
// Longer lines are prose that happens to start with a section word.
const MaxStopHeadingLen = 120

var (
	wsRe = regexp.MustCompile(`\s+`)

	// YearRe matches a 19xx/20xx year token.
	YearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	// Leading "5.", "5)", "IV." style section markers.
	headingMarkerRe = regexp.MustCompile(`^(?:\d{1,3}|[ivxlc]{1,6})[.)]\s*`)

	stopHeadingRe = regexp.MustCompile(
		`(?i)^\s*(?:\d+[.)]\s*)?` +
			`(pried(?:as|ai)|appendix|appendices|priedai` +
			`|santrauka|summary|abstract` +
			`|interviu|interview` +
			`|klausimynas|questionnaire` +
			`|\.?\s*priedas\b)`)
)

// bibHeadings is the closed set of bibliography section headings, stored
// lower-cased and diacritic-folded.
var bibHeadings = map[string]bool{
	"references":             true,
	"reference list":         true,
	"bibliography":           true,
	"literature":             true,
	"works cited":            true,
	"sources":                true,
	"literatura":             true,
	"literaturos sarasas":    true,
	"saltiniai":              true,
	"naudota literatura":     true,
	"naudoti saltiniai":      true,
	"informacijos saltiniai": true,
}

// compactHeadings holds bibHeadings with whitespace removed, so that
// letter-spaced headings ("L I T E R A T U R A") still match.
var compactHeadings = func() map[string]bool {
	m := make(map[string]bool, len(bibHeadings))
	for h := range bibHeadings {
		m[RemoveSpaces(h)] = true
	}
	return m
}()

// newFolder returns a fresh accent-stripping transformer. Transformers keep
// state, so each call gets its own.
func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeWhitespace collapses every whitespace run to a single space and
// trims both ends.
func NormalizeWhitespace(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// RemoveSpaces drops every whitespace rune from s.
func RemoveSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// FoldDiacritics strips combining marks, e.g. "Literatūros sąrašas" becomes
// "Literaturos sarasas".
func FoldDiacritics(s string) string {
	out, _, err := transform.String(newFolder(), s)
	if err != nil {
		return s
	}
	return out
}

// HasYear reports whether s contains a 19xx or 20xx year token.
func HasYear(s string) bool {
	return YearRe.MatchString(s)
}

// FindYear returns the first 19xx/20xx year token in s, or "".
func FindYear(s string) string {
	m := YearRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// LooksLikeHeading reports whether line is a bibliography section heading.
func LooksLikeHeading(line string) bool {
	l := FoldDiacritics(strings.ToLower(NormalizeWhitespace(line)))
	if l == "" {
		return false
	}
	l = headingMarkerRe.ReplaceAllString(l, "")
	l = strings.TrimFunc(l, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if l == "" {
		return false
	}
	if bibHeadings[l] {
		return true
	}
	return compactHeadings[RemoveSpaces(l)]
}

// LooksLikeStopHeading reports whether line is a section marker that
// conventionally follows a bibliography (appendix, summary, interview...).
func LooksLikeStopHeading(line string) bool {
	l := NormalizeWhitespace(line)
	if l == "" {
		return false
	}
	if len([]rune(l)) > MaxStopHeadingLen {
		return false
	}
	return stopHeadingRe.MatchString(l)
}

// SplitLines splits text on line breaks, dropping carriage returns.
// An empty text yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	// A trailing newline does not open another line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
