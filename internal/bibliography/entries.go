package bibliography

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/bibextract/internal/textnorm"
)

const (
	// MinEntryLen is the shortest raw entry kept.
	MinEntryLen = 15
	// MinNumberedLines switches on the numeral-marker re-split.
	MinNumberedLines = 4
	// MaxUpperRatio is the uppercase share above which a short, year-less
	// entry is taken for a section header.
	MaxUpperRatio = 0.6
	// MaxHeaderLen bounds the all-caps header rule.
	MaxHeaderLen = 100
	// MaxBareProseLen bounds the "no year, no punctuation, no link" rule.
	MaxBareProseLen = 200
)

// markerSplitRe finds the start of every line opening with a numeral marker.
var markerSplitRe = regexp.MustCompile(`(?m)^\s*(?:\[\d{1,4}\]|\d{1,4}[.)])`)

// interviewPrefixes open interview or questionnaire prose, not references.
var interviewPrefixes = []string{"sveiki", "ar galite", "ar j", "hello", "could you"}

// SplitEntries splits a bibliography block into raw entries, preserving
// source order. Entries are whitespace-normalised.
func SplitEntries(bibliographyText string) []string {
	lines := textnorm.SplitLines(bibliographyText)

	numbered := 0
	for _, ln := range lines {
		if numberedRe.MatchString(ln) {
			numbered++
		}
	}

	var entries, buf, processed []string
	flush := func() {
		var parts []string
		for _, x := range buf {
			if n := textnorm.NormalizeWhitespace(x); n != "" {
				parts = append(parts, n)
			}
		}
		if e := strings.TrimSpace(strings.Join(parts, " ")); e != "" {
			entries = append(entries, e)
		}
		buf = buf[:0]
	}

	for _, ln := range lines {
		if textnorm.NormalizeWhitespace(ln) == "" {
			flush()
			continue
		}
		if textnorm.LooksLikeStopHeading(ln) {
			flush()
			break
		}
		processed = append(processed, ln)
		if len(buf) > 0 && bulletRe.MatchString(ln) {
			flush()
		}
		buf = append(buf, ln)
	}
	flush()

	entries = filterEntries(entries)

	// PDF reflow can glue numbered entries together; re-split on markers and
	// keep that result only if it recovers more entries.
	if numbered >= MinNumberedLines {
		forced := filterEntries(splitOnMarkers(processed))
		if len(forced) > len(entries) {
			entries = forced
		}
	}

	return entries
}

// splitOnMarkers cuts the joined lines before every numeral-marker line.
func splitOnMarkers(lines []string) []string {
	joined := textnorm.JoinLines(lines)
	idx := markerSplitRe.FindAllStringIndex(joined, -1)

	var parts []string
	prev := 0
	for _, m := range idx {
		if m[0] > prev {
			parts = append(parts, joined[prev:m[0]])
		}
		prev = m[0]
	}
	parts = append(parts, joined[prev:])

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := textnorm.NormalizeWhitespace(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func filterEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if len([]rune(e)) >= MinEntryLen && !IsClearlyNotReference(e) {
			out = append(out, e)
		}
	}
	return out
}

// IsClearlyNotReference reports whether entry is certainly not a
// bibliography item: a heading, interview prose, an all-caps header or a
// short fragment with no year, punctuation or link.
func IsClearlyNotReference(entry string) bool {
	l := strings.ToLower(textnorm.NormalizeWhitespace(entry))
	n := len([]rune(l))
	if n < MinEntryLen {
		return true
	}
	if textnorm.LooksLikeStopHeading(entry) || textnorm.LooksLikeHeading(entry) {
		return true
	}
	for _, p := range interviewPrefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}

	hasYear := textnorm.HasYear(l)
	if upperRatio(entry) > MaxUpperRatio && !hasYear && n < MaxHeaderLen {
		return true
	}

	hasPunct := strings.ContainsAny(l, ".,:")
	hasLink := strings.Contains(l, "doi") || strings.Contains(l, "http")
	return !hasYear && !hasPunct && !hasLink && n < MaxBareProseLen
}

// upperRatio is the share of uppercase letters among all letters.
func upperRatio(s string) float64 {
	var upper, letters int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(max(1, letters))
}
