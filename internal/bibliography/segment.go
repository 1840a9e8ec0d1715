// Package bibliography locates the bibliography region of a document and
// splits it into raw reference entries.
package bibliography

import (
	"math"
	"regexp"
	"strings"

	"github.com/matsen/bibextract/internal/textnorm"
)

// Segmentation thresholds. These are tuned values, keep the comparison
// operators in Segment exactly as they are.
const (
	// MinHeadingRegionLines is the minimum number of non-blank lines a
	// heading-bounded region needs to be considered at all.
	MinHeadingRegionLines = 3
	// MinHeadingScore rejects heading regions scoring below it.
	MinHeadingScore = 0.35
	// HeadingTieMargin is the score window within which the later heading wins.
	HeadingTieMargin = 0.02
	// ItemDensityWeight and YearDensityWeight combine into the heading score.
	ItemDensityWeight = 0.75
	YearDensityWeight = 0.25

	// TailScanLines bounds the heading-free fallback to the document's tail.
	TailScanLines = 80
	// MinTailLines is the minimum number of non-blank lines in a fallback suffix.
	MinTailLines = 5
	// MinTailDensity is the bib-item density a fallback suffix must reach.
	MinTailDensity = 0.55
)

var (
	// bulletRe matches a leading "[12]", "12.", "12)", "-" or "•" marker.
	bulletRe = regexp.MustCompile(`^\s*(?:\[\d{1,4}\]|\d{1,4}[.)]|[-\x{2022}])\s*`)
	// numberedRe matches only numeral and bracket markers.
	numberedRe = regexp.MustCompile(`^\s*(?:\[\d{1,4}\]|\d{1,4}[.)])\s*`)
)

// Split is the result of separating a document into body and bibliography.
type Split struct {
	BodyText         string `json:"body_text"`
	BibliographyText string `json:"bibliography_text"`
	// StartLine is the index of the first bibliography line, nil when no
	// bibliography region was found.
	StartLine *int `json:"bibliography_start_line"`
	// HeadingLine is the index of the discarded heading line, nil for
	// regions found without a heading.
	HeadingLine *int `json:"heading_line,omitempty"`
	// EndLine is the exclusive end of the bibliography region.
	EndLine int `json:"end_line"`
}

// Found reports whether a bibliography region was located.
func (s Split) Found() bool {
	return s.StartLine != nil
}

// isBibItemLike is the per-line heuristic behind both density scores.
func isBibItemLike(line string) bool {
	l := textnorm.NormalizeWhitespace(line)
	if l == "" {
		return false
	}
	if bulletRe.MatchString(line) {
		return true
	}
	if textnorm.HasYear(l) && strings.ContainsAny(l, ",.") {
		return true
	}
	lower := strings.ToLower(l)
	return strings.Contains(lower, "doi:") ||
		strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://")
}

// regionStats counts non-blank, bib-item-like and year-bearing lines.
type regionStats struct {
	nonBlank int
	bibLike  int
	yearLike int
}

func statsFor(lines []string) regionStats {
	var s regionStats
	for _, ln := range lines {
		if textnorm.NormalizeWhitespace(ln) == "" {
			continue
		}
		s.nonBlank++
		if isBibItemLike(ln) {
			s.bibLike++
		}
		if textnorm.HasYear(ln) {
			s.yearLike++
		}
	}
	return s
}

func (s regionStats) itemDensity() float64 {
	return float64(s.bibLike) / float64(max(1, s.nonBlank))
}

func (s regionStats) yearDensity() float64 {
	return float64(s.yearLike) / float64(max(1, s.nonBlank))
}

type headingCandidate struct {
	score   float64
	heading int
	start   int
	end     int
}

// Segment separates text into body and bibliography. It never fails: when no
// bibliography can be located the whole text is returned as body.
func Segment(text string) Split {
	lines := textnorm.SplitLines(text)
	if len(lines) == 0 {
		return Split{}
	}

	if best, ok := bestHeadingRegion(lines); ok {
		heading, start := best.heading, best.start
		return Split{
			BodyText:         bodyAround(lines, heading, best.end),
			BibliographyText: strings.TrimSpace(textnorm.JoinLines(lines[start:best.end])),
			StartLine:        &start,
			HeadingLine:      &heading,
			EndLine:          best.end,
		}
	}

	if start, ok := tailRegion(lines); ok {
		return Split{
			BodyText:         strings.TrimRight(textnorm.JoinLines(lines[:start]), " \t\r\n"),
			BibliographyText: strings.TrimSpace(textnorm.JoinLines(lines[start:])),
			StartLine:        &start,
			EndLine:          len(lines),
		}
	}

	return Split{
		BodyText: strings.TrimRight(text, " \t\r\n"),
		EndLine:  len(lines),
	}
}

// bodyAround joins the lines before the heading with those after the stop
// heading that closed the region. Both discarded lines are left out.
func bodyAround(lines []string, heading, end int) string {
	before := strings.TrimRight(textnorm.JoinLines(lines[:heading]), " \t\r\n")
	if end+1 >= len(lines) {
		return before
	}
	after := strings.TrimRight(textnorm.JoinLines(lines[end+1:]), " \t\r\n")
	switch {
	case after == "":
		return before
	case before == "":
		return after
	}
	return before + "\n" + after
}

// bestHeadingRegion scores every heading-bounded region and picks the best.
func bestHeadingRegion(lines []string) (headingCandidate, bool) {
	var best headingCandidate
	found := false

	for h, ln := range lines {
		if !textnorm.LooksLikeHeading(ln) {
			continue
		}
		start := h + 1
		end := len(lines)
		for j := start; j < len(lines); j++ {
			if textnorm.LooksLikeStopHeading(lines[j]) {
				end = j
				break
			}
		}

		st := statsFor(lines[start:end])
		if st.nonBlank < MinHeadingRegionLines {
			continue
		}
		score := st.itemDensity()*ItemDensityWeight + st.yearDensity()*YearDensityWeight
		if score < MinHeadingScore {
			continue
		}

		cand := headingCandidate{score: score, heading: h, start: start, end: end}
		switch {
		case !found:
			best, found = cand, true
		case cand.score > best.score+HeadingTieMargin:
			best = cand
		case math.Abs(cand.score-best.score) <= HeadingTieMargin && cand.heading > best.heading:
			// Near tie: the heading closer to the end is the real one, the
			// earlier match is usually a table of contents entry.
			best = cand
		}
	}

	return best, found
}

// tailRegion returns the earliest offset in the document tail whose suffix
// is dense enough in bibliography-like lines.
func tailRegion(lines []string) (int, bool) {
	tail := min(TailScanLines, len(lines))
	for start := len(lines) - tail; start < len(lines); start++ {
		st := statsFor(lines[start:])
		if st.nonBlank < MinTailLines {
			continue
		}
		if st.itemDensity() >= MinTailDensity {
			return start, true
		}
	}
	return 0, false
}
