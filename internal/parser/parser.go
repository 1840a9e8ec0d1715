// Package parser turns raw bibliography entries into structured references.
//
// Several regular-expression strategies compete for each entry. Every
// strategy that matches produces a candidate with a confidence score; the
// highest-scoring candidate wins, with ties going to the earlier strategy.
// Parse is total: a generic fallback always produces a result.
package parser

import (
	"context"
	"runtime"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/bibextract/internal/bibliography"
	"github.com/matsen/bibextract/internal/reference"
)

// Confidence weights in percentage points.
const (
	TitleWeight   = 30
	YearWeight    = 20
	AuthorWeight  = 20
	JournalWeight = 10
	LocatorWeight = 10 // any of volume, issue, pages
	LinkWeight    = 10 // DOI or URL

	// LongTitlePenalty applies when the title exceeds MaxTitleLen, which
	// usually means a sentence boundary was missed.
	LongTitlePenalty = 15
	MaxTitleLen      = 220
)

// Confidence scores how completely ref is populated, in [0,1].
func Confidence(ref reference.ParsedReference) float64 {
	points := 0
	if ref.Title != "" {
		points += TitleWeight
	}
	if ref.Year != "" {
		points += YearWeight
	}
	if ref.Author != "" {
		points += AuthorWeight
	}
	if ref.Journal != "" {
		points += JournalWeight
	}
	if ref.HasLocator() {
		points += LocatorWeight
	}
	if ref.DOI != "" || ref.URL != "" {
		points += LinkWeight
	}
	if utf8.RuneCountInString(ref.Title) > MaxTitleLen {
		points -= LongTitlePenalty
	}
	return float64(min(100, max(0, points))) / 100
}

func withConfidence(ref reference.ParsedReference) reference.ParsedReference {
	ref.Confidence = Confidence(ref)
	return ref
}

// Parse parses one raw entry. The result's Raw field is always raw itself.
func Parse(raw string) reference.ParsedReference {
	c := clean(raw)

	var best reference.ParsedReference
	found := false
	for _, s := range strategies {
		cand, ok := s(c)
		if !ok {
			continue
		}
		if !found || cand.Confidence > best.Confidence {
			best, found = cand, true
		}
	}

	best.Raw = raw
	return best
}

// ParseAll parses entries concurrently with at most workers goroutines
// (GOMAXPROCS when workers <= 0). Results are in input order.
func ParseAll(ctx context.Context, entries []string, workers int) ([]reference.ParsedReference, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	refs := make([]reference.ParsedReference, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			refs[i] = Parse(e)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// ParseBibliography splits a bibliography block into entries and parses
// each of them in order.
func ParseBibliography(text string) []reference.ParsedReference {
	entries := bibliography.SplitEntries(text)
	refs := make([]reference.ParsedReference, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, Parse(e))
	}
	return refs
}
