// Package dedupe finds probable duplicate references by pairwise field
// similarity.
package dedupe

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/bibextract/internal/reference"
)

const (
	// DefaultTitleThreshold is the title similarity a pair needs before any
	// other signal is considered.
	DefaultTitleThreshold = 80.0
	// DefaultAuthorThreshold is reported in results but does not gate pairs.
	DefaultAuthorThreshold = 70.0
	// MinCombinedScore is the inclusive lower bound for emitting a pair.
	MinCombinedScore = 70.0
	// AuthorReasonMin is the author similarity above which authors are
	// mentioned in the reason.
	AuthorReasonMin = 50.0

	titleWeight   = 0.6
	authorWeight  = 0.3
	sameYearBonus = 10.0
)

// Options configures duplicate detection.
type Options struct {
	TitleThreshold  float64 `json:"title_threshold"`
	AuthorThreshold float64 `json:"author_threshold"`
}

// DefaultOptions returns the tuned thresholds.
func DefaultOptions() Options {
	return Options{TitleThreshold: DefaultTitleThreshold, AuthorThreshold: DefaultAuthorThreshold}
}

// DuplicatePair is a probable duplicate. IndexA < IndexB always; both index
// into the slice passed to FindDuplicates.
type DuplicatePair struct {
	IndexA int                       `json:"index_a"`
	IndexB int                       `json:"index_b"`
	RefA   reference.ParsedReference `json:"ref_a"`
	RefB   reference.ParsedReference `json:"ref_b"`
	Score  float64                   `json:"score"` // 0-100
	Reason string                    `json:"reason"`
}

// FindDuplicates compares every pair i < j and returns the probable
// duplicates sorted by score, highest first. Equal scores keep (i, j) order.
func FindDuplicates(refs []reference.ParsedReference, opts Options) []DuplicatePair {
	var pairs []DuplicatePair
	for i := range refs {
		pairs = append(pairs, scoreRow(refs, i, opts)...)
	}
	sortPairs(pairs)
	return pairs
}

// FindDuplicatesParallel is FindDuplicates with rows scored concurrently.
// The result is identical to FindDuplicates.
func FindDuplicatesParallel(ctx context.Context, refs []reference.ParsedReference, opts Options, workers int) ([]DuplicatePair, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := make([][]DuplicatePair, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = scoreRow(refs, i, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []DuplicatePair
	for _, row := range rows {
		pairs = append(pairs, row...)
	}
	sortPairs(pairs)
	return pairs, nil
}

func sortPairs(pairs []DuplicatePair) {
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Score > pairs[b].Score
	})
}

// scoreRow compares refs[i] with every later reference.
func scoreRow(refs []reference.ParsedReference, i int, opts Options) []DuplicatePair {
	var out []DuplicatePair
	for j := i + 1; j < len(refs); j++ {
		if p, ok := comparePair(refs[i], refs[j], opts); ok {
			p.IndexA, p.IndexB = i, j
			out = append(out, p)
		}
	}
	return out
}

func comparePair(a, b reference.ParsedReference, opts Options) (DuplicatePair, bool) {
	pair := DuplicatePair{RefA: a, RefB: b}

	if da, db := normalize(a.DOI), normalize(b.DOI); da != "" && da == db {
		pair.Score = 100
		pair.Reason = "DOI match"
		return pair, true
	}

	titleSim := fieldSimilarity(a.Title, b.Title)
	if titleSim < opts.TitleThreshold {
		return pair, false
	}

	authorSim := fieldSimilarity(a.Author, b.Author)
	sameYear := a.Year != "" && a.Year == b.Year

	combined := titleSim*titleWeight + authorSim*authorWeight
	if sameYear {
		combined += sameYearBonus
	}
	if combined < MinCombinedScore {
		return pair, false
	}

	reasons := []string{fmt.Sprintf("titles similar (%.0f%%)", titleSim)}
	if authorSim > AuthorReasonMin {
		reasons = append(reasons, fmt.Sprintf("authors similar (%.0f%%)", authorSim))
	}
	if sameYear {
		reasons = append(reasons, fmt.Sprintf("same year (%s)", a.Year))
	}

	pair.Score = combined
	pair.Reason = strings.Join(reasons, "; ")
	return pair, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// fieldSimilarity is TokenSortRatio over normalised fields, 0 when either
// side is absent.
func fieldSimilarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return 0
	}
	return TokenSortRatio(a, b)
}
