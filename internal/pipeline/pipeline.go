// Package pipeline runs documents through segmentation, entry splitting,
// parsing and duplicate detection.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/bibextract/internal/bibliography"
	"github.com/matsen/bibextract/internal/dedupe"
	"github.com/matsen/bibextract/internal/export"
	"github.com/matsen/bibextract/internal/parser"
	"github.com/matsen/bibextract/internal/reader"
	"github.com/matsen/bibextract/internal/reference"
	"github.com/matsen/bibextract/internal/style"
)

// Config controls a pipeline run.
type Config struct {
	Style   string
	Workers int // <= 0 means GOMAXPROCS
	Dedupe  dedupe.Options
	Logger  *slog.Logger // nil means slog.Default()
}

// DefaultConfig returns APA 7 formatting and the tuned dedupe thresholds.
func DefaultConfig() Config {
	return Config{Style: string(style.APA7), Dedupe: dedupe.DefaultOptions()}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Result is the outcome for one document.
type Result struct {
	Source      string                      `json:"source"`
	Kind        reader.Kind                 `json:"kind,omitempty"`
	DocumentDOI string                      `json:"document_doi,omitempty"`
	Split       bibliography.Split          `json:"-"`
	Entries     []string                    `json:"entries"`
	Refs        []reference.ParsedReference `json:"refs"`
	Keys        []string                    `json:"keys"`
	Formatted   string                      `json:"formatted,omitempty"`
}

// Found reports whether a bibliography was located in the document.
func (r Result) Found() bool {
	return r.Split.Found()
}

// Batch is the outcome for several documents.
type Batch struct {
	Results []Result `json:"results"`
	// AllRefs is every document's references, flattened in input order.
	AllRefs []reference.ParsedReference `json:"all_refs"`
	// Keys are the citekeys of AllRefs, aligned by index.
	Keys       []string               `json:"keys"`
	Duplicates []dedupe.DuplicatePair `json:"duplicates"`
	Formatted  string                 `json:"formatted,omitempty"`
}

// Sources returns the document paths in input order.
func (b Batch) Sources() []string {
	out := make([]string, len(b.Results))
	for i, r := range b.Results {
		out[i] = r.Source
	}
	return out
}

// RunText extracts references from already-read document text. A missing
// bibliography is not an error: the result simply has no references.
func RunText(ctx context.Context, source, text string, cfg Config) (Result, error) {
	log := cfg.logger().With(slog.String("source", source))

	res := Result{
		Source:  source,
		Split:   bibliography.Segment(text),
		Entries: []string{},
		Refs:    []reference.ParsedReference{},
		Keys:    []string{},
	}
	if !res.Split.Found() {
		log.Warn("bibliography not found")
		return res, nil
	}

	res.Entries = bibliography.SplitEntries(res.Split.BibliographyText)
	refs, err := parser.ParseAll(ctx, res.Entries, cfg.workers())
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", source, err)
	}
	res.Refs = refs
	res.Keys = export.Citekeys(refs)
	res.Formatted = style.FormatBibliography(refs, cfg.Style)

	log.Info("document parsed",
		slog.Int("bibliography_start_line", *res.Split.StartLine),
		slog.Int("entries", len(res.Entries)),
		slog.Int("refs", len(res.Refs)))
	return res, nil
}

// RunDocument reads the file at path and runs it through RunText.
func RunDocument(ctx context.Context, path string, cfg Config) (Result, error) {
	doc, err := reader.Read(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := RunText(ctx, path, doc.Text, cfg)
	if err != nil {
		return Result{}, err
	}
	res.Kind = doc.Kind
	if res.Found() {
		res.DocumentDOI = reader.FindDOI(res.Split.BodyText)
	} else {
		res.DocumentDOI = reader.FindDOI(doc.Text)
	}
	return res, nil
}

// RunBatch processes documents concurrently and merges their references.
// Results keep input order. Any reader error fails the whole batch.
func RunBatch(ctx context.Context, paths []string, cfg Config) (Batch, error) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := RunDocument(gctx, path, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	return Merge(ctx, results, cfg)
}

// Merge flattens per-document results into a Batch, assigning citekeys and
// finding duplicates across documents.
func Merge(ctx context.Context, results []Result, cfg Config) (Batch, error) {
	var all []reference.ParsedReference
	for _, r := range results {
		all = append(all, r.Refs...)
	}
	if all == nil {
		all = []reference.ParsedReference{}
	}

	dups, err := dedupe.FindDuplicatesParallel(ctx, all, cfg.Dedupe, cfg.workers())
	if err != nil {
		return Batch{}, fmt.Errorf("finding duplicates: %w", err)
	}
	if dups == nil {
		dups = []dedupe.DuplicatePair{}
	}

	cfg.logger().Info("batch merged",
		slog.Int("documents", len(results)),
		slog.Int("refs", len(all)),
		slog.Int("duplicates", len(dups)))

	return Batch{
		Results:    results,
		AllRefs:    all,
		Keys:       export.Citekeys(all),
		Duplicates: dups,
		Formatted:  style.FormatBibliography(all, cfg.Style),
	}, nil
}
