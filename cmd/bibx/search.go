package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/config"
	"github.com/matsen/bibextract/internal/storage"
)

var (
	searchLimit         int
	searchAuthors       []string
	searchYear          string
	searchTitle         string
	searchJournal       string
	searchDOI           string
	searchSource        string
	searchMinConfidence float64
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results")
	searchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, "Filter by author name (repeatable, AND logic)")
	searchCmd.Flags().StringVar(&searchYear, "year", "", "Filter by year (2024, 2020:2024, 2020:, :2024)")
	searchCmd.Flags().StringVar(&searchTitle, "title", "", "Search within title only")
	searchCmd.Flags().StringVar(&searchJournal, "journal", "", "Filter by journal (substring match)")
	searchCmd.Flags().StringVar(&searchDOI, "doi", "", "Exact DOI lookup")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "Only references extracted from this document")
	searchCmd.Flags().Float64Var(&searchMinConfidence, "min-confidence", 0, "Minimum parse confidence (0-1)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the saved library",
	Long: `Search saved references by keyword and/or filters.

The optional positional query is a keyword search across title, authors and
journal. Filters combine with AND logic. The query index is rebuilt first
when refs.jsonl changed since the last rebuild (hand edits, git pulls).

Examples:
  bibx search "phylogenetic"
  bibx search -a Smith --year 2018:
  bibx search --journal Nature --min-confidence 0.8
  bibx search --doi 10.1234/abc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	filters := storage.SearchFilters{
		Authors:       searchAuthors,
		Title:         searchTitle,
		Journal:       searchJournal,
		DOI:           searchDOI,
		Source:        searchSource,
		MinConfidence: searchMinConfidence,
	}
	if len(args) > 0 {
		filters.Keyword = args[0]
	}
	if searchYear != "" {
		from, to, err := parseYearRange(searchYear)
		if err != nil {
			exitWithError(ExitError, "invalid year format: %v", err)
		}
		filters.YearFrom = from
		filters.YearTo = to
	}

	if !hasSearchCriteria(filters) {
		exitWithError(ExitError, "must specify a query or at least one filter (--author, --year, --title, --journal, --doi, --source, --min-confidence)")
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	mustRefreshIndex(db, repoRoot)

	refs, err := db.Search(filters, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if refs == nil {
		refs = []storage.StoredRef{}
	}

	if humanOutput {
		if len(refs) == 0 {
			fmt.Println("No references found")
		} else {
			fmt.Printf("Found %d references:\n\n", len(refs))
			for i, r := range refs {
				printRefSummary(i+1, r.ID, r.Ref, SearchTitleMaxLen)
			}
		}
	} else {
		outputJSON(refs)
	}

	return nil
}

// mustRefreshIndex rebuilds the index when refs.jsonl no longer matches it.
func mustRefreshIndex(db *storage.DB, repoRoot string) {
	refsPath := config.RefsPath(repoRoot)
	stale, err := db.NeedsRebuild(refsPath)
	if err != nil {
		exitWithError(ExitDataError, "checking index: %v", err)
	}
	if !stale {
		return
	}
	n, err := db.RebuildFromJSONL(refsPath)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding refs database: %v", err)
	}
	slog.Info("index rebuilt", slog.String("path", refsPath), slog.Int("refs", n))
}

func hasSearchCriteria(f storage.SearchFilters) bool {
	return f.Keyword != "" || f.Title != "" || len(f.Authors) > 0 || f.Journal != "" ||
		f.YearFrom != 0 || f.YearTo != 0 || f.DOI != "" || f.Source != "" || f.MinConfidence > 0
}

// parseYearRange parses a year specification into from/to values.
// Supported formats: "2024", "2020:2024", "2020:", ":2024"
func parseYearRange(spec string) (from, to int, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, nil
	}

	if before, after, ok := strings.Cut(spec, ":"); ok {
		if before != "" {
			from, err = strconv.Atoi(before)
			if err != nil {
				return 0, 0, fmt.Errorf("invalid start year %q", before)
			}
		}
		if after != "" {
			to, err = strconv.Atoi(after)
			if err != nil {
				return 0, 0, fmt.Errorf("invalid end year %q", after)
			}
		}
		if from != 0 && to != 0 && from > to {
			return 0, 0, fmt.Errorf("start year %d is after end year %d", from, to)
		}
		return from, to, nil
	}

	// Single year - exact match
	year, err := strconv.Atoi(spec)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", spec)
	}
	return year, year, nil
}
