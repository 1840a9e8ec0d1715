package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/dedupe"
	"github.com/matsen/bibextract/internal/reference"
)

var (
	dupesLibrary bool
	dupesWorkers int
)

func init() {
	dupesCmd.Flags().BoolVar(&dupesLibrary, "library", false, "Check the saved library instead of documents")
	dupesCmd.Flags().IntVar(&dupesWorkers, "workers", 0, "Parallel workers (0 = config or number of CPUs)")
	rootCmd.AddCommand(dupesCmd)
}

var dupesCmd = &cobra.Command{
	Use:   "dupes [files...]",
	Short: "Find probable duplicate references",
	Long: `Find probable duplicate references by DOI or by title, author and year
similarity.

Pairs are reported by score, highest first. Index fields refer to the
flattened reference list of all documents, in input order.

Examples:
  bibx dupes chapter1.pdf chapter2.pdf
  bibx dupes --library --human`,
	RunE: runDupes,
}

// DupesResponse is the response for the dupes command.
type DupesResponse struct {
	Total      int             `json:"total_refs"`
	Duplicates []DuplicateInfo `json:"duplicates"`
}

// DuplicateInfo is a duplicate pair plus the library IDs when checking the library.
type DuplicateInfo struct {
	dedupe.DuplicatePair
	IDA string `json:"id_a,omitempty"`
	IDB string `json:"id_b,omitempty"`
}

func runDupes(cmd *cobra.Command, args []string) error {
	if dupesLibrary && len(args) > 0 {
		exitWithError(ExitError, "--library does not take files")
	}
	if !dupesLibrary && len(args) == 0 {
		exitWithError(ExitError, "must specify files or --library")
	}

	var refs []reference.ParsedReference
	var ids []string
	var pairs []dedupe.DuplicatePair

	if dupesLibrary {
		repoRoot := mustFindRepository()
		cfg := pipelineConfig(mustLoadConfig(repoRoot), "", dupesWorkers)

		stored, err := mustLibrary(repoRoot).Refs()
		if err != nil {
			exitWithError(ExitDataError, "reading refs: %v", err)
		}
		for _, s := range stored {
			refs = append(refs, s.Ref)
			ids = append(ids, s.ID)
		}

		pairs, err = dedupe.FindDuplicatesParallel(cmd.Context(), refs, cfg.Dedupe, cfg.Workers)
		if err != nil {
			exitWithError(ExitError, "finding duplicates: %v", err)
		}
	} else {
		cfg := pipelineConfig(findRepositoryConfig(), "", dupesWorkers)
		batch := mustRunBatch(cmd.Context(), args, cfg)
		requireBibliography(batch)
		refs, pairs = batch.AllRefs, batch.Duplicates
	}

	infos := make([]DuplicateInfo, len(pairs))
	for i, p := range pairs {
		infos[i] = DuplicateInfo{DuplicatePair: p}
		if ids != nil {
			infos[i].IDA, infos[i].IDB = ids[p.IndexA], ids[p.IndexB]
		}
	}

	if !humanOutput {
		outputJSON(DupesResponse{Total: len(refs), Duplicates: infos})
		return nil
	}

	if len(infos) == 0 {
		fmt.Printf("No duplicates among %d references\n", len(refs))
		return nil
	}
	fmt.Printf("Found %d probable duplicate pair(s) among %d references:\n\n", len(infos), len(refs))
	for _, d := range infos {
		fmt.Printf("#%d <-> #%d  score %.1f  (%s)\n", d.IndexA+1, d.IndexB+1, d.Score, d.Reason)
		fmt.Printf("    %s\n", truncateString(d.RefA.Raw, ExtractTitleMaxLen))
		fmt.Printf("    %s\n\n", truncateString(d.RefB.Raw, ExtractTitleMaxLen))
	}
	return nil
}
