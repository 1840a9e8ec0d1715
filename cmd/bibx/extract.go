package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/config"
	"github.com/matsen/bibextract/internal/dedupe"
	"github.com/matsen/bibextract/internal/pipeline"
	"github.com/matsen/bibextract/internal/storage"
)

var (
	extractStyle   string
	extractWorkers int
	extractSave    bool
)

func init() {
	extractCmd.Flags().StringVar(&extractStyle, "style", "", "Citation style for the formatted bibliography (APA 7, IEEE, ISO 690, MLA 9)")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "Parallel workers (0 = config or number of CPUs)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Append the extracted references to the library")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <files...>",
	Short: "Extract references from documents",
	Long: `Extract the bibliography of each document and parse every entry.

Documents are processed concurrently, results keep the input order.
With --save the references are appended to the library and the query index
is refreshed. References already in the library (same DOI, or same first
author, year and title) are skipped.

Examples:
  bibx extract thesis.pdf
  bibx extract chapter1.docx chapter2.docx --style IEEE
  bibx extract paper.pdf --save --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

// ExtractResponse is the response for the extract command.
type ExtractResponse struct {
	Results    []pipeline.Result      `json:"results"`
	Keys       []string               `json:"keys"`
	Duplicates []dedupe.DuplicatePair `json:"duplicates"`
	Run        *storage.Run           `json:"run,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	mustValidateStyle(extractStyle)

	var repoRoot string
	var repo *config.Config
	if extractSave {
		repoRoot = mustFindRepository()
		repo = mustLoadConfig(repoRoot)
	} else {
		repo = findRepositoryConfig()
	}

	cfg := pipelineConfig(repo, extractStyle, extractWorkers)
	batch := mustRunBatch(cmd.Context(), args, cfg)
	requireBibliography(batch)

	resp := ExtractResponse{
		Results:    batch.Results,
		Keys:       batch.Keys,
		Duplicates: batch.Duplicates,
	}

	if extractSave {
		var items []storage.Item
		for _, r := range batch.Results {
			for _, ref := range r.Refs {
				items = append(items, storage.Item{Source: r.Source, Ref: ref})
			}
		}
		run, err := mustLibrary(repoRoot).Save(batch.Sources(), items, time.Now())
		if err != nil {
			exitWithError(ExitDataError, "saving references: %v", err)
		}
		resp.Run = &run

		db := mustOpenDatabase(repoRoot)
		defer db.Close()
		mustRefreshIndex(db, repoRoot)
	}

	if !humanOutput {
		outputJSON(resp)
		return nil
	}

	n := 0
	for _, r := range batch.Results {
		if !r.Found() {
			fmt.Printf("%s: no bibliography found\n\n", r.Source)
			continue
		}
		fmt.Printf("%s: %d references (bibliography from line %d)\n\n", r.Source, len(r.Refs), *r.Split.StartLine+1)
		for _, ref := range r.Refs {
			printRefSummary(n+1, batch.Keys[n], ref, ExtractTitleMaxLen)
			n++
		}
	}
	if len(batch.Duplicates) > 0 {
		fmt.Printf("%d probable duplicate pair(s), run 'bibx dupes' for details\n", len(batch.Duplicates))
	}
	if resp.Run != nil {
		fmt.Printf("Saved run %s: %d added, %d skipped\n", resp.Run.ID, resp.Run.Added, resp.Run.Skipped)
	}
	return nil
}
