package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query index from the library",
	Long: `Rebuild the SQLite query index from refs.jsonl.

Use this after pulling changes from git, after 'bibx extract --save', or if
the index becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status     string `json:"status"`
	References int    `json:"references"`
	Runs       int    `json:"runs"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	refsCount, err := db.RebuildFromJSONL(config.RefsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding refs database: %v", err)
	}

	runs, err := mustLibrary(repoRoot).Runs()
	if err != nil {
		exitWithError(ExitDataError, "reading runs: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query index with %d references from %d runs\n", refsCount, len(runs))
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", References: refsCount, Runs: len(runs)})
	}
	return nil
}
