package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new bibx library",
	Long: `Initialize a new bibx library in the current directory.

Creates:
  .bibx/
  ├── refs.jsonl      # Saved references, empty
  ├── runs.jsonl      # Extraction run log, empty
  ├── config.json     # Default config
  └── cache/          # SQLite index (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a bibx library")
	}

	if err := config.Init(root); err != nil {
		exitWithError(ExitError, "initializing library: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized bibx library in %s\n", config.RepoPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.RepoPath(root)})
	}
	return nil
}
