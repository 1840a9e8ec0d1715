// Package main provides the bibx CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/config"
	"github.com/matsen/bibextract/internal/logging"
	"github.com/matsen/bibextract/internal/pipeline"
	"github.com/matsen/bibextract/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// globalCfg is loaded once in the root pre-run hook.
var globalCfg *config.GlobalConfig

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// SilenceErrors is set, so cobra errors such as missing flags are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibx",
	Short: "Extract bibliographies from documents",
	Long: `bibx finds the bibliography in a document, splits it into entries and
parses each entry into structured fields.

Supported inputs: .txt, .md, .pdf, .docx, .html.

Extracted references can be exported (BibTeX, RIS, CSL-JSON), formatted in a
citation style, checked for duplicates and saved to a local library stored in
git-versionable JSONL with an ephemeral SQLite index for queries.
All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// setup loads the global config and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	globalCfg = cfg
	logging.New(cfg.Log)
	return nil
}

// getStartingDirectory returns the directory to start searching for a repository.
// The global library_path wins over the current working directory.
func getStartingDirectory() string {
	if globalCfg != nil && globalCfg.LibraryPath != "" {
		return globalCfg.LibraryPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	return cwd
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	repoRoot, err := config.FindRepository(getStartingDirectory())
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'bibx init' to create a library here, or set library_path with 'bibx config set library_path <dir>'.", err)
	}
	return repoRoot
}

// findRepositoryConfig returns the repository config when bibx runs inside
// a library, nil otherwise.
func findRepositoryConfig() *config.Config {
	repoRoot, err := config.FindRepository(getStartingDirectory())
	if errors.Is(err, config.ErrNotRepository) {
		return nil
	}
	if err != nil {
		exitWithError(ExitError, "locating repository: %v", err)
	}
	return mustLoadConfig(repoRoot)
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLibrary returns the JSONL library of the current repository.
func mustLibrary(repoRoot string) *storage.Library {
	return storage.NewLibrary(config.RefsPath(repoRoot), config.RunsPath(repoRoot))
}

// pipelineConfig merges, lowest priority first, the built-in defaults, the
// global config, the repository config and the command-line overrides.
func pipelineConfig(repo *config.Config, styleFlag string, workersFlag int) pipeline.Config {
	cfg := pipeline.DefaultConfig()

	if globalCfg != nil {
		if globalCfg.Style != "" {
			cfg.Style = globalCfg.Style
		}
		cfg.Workers = globalCfg.Workers
	}

	if repo != nil {
		if repo.DefaultStyle != "" {
			cfg.Style = repo.DefaultStyle
		}
		if repo.TitleThreshold > 0 {
			cfg.Dedupe.TitleThreshold = repo.TitleThreshold
		}
		if repo.AuthorThreshold > 0 {
			cfg.Dedupe.AuthorThreshold = repo.AuthorThreshold
		}
		if repo.Workers > 0 {
			cfg.Workers = repo.Workers
		}
	}

	if styleFlag != "" {
		cfg.Style = styleFlag
	}
	if workersFlag > 0 {
		cfg.Workers = workersFlag
	}
	return cfg
}

// mustRunBatch runs the extraction pipeline over paths, exits on error.
func mustRunBatch(ctx context.Context, paths []string, cfg pipeline.Config) pipeline.Batch {
	batch, err := pipeline.RunBatch(ctx, paths, cfg)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return batch
}

// requireBibliography exits with ExitNoBibliography when no document in the
// batch had a bibliography region.
func requireBibliography(batch pipeline.Batch) {
	for _, r := range batch.Results {
		if r.Found() {
			return
		}
	}
	exitWithError(ExitNoBibliography, "no bibliography found in %d document(s)", len(batch.Results))
}
