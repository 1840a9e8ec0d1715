package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/export"
	"github.com/matsen/bibextract/internal/reference"
)

var (
	exportFormat   string
	exportAppendTo string
	exportWorkers  int
)

// Export formats.
const (
	FormatBibTeX  = "bibtex"
	FormatRIS     = "ris"
	FormatCSLJSON = "csljson"
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", FormatBibTeX, "Output format: bibtex, ris or csljson")
	exportCmd.Flags().StringVar(&exportAppendTo, "append-to", "", "Append BibTeX entries not already in this .bib file")
	exportCmd.Flags().IntVar(&exportWorkers, "workers", 0, "Parallel workers (0 = config or number of CPUs)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <files...>",
	Short: "Export extracted references as BibTeX, RIS or CSL-JSON",
	Long: `Extract the bibliography of each document and write it in a reference
manager format to stdout.

With --append-to, entries whose key or DOI is already in the given .bib file
are skipped and the rest are appended to it.

Examples:
  bibx export thesis.pdf > refs.bib
  bibx export thesis.pdf --format ris > refs.ris
  bibx export a.pdf b.pdf --format csljson
  bibx export paper.docx --append-to refs.bib`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

// AppendResponse is the response for export --append-to.
type AppendResponse struct {
	Path    string   `json:"path"`
	Added   []string `json:"added"`
	Skipped int      `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case FormatBibTeX, FormatRIS, FormatCSLJSON:
	default:
		exitWithError(ExitError, "unknown format %q (use bibtex, ris or csljson)", exportFormat)
	}
	if exportAppendTo != "" && exportFormat != FormatBibTeX {
		exitWithError(ExitError, "--append-to requires --format bibtex")
	}

	cfg := pipelineConfig(findRepositoryConfig(), "", exportWorkers)
	batch := mustRunBatch(cmd.Context(), args, cfg)
	requireBibliography(batch)

	if exportAppendTo != "" {
		return appendBibTeX(exportAppendTo, batch.AllRefs, batch.Keys)
	}

	switch exportFormat {
	case FormatRIS:
		fmt.Print(export.ToRISList(batch.AllRefs))
	case FormatCSLJSON:
		data, err := export.ToCSLJSON(batch.AllRefs)
		if err != nil {
			exitWithError(ExitError, "encoding CSL-JSON: %v", err)
		}
		os.Stdout.Write(data)
		fmt.Println()
	default:
		fmt.Print(export.ToBibTeXList(batch.AllRefs))
	}
	return nil
}

// appendBibTeX appends the references not already in the .bib file at path.
func appendBibTeX(path string, refs []reference.ParsedReference, keys []string) error {
	idx, err := export.ParseBibTeXFile(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}

	missing, missingKeys := idx.Missing(refs, keys)
	if len(missing) > 0 {
		entries := make([]string, len(missing))
		for i, ref := range missing {
			entries[i] = export.ToBibTeX(ref, missingKeys[i])
		}
		if err := export.AppendToBibFile(path, strings.Join(entries, "\n")); err != nil {
			exitWithError(ExitError, "appending to %s: %v", path, err)
		}
	}
	if missingKeys == nil {
		missingKeys = []string{}
	}

	if humanOutput {
		fmt.Printf("Appended %d entries to %s (%d already present)\n", len(missing), path, len(refs)-len(missing))
	} else {
		outputJSON(AppendResponse{Path: path, Added: missingKeys, Skipped: len(refs) - len(missing)})
	}
	return nil
}
