package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/export"
	"github.com/matsen/bibextract/internal/pipeline"
	"github.com/matsen/bibextract/internal/placeholder"
)

var (
	rewriteKeysFrom []string
	rewriteOutput   string
)

func init() {
	rewriteCmd.Flags().StringArrayVar(&rewriteKeysFrom, "keys-from", nil, "A .bib file or documents whose references number the markers (repeatable)")
	rewriteCmd.Flags().StringVarP(&rewriteOutput, "output", "o", "", "Write the rewritten body to this file")
	rootCmd.AddCommand(rewriteCmd)
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Replace numeric citation markers with citekeys",
	Long: `Rewrite numeric citation markers such as [3], [1, 4] or [2-5] in the body
of a document into Pandoc citations such as [@smith2019deep].

Marker n maps to the n-th reference. By default the references come from the
document's own bibliography. --keys-from takes either a .bib file (keys in
file order) or documents to extract references from. Markers naming a number
without a reference are left untouched and listed as unresolved.

Examples:
  bibx rewrite thesis.docx --human > body.md
  bibx rewrite draft.md --keys-from refs.bib -o draft.cited.md`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

// RewriteResponse is the response for the rewrite command.
type RewriteResponse struct {
	Source string `json:"source"`
	placeholder.Result
	Output string `json:"output,omitempty"`
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(findRepositoryConfig(), "", 0)

	doc, err := pipeline.RunDocument(cmd.Context(), args[0], cfg)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	keys := doc.Keys
	if len(rewriteKeysFrom) > 0 {
		keys = mustKeysFrom(cmd, rewriteKeysFrom, cfg)
	} else if !doc.Found() {
		exitWithError(ExitNoBibliography, "no bibliography found in %s (use --keys-from)", args[0])
	}

	// Without a bibliography the body is the whole document.
	res := placeholder.Rewrite(doc.Split.BodyText, keys)

	if rewriteOutput != "" {
		if err := os.WriteFile(rewriteOutput, []byte(res.Text+"\n"), 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", rewriteOutput, err)
		}
	}

	if humanOutput {
		if rewriteOutput == "" {
			fmt.Println(res.Text)
		}
		fmt.Fprintf(os.Stderr, "%d marker(s) rewritten, %d unresolved\n", res.Replacements, len(res.Unresolved))
		return nil
	}

	resp := RewriteResponse{Source: args[0], Result: res, Output: rewriteOutput}
	if rewriteOutput != "" {
		resp.Text = ""
	}
	outputJSON(resp)
	return nil
}

// mustKeysFrom returns the keys of a single .bib file in file order, or the
// citekeys of the references extracted from the given documents.
func mustKeysFrom(cmd *cobra.Command, sources []string, cfg pipeline.Config) []string {
	if len(sources) == 1 && strings.EqualFold(filepath.Ext(sources[0]), ".bib") {
		if _, err := os.Stat(sources[0]); err != nil {
			exitWithError(ExitDataError, "reading %s: %v", sources[0], err)
		}
		idx, err := export.ParseBibTeXFile(sources[0])
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", sources[0], err)
		}
		return idx.Order
	}

	batch := mustRunBatch(cmd.Context(), sources, cfg)
	requireBibliography(batch)
	return batch.Keys
}
