package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/style"
)

var (
	formatStyle   string
	formatWorkers int
)

func init() {
	formatCmd.Flags().StringVar(&formatStyle, "style", "", "Citation style (APA 7, IEEE, ISO 690, MLA 9)")
	formatCmd.Flags().IntVar(&formatWorkers, "workers", 0, "Parallel workers (0 = config or number of CPUs)")
	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format <files...>",
	Short: "Print the extracted bibliography in a citation style",
	Long: `Extract the bibliography of each document and print it in a citation style.

Style names match case-insensitively on "apa", "ieee", "iso" or "mla".
Without --style the repository or global default is used (APA 7 if unset).

Examples:
  bibx format thesis.pdf --style ieee --human
  bibx format a.docx b.docx --style "MLA 9"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFormat,
}

// FormatResponse is the response for the format command.
type FormatResponse struct {
	Style   string   `json:"style"`
	Entries []string `json:"entries"`
	Text    string   `json:"text"`
}

func runFormat(cmd *cobra.Command, args []string) error {
	mustValidateStyle(formatStyle)

	cfg := pipelineConfig(findRepositoryConfig(), formatStyle, formatWorkers)
	batch := mustRunBatch(cmd.Context(), args, cfg)
	requireBibliography(batch)

	resolved := style.Resolve(cfg.Style)
	entries := make([]string, len(batch.AllRefs))
	for i, ref := range batch.AllRefs {
		entries[i] = style.FormatReference(ref, string(resolved), i+1)
	}

	if humanOutput {
		outputHuman("%s\n", strings.Join(entries, "\n\n"))
		return nil
	}
	outputJSON(FormatResponse{
		Style:   string(resolved),
		Entries: entries,
		Text:    batch.Formatted,
	})
	return nil
}

// mustValidateStyle exits when a non-empty style name matches no supported style.
func mustValidateStyle(name string) {
	if name == "" {
		return
	}
	if _, ok := style.Lookup(name); !ok {
		names := make([]string, len(style.SupportedStyles))
		for i, s := range style.SupportedStyles {
			names[i] = string(s)
		}
		exitWithError(ExitError, "unknown style %q (supported: %s)", name, strings.Join(names, ", "))
	}
}
