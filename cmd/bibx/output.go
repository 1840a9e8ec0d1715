package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibextract/internal/reference"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search

	SearchTitleMaxLen  = 70 // Used in search result summaries
	ExtractTitleMaxLen = 60 // Used in extract and dupes output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorsShort lists at most n authors, then "et al.".
func formatAuthorsShort(ref reference.ParsedReference, n int) string {
	authors := ref.Authors
	if len(authors) == 0 {
		return ref.Author
	}
	if len(authors) <= n {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:n], ", ") + " et al."
}

// printRefSummary prints one reference as a short numbered block.
func printRefSummary(num int, label string, ref reference.ParsedReference, titleLen int) {
	fmt.Printf("[%d] %s\n", num, label)
	title := ref.Title
	if title == "" {
		title = ref.Raw
	}
	fmt.Printf("    %s\n", truncateString(title, titleLen))

	if a := formatAuthorsShort(ref, 3); a != "" {
		fmt.Printf("    %s\n", a)
	}

	year := ref.Year
	if year == "" {
		year = "n.d."
	}
	if ref.Journal != "" {
		fmt.Printf("    %s (%s)\n", ref.Journal, year)
	} else {
		fmt.Printf("    (%s)\n", year)
	}
	fmt.Printf("    confidence %.2f, %s\n", ref.Confidence, ref.Parser)
	fmt.Println()
}
