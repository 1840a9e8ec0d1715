package export

import (
	"fmt"
	"strings"

	"github.com/matsen/bibextract/internal/reference"
)

// ToRIS converts a reference to one RIS record, terminated by "ER  - ".
func ToRIS(ref reference.ParsedReference) string {
	var lines []string
	tag := func(name, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%s  - %s", name, value))
		}
	}

	tag("TY", risType(ref))
	authors := ref.Authors
	if len(authors) == 0 && ref.Author != "" {
		authors = []string{ref.Author}
	}
	for _, a := range authors {
		tag("AU", a)
	}
	tag("PY", ref.Year)
	tag("TI", ref.Title)
	tag("JO", ref.Journal)
	tag("VL", ref.Volume)
	tag("IS", ref.Issue)
	if ref.Pages != "" {
		if start, end, ok := splitPages(ref.Pages); ok {
			tag("SP", start)
			tag("EP", end)
		} else {
			tag("SP", strings.TrimSpace(ref.Pages))
		}
	}
	tag("PB", ref.Publisher)
	tag("DO", ref.DOI)
	tag("UR", ref.URL)
	lines = append(lines, "ER  - ")

	return strings.Join(lines, "\n")
}

// ToRISList converts references to RIS, records separated by blank lines.
func ToRISList(refs []reference.ParsedReference) string {
	if len(refs) == 0 {
		return ""
	}
	blocks := make([]string, len(refs))
	for i, ref := range refs {
		blocks[i] = ToRIS(ref)
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
