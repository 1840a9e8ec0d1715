package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/bibextract/internal/reference"
)

func TestToBibTeX_BasicArticle(t *testing.T) {
	ref := reference.ParsedReference{
		Title:   "Test Paper Title",
		Year:    "2019",
		Author:  "Smith, John; Doe, Jane",
		Authors: []string{"Smith, John", "Doe, Jane"},
		Journal: "Nature",
		Volume:  "5",
		Issue:   "2",
		Pages:   "100-120",
		DOI:     "10.1234/test",
	}

	got := ToBibTeX(ref, "smith2019test")

	// Check entry type and key
	if !strings.HasPrefix(got, "@article{smith2019test,") {
		t.Errorf("ToBibTeX() should start with @article{smith2019test, got:\n%s", got)
	}

	for _, want := range []string{
		`author = {Smith, John and Doe, Jane}`,
		`title = {Test Paper Title}`,
		`journal = {Nature}`,
		`year = {2019}`,
		`volume = {5}`,
		`number = {2}`,
		`pages = {100--120}`,
		`doi = {10.1234/test}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() should contain %q, got:\n%s", want, got)
		}
	}

	// Check closing brace
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_Inproceedings(t *testing.T) {
	ref := reference.ParsedReference{
		Title:   "A Conference Paper",
		Year:    "2008",
		Authors: []string{"Alice Brown"},
		Journal: "2008 IEEE Symposium on Security and Privacy",
		Parser:  reference.StrategyProceedings,
	}

	got := ToBibTeX(ref, "brown2008conference")

	if !strings.HasPrefix(got, "@inproceedings{brown2008conference,") {
		t.Errorf("ToBibTeX() conference paper should be @inproceedings, got:\n%s", got)
	}
	if !strings.Contains(got, `booktitle = {2008 IEEE Symposium on Security and Privacy}`) {
		t.Errorf("ToBibTeX() conference paper should use booktitle, got:\n%s", got)
	}
	if !strings.Contains(got, `author = {Brown, Alice}`) {
		t.Errorf("ToBibTeX() should reorder the author name, got:\n%s", got)
	}
}

func TestDetermineEntryType(t *testing.T) {
	tests := []struct {
		name string
		ref  reference.ParsedReference
		want string
	}{
		{"journal", reference.ParsedReference{Journal: "Nature"}, "article"},
		{"volume only", reference.ParsedReference{Volume: "3"}, "article"},
		{"proceedings venue", reference.ParsedReference{Journal: "Proceedings of NeurIPS"}, "inproceedings"},
		{"conference venue", reference.ParsedReference{Journal: "International Conference on Machine Learning"}, "inproceedings"},
		{"workshop venue", reference.ParsedReference{Journal: "Workshop on AI Safety"}, "inproceedings"},
		{"proceedings strategy", reference.ParsedReference{Journal: "Proc. X", Parser: reference.StrategyProceedings}, "inproceedings"},
		{"publisher", reference.ParsedReference{Publisher: "Mokslo leidykla"}, "book"},
		{"book keyword in raw", reference.ParsedReference{Raw: "Jonaitis. Knyga apie viską. 2001."}, "book"},
		{"nothing", reference.ParsedReference{}, "misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineEntryType(tt.ref); got != tt.want {
				t.Errorf("determineEntryType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"single author", []string{"Smith, John"}, "Smith, John"},
		{"given first", []string{"John Smith", "Jane Doe"}, "Smith, John and Doe, Jane"},
		{"initials after family", []string{"Smith J.", "Brown, A. B."}, "Smith, J. and Brown, A. B."},
		{"author with only last name", []string{"Corporation"}, "Corporation"},
		{"mixed authors", []string{"John Smith", "WHO"}, "Smith, John and WHO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"100% effective", `100\% effective`},
		{"A & B", `A \& B`},
		{"$100 price", `\$100 price`},
		{"section #1", `section \#1`},
		{"under_score", `under\_score`},
		{"{braces}", `\{braces\}`},
		{"test~tilde", `test\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
		{"A & B: $100 for {item} #1", `A \& B: \$100 for \{item\} \#1`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLatex(tt.input); got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToBibTeX_OptionalFields(t *testing.T) {
	ref := reference.ParsedReference{Title: "Minimal Paper", Authors: []string{"B, A"}}

	got := ToBibTeX(ref, "b2026minimal")

	for _, absent := range []string{"doi = ", "year = ", "pages = ", "journal = ", "booktitle = ", "publisher = ", "url = "} {
		if strings.Contains(got, absent) {
			t.Errorf("ToBibTeX() should not include empty %q, got:\n%s", absent, got)
		}
	}
}

func TestToBibTeX_SpecialCharactersInTitle(t *testing.T) {
	ref := reference.ParsedReference{
		Title:   "A Study of α & β: 100% Complete",
		Authors: []string{"Test Author"},
		Year:    "2026",
	}

	got := ToBibTeX(ref, "author2026study")

	if !strings.Contains(got, `title = {A Study of α \& β: 100\% Complete}`) {
		t.Errorf("ToBibTeX() should escape special chars in title, got:\n%s", got)
	}
}

func TestToBibTeX_UnsplitAuthorIsProtected(t *testing.T) {
	ref := reference.ParsedReference{Title: "Global report", Author: "World Health Organization"}

	got := ToBibTeX(ref, "who")

	if !strings.Contains(got, `author = {{World Health Organization}}`) {
		t.Errorf("ToBibTeX() should brace a corporate author, got:\n%s", got)
	}
}

func TestToBibTeXList(t *testing.T) {
	refs := []reference.ParsedReference{
		{Title: "First Paper", Authors: []string{"Smith, J."}, Year: "2026", Journal: "J"},
		{Title: "First Paper again", Authors: []string{"Smith, J."}, Year: "2026", Journal: "J"},
	}

	got := ToBibTeXList(refs)

	if !strings.Contains(got, "@article{smith2026first,") {
		t.Errorf("ToBibTeXList() should contain first entry, got:\n%s", got)
	}
	if !strings.Contains(got, "@article{smith2026firsta,") {
		t.Errorf("ToBibTeXList() should suffix the colliding key, got:\n%s", got)
	}

	parts := strings.Split(got, "@article{")
	if len(parts) != 3 { // Empty first part + 2 entries
		t.Errorf("ToBibTeXList() should have 2 entries separated properly, got %d parts", len(parts)-1)
	}
}

func TestToBibTeXList_Empty(t *testing.T) {
	if got := ToBibTeXList(nil); got != "" {
		t.Errorf("ToBibTeXList(nil) should return empty string, got: %q", got)
	}
}

func TestParseBibTeXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	content := `@article{smith2019title,
  title = {Title},
  doi = {https://doi.org/10.1234/ABC},
}

@book{jonaitis2001knyga,
  title = {Knyga},
}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	idx, err := ParseBibTeXFile(path)
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}

	if strings.Join(idx.Order, ",") != "smith2019title,jonaitis2001knyga" {
		t.Errorf("Order = %v", idx.Order)
	}
	if !idx.HasEntry("other", "10.1234/abc") {
		t.Error("HasEntry should match by normalised DOI")
	}
	if !idx.HasEntry("jonaitis2001knyga", "") {
		t.Error("HasEntry should fall back to the key")
	}
	if idx.HasEntry("new2020key", "10.9999/new") {
		t.Error("HasEntry matched an unknown entry")
	}

	refs := []reference.ParsedReference{{DOI: "10.1234/abc"}, {Title: "New"}}
	missing, keys := idx.Missing(refs, []string{"x", "new2020"})
	if len(missing) != 1 || keys[0] != "new2020" {
		t.Errorf("Missing() = %v, %v", missing, keys)
	}
}

func TestParseBibTeXFile_NotExist(t *testing.T) {
	idx, err := ParseBibTeXFile(filepath.Join(t.TempDir(), "none.bib"))
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}
	if len(idx.Keys) != 0 {
		t.Errorf("expected empty index, got %v", idx.Keys)
	}
}

func TestAppendToBibFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bib")
	if err := AppendToBibFile(path, "@misc{a,\n}\n"); err != nil {
		t.Fatal(err)
	}
	if err := AppendToBibFile(path, "@misc{b,\n}\n"); err != nil {
		t.Fatal(err)
	}

	idx, err := ParseBibTeXFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(idx.Order, ",") != "a,b" {
		t.Errorf("Order = %v", idx.Order)
	}
}
