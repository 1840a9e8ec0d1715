package style

import (
	"strings"
	"testing"

	"github.com/matsen/bibextract/internal/reference"
)

func fullRef() reference.ParsedReference {
	return reference.ParsedReference{
		Authors: []string{"Smith, J.", "Jones, K."},
		Year:    "2019",
		Title:   "Title of paper",
		Journal: "Journal Name",
		Volume:  "5",
		Issue:   "2",
		Pages:   "100-120",
		DOI:     "10.1234/abc",
	}
}

func TestFormatReference(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{"APA 7", "Smith, J. & Jones, K. (2019). Title of paper. *Journal Name*, *5*(2), 100-120. https://doi.org/10.1234/abc"},
		{"IEEE", `[3] Smith, J., Jones, K., "Title of paper," *Journal Name*, vol. 5, no. 2, pp. 100-120, 2019. doi: 10.1234/abc.`},
		{"ISO 690", "SMITH, J., JONES, K. Title of paper. *Journal Name*, 2019, vol. 5, no. 2, p. 100-120. DOI: 10.1234/abc."},
		{"MLA 9", `Smith, J., and Jones, K. "Title of paper." *Journal Name*, vol. 5, no. 2, 2019, pp. 100-120. https://doi.org/10.1234/abc.`},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			if got := FormatReference(fullRef(), tt.style, 3); got != tt.want {
				t.Errorf("FormatReference(%q) =\n%s\nwant\n%s", tt.style, got, tt.want)
			}
		})
	}
}

func TestFormatReference_EmptyReference(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{"apa", "Anon. (n.d.). Untitled."},
		{"ieee", `[1] Anon, "Untitled,"`},
		{"iso", "ANON. Untitled. n.d."},
		{"mla", `Anon. "Untitled."`},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			if got := FormatReference(reference.ParsedReference{}, tt.style, 1); got != tt.want {
				t.Errorf("FormatReference(%q) = %q, want %q", tt.style, got, tt.want)
			}
		})
	}
}

func TestFormatReference_URLFallback(t *testing.T) {
	ref := reference.ParsedReference{Author: "VU", Title: "Page", URL: "https://vu.lt/x"}

	if got := FormatReference(ref, "APA", 1); !strings.HasSuffix(got, " https://vu.lt/x") {
		t.Errorf("APA should end with the URL: %q", got)
	}
	if got := FormatReference(ref, "ISO 690", 1); got != "VU. Page. n.d. Prieiga per: https://vu.lt/x." {
		t.Errorf("ISO 690 = %q", got)
	}
}

func TestAuthorLists(t *testing.T) {
	three := []string{"A, A.", "B, B.", "C, C."}
	four := append(append([]string{}, three...), "D, D.")

	if got := apaAuthors(three); got != "A, A., B, B., & C, C." {
		t.Errorf("apaAuthors(3) = %q", got)
	}
	if got := ieeeAuthors(three); got != "A, A., B, B., C, C." {
		t.Errorf("ieeeAuthors(3) = %q", got)
	}
	if got := ieeeAuthors(four); got != "A, A. et al." {
		t.Errorf("ieeeAuthors(4) = %q", got)
	}
	if got := mlaAuthors(three); got != "A, A., et al." {
		t.Errorf("mlaAuthors(3) = %q", got)
	}
	if got := isoAuthors([]string{"John Smith"}); got != "SMITH, John." {
		t.Errorf("isoAuthors = %q", got)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		want   Style
		wantOK bool
	}{
		{"APA 7", APA7, true},
		{"apa7", APA7, true},
		{" ieee ", IEEE, true},
		{"ISO 690:2021", ISO690, true},
		{"MLA 9th edition", MLA9, true},
		{"chicago", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}

	if Resolve("chicago") != APA7 {
		t.Error("unknown styles should resolve to APA 7")
	}
}

func TestFormatBibliography(t *testing.T) {
	refs := []reference.ParsedReference{{Title: "One"}, {Title: "Two"}}

	got := FormatBibliography(refs, "IEEE")
	want := `[1] Anon, "One,"` + "\n\n" + `[2] Anon, "Two,"`
	if got != want {
		t.Errorf("FormatBibliography() = %q, want %q", got, want)
	}
	if FormatBibliography(nil, "IEEE") != "" {
		t.Error("empty list should render as empty string")
	}
}
