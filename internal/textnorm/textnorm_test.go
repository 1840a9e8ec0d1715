package textnorm

import (
	"strings"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"a  b", "a b"},
		{"\ta\n\nb \r\n c\t", "a b c"},
		{"already normal", "already normal"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeWhitespace(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeWhitespace(got); again != got {
				t.Errorf("NormalizeWhitespace is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFoldDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Literatūros sąrašas", "Literaturos sarasas"},
		{"Šaltiniai", "Saltiniai"},
		{"Élodie", "Elodie"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := FoldDiacritics(tt.in); got != tt.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"References", true},
		{"REFERENCES", true},
		{"  References:  ", true},
		{"5. Literatūra", true},
		{"5) Bibliography", true},
		{"IV. References", true},
		{"Literatūros sąrašas", true},
		{"LITERATŪROS SĄRAŠAS", true},
		{"Naudota literatūra", true},
		{"Works Cited", true},
		{"L I T E R A T U R A", true},
		{"R E F E R E N C E S", true},
		{"W o r k s  C i t e d", true},
		{"", false},
		{"Introduction", false},
		{"References to prior work are discussed below", false},
		{"Smith, J. (2019). References in practice.", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := LooksLikeHeading(tt.line); got != tt.want {
				t.Errorf("LooksLikeHeading(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestLooksLikeStopHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Appendix", true},
		{"Appendix A. Survey", true},
		{"Priedai", true},
		{"1 priedas", false},
		{"3. Santrauka", true},
		{"Summary", true},
		{"ABSTRACT", true},
		{"Interview transcript", true},
		{"Questionnaire", true},
		{"Klausimynas", true},
		{"", false},
		{"References", false},
		{"Smith, J. (2019). Appendix studies.", false},
		{"Appendix " + strings.Repeat("x", MaxStopHeadingLen), false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := LooksLikeStopHeading(tt.line); got != tt.want {
				t.Errorf("LooksLikeStopHeading(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestLooksLikeStopHeading_LengthBoundary(t *testing.T) {
	// Exactly MaxStopHeadingLen characters is still a heading.
	line := "Appendix " + strings.Repeat("x", MaxStopHeadingLen-len("Appendix "))
	if len(line) != MaxStopHeadingLen {
		t.Fatalf("test setup: len = %d", len(line))
	}
	if !LooksLikeStopHeading(line) {
		t.Errorf("line of %d chars should be a stop heading", MaxStopHeadingLen)
	}
	if LooksLikeStopHeading(line + "x") {
		t.Errorf("line of %d chars should not be a stop heading", MaxStopHeadingLen+1)
	}
}

func TestFindYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smith (2019) Title", "2019"},
		{"published 1998, reprinted 2004", "1998"},
		{"no year here", ""},
		{"code 12019 is not a year", ""},
		{"1850 is too early", ""},
	}

	for _, tt := range tests {
		if got := FindYear(tt.in); got != tt.want {
			t.Errorf("FindYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if HasYear(tt.in) != (tt.want != "") {
			t.Errorf("HasYear(%q) disagrees with FindYear", tt.in)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		got := SplitLines(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitLines(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
