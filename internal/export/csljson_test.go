package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matsen/bibextract/internal/reference"
)

func TestToCSLJSON(t *testing.T) {
	refs := []reference.ParsedReference{
		{
			Title:   "Search & Rescue",
			Year:    "2019",
			Authors: []string{"Smith, J.", "WHO"},
			Journal: "Journal Name",
			Pages:   "100-120",
			DOI:     "10.1234/abc",
		},
		{Raw: "Nothing useful"},
	}

	data, err := ToCSLJSON(refs)
	if err != nil {
		t.Fatalf("ToCSLJSON() error = %v", err)
	}
	if !strings.Contains(string(data), "Search & Rescue") {
		t.Errorf("ampersand should not be HTML-escaped:\n%s", data)
	}

	var items []CSLItem
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.ID != "smith2019search" || first.Type != "article-journal" {
		t.Errorf("first item id/type = %q/%q", first.ID, first.Type)
	}
	if len(first.Author) != 2 || first.Author[0].Family != "Smith" || first.Author[0].Given != "J." || first.Author[1].Literal != "WHO" {
		t.Errorf("first item authors = %+v", first.Author)
	}
	if first.Issued == nil || first.Issued.DateParts[0][0] != 2019 {
		t.Errorf("first item issued = %+v", first.Issued)
	}
	if first.ContainerTitle != "Journal Name" || first.Page != "100-120" || first.DOI != "10.1234/abc" {
		t.Errorf("first item container fields = %+v", first)
	}

	second := items[1]
	if second.Title != "Untitled 2" {
		t.Errorf("second item title = %q, want Untitled 2", second.Title)
	}
	if len(second.Author) != 1 || second.Author[0].Literal != "Anon" {
		t.Errorf("second item authors = %+v", second.Author)
	}
	if second.Issued != nil {
		t.Errorf("second item should have no issued date, got %+v", second.Issued)
	}
}

func TestToCSLJSON_Empty(t *testing.T) {
	data, err := ToCSLJSON(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("ToCSLJSON(nil) = %s, want []", data)
	}
}

func TestCSLType(t *testing.T) {
	tests := []struct {
		ref  reference.ParsedReference
		want string
	}{
		{reference.ParsedReference{Parser: reference.StrategyProceedings}, "paper-conference"},
		{reference.ParsedReference{Journal: "Nature"}, "article-journal"},
		{reference.ParsedReference{Raw: "Vilnius: Mokslo leidykla"}, "book"},
		{reference.ParsedReference{Raw: "Proceedings of X"}, "paper-conference"},
		{reference.ParsedReference{}, "article"},
	}

	for _, tt := range tests {
		if got := cslType(tt.ref); got != tt.want {
			t.Errorf("cslType(%+v) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
