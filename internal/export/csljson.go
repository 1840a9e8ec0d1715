package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matsen/bibextract/internal/reference"
)

// CSLName is a CSL name variable. Names that cannot be split use Literal.
type CSLName struct {
	Family  string `json:"family,omitempty"`
	Given   string `json:"given,omitempty"`
	Literal string `json:"literal,omitempty"`
}

// CSLDate is a CSL date variable.
type CSLDate struct {
	DateParts [][]int `json:"date-parts"`
}

// CSLItem is one CSL-JSON bibliography item.
type CSLItem struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Author         []CSLName `json:"author"`
	Issued         *CSLDate  `json:"issued,omitempty"`
	ContainerTitle string    `json:"container-title,omitempty"`
	Volume         string    `json:"volume,omitempty"`
	Issue          string    `json:"issue,omitempty"`
	Page           string    `json:"page,omitempty"`
	Publisher      string    `json:"publisher,omitempty"`
	DOI            string    `json:"DOI,omitempty"`
	URL            string    `json:"URL,omitempty"`
}

// ToCSLItem converts a reference to a CSL item. index is 1-based and only
// used to name untitled items.
func ToCSLItem(ref reference.ParsedReference, key string, index int) CSLItem {
	item := CSLItem{
		ID:             key,
		Type:           cslType(ref),
		Title:          ref.Title,
		Author:         cslNames(ref),
		ContainerTitle: ref.Journal,
		Volume:         ref.Volume,
		Issue:          ref.Issue,
		Page:           ref.Pages,
		Publisher:      ref.Publisher,
		DOI:            ref.DOI,
		URL:            ref.URL,
	}
	if item.Title == "" {
		item.Title = fmt.Sprintf("Untitled %d", index)
	}
	if year, err := strconv.Atoi(ref.Year); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}
	return item
}

// ToCSLJSON renders references as an indented CSL-JSON array keyed by
// Citekeys.
func ToCSLJSON(refs []reference.ParsedReference) ([]byte, error) {
	keys := Citekeys(refs)
	items := make([]CSLItem, len(refs))
	for i, ref := range refs {
		items[i] = ToCSLItem(ref, keys[i], i+1)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encoding CSL-JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func cslNames(ref reference.ParsedReference) []CSLName {
	authors := ref.Authors
	if len(authors) == 0 && ref.Author != "" {
		authors = []string{ref.Author}
	}

	var names []CSLName
	for _, a := range authors {
		n := reference.ParseName(a)
		switch {
		case n.Family == "":
			continue
		case n.Given == "":
			names = append(names, CSLName{Literal: n.Family})
		default:
			names = append(names, CSLName{Family: n.Family, Given: n.Given})
		}
	}
	if len(names) == 0 {
		return []CSLName{{Literal: "Anon"}}
	}
	return names
}
