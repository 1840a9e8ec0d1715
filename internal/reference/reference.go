// Package reference defines the core domain types for extracted references.
package reference

// Strategy tags which parsing strategy produced a reference.
type Strategy string

// Parsing strategies in tie-break order.
const (
	StrategyAuthorDate  Strategy = "apa-regex"
	StrategyNumbered    Strategy = "ieee-regex"
	StrategyProceedings Strategy = "inproc-regex"
	StrategyGeneric     Strategy = "generic-regex"
)

// Strategies lists every known strategy in tie-break order.
var Strategies = []Strategy{StrategyAuthorDate, StrategyNumbered, StrategyProceedings, StrategyGeneric}

// Known reports whether s is one of the parsing strategies.
func (s Strategy) Known() bool {
	for _, k := range Strategies {
		if s == k {
			return true
		}
	}
	return false
}

// ParsedReference is one bibliography entry broken into fields.
// Empty strings mean the field was not found.
type ParsedReference struct {
	// Raw is the entry exactly as the caller supplied it.
	Raw string `json:"raw"`

	// Metadata
	Title   string   `json:"title,omitempty"`
	Year    string   `json:"year,omitempty"`   // 4-digit year
	Author  string   `json:"author,omitempty"` // Display string as written
	Authors []string `json:"authors"`

	// Container
	Journal   string `json:"journal,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Issue     string `json:"issue,omitempty"`
	Pages     string `json:"pages,omitempty"`
	Publisher string `json:"publisher,omitempty"`

	// Identifiers
	DOI string `json:"doi,omitempty"` // Lower-cased, no resolver prefix
	URL string `json:"url,omitempty"`

	// Parse quality
	Confidence float64  `json:"confidence"`
	Parser     Strategy `json:"parser"`
}

// HasLocator reports whether any of volume, issue or pages is present.
func (r ParsedReference) HasLocator() bool {
	return r.Volume != "" || r.Issue != "" || r.Pages != ""
}

// FirstAuthor returns the first split author, falling back to the display
// string.
func (r ParsedReference) FirstAuthor() string {
	if len(r.Authors) > 0 {
		return r.Authors[0]
	}
	return r.Author
}
