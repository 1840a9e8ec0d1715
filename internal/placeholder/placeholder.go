// Package placeholder rewrites numeric citation markers in body text into
// Pandoc-style citekey citations.
package placeholder

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxRangeSpan bounds how many numbers a single "[n-m]" range may expand to.
const MaxRangeSpan = 50

// markerRe matches "[3]", "[1, 4]", "[2-5]" and mixes such as "[1, 3–5]".
var markerRe = regexp.MustCompile(`\[(\d{1,4}(?:\s*[-–,]\s*\d{1,4})*)\]`)

// Result is a rewritten body.
type Result struct {
	Text         string `json:"text"`
	Replacements int    `json:"replacements"`
	// Unresolved lists markers left untouched because a number had no key.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Rewrite replaces numeric markers in body with "[@key]" or "[@k1; @k2]".
// keys[i] is the key of reference number i+1. A marker is rewritten only when
// every number it names has a key; otherwise it is left as it is.
func Rewrite(body string, keys []string) Result {
	var res Result
	res.Text = markerRe.ReplaceAllStringFunc(body, func(marker string) string {
		nums, ok := expand(marker[1 : len(marker)-1])
		if !ok {
			res.Unresolved = append(res.Unresolved, marker)
			return marker
		}

		cites := make([]string, 0, len(nums))
		for _, n := range nums {
			if n < 1 || n > len(keys) || keys[n-1] == "" {
				res.Unresolved = append(res.Unresolved, marker)
				return marker
			}
			cites = append(cites, "@"+keys[n-1])
		}
		res.Replacements++
		return "[" + strings.Join(cites, "; ") + "]"
	})
	return res
}

// expand turns "1, 3-5" into [1 3 4 5].
func expand(inner string) ([]int, bool) {
	var out []int
	for _, part := range strings.Split(inner, ",") {
		part = strings.ReplaceAll(strings.TrimSpace(part), "–", "-")
		lo, hi, isRange := strings.Cut(part, "-")

		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, false
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, false
			}
		}
		if to < from || to-from >= MaxRangeSpan {
			return nil, false
		}
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
	}
	return out, true
}
