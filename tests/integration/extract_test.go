package integration

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractOutput struct {
	Results []struct {
		Source  string   `json:"source"`
		Kind    string   `json:"kind"`
		Entries []string `json:"entries"`
		Refs    []struct {
			Raw        string   `json:"raw"`
			Title      string   `json:"title"`
			Year       string   `json:"year"`
			Authors    []string `json:"authors"`
			Confidence float64  `json:"confidence"`
			Parser     string   `json:"parser"`
		} `json:"refs"`
		Keys []string `json:"keys"`
	} `json:"results"`
	Keys       []string `json:"keys"`
	Duplicates []struct {
		IndexA int     `json:"index_a"`
		IndexB int     `json:"index_b"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"duplicates"`
	Run *struct {
		ID      string   `json:"id"`
		Sources []string `json:"sources"`
		Added   int      `json:"added"`
		Skipped int      `json:"skipped"`
	} `json:"run"`
}

type errorOutput struct {
	Error string `json:"error"`
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)

	var out extractOutput
	decode(t, mustRun(t, dir, "extract", doc), &out)

	require.Len(t, out.Results, 1)
	res := out.Results[0]
	assert.Equal(t, doc, res.Source)
	assert.Equal(t, "text", res.Kind)
	require.Len(t, res.Refs, 3)
	assert.Equal(t, "Title of paper", res.Refs[0].Title)
	assert.Equal(t, "2019", res.Refs[0].Year)
	assert.Equal(t, "apa-regex", res.Refs[0].Parser)
	assert.Equal(t, []string{"smith2019title", "jones2020another", "brown2018third"}, out.Keys)
	assert.Empty(t, out.Duplicates)
	assert.Nil(t, out.Run, "no run without --save")
}

func TestExtract_BatchKeepsOrderAndFindsDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "thesis.md", thesis)
	b := writeFile(t, dir, "report.txt", report)

	var out extractOutput
	decode(t, mustRun(t, dir, "extract", a, b, "--workers", "2"), &out)

	require.Len(t, out.Results, 2)
	assert.Equal(t, a, out.Results[0].Source)
	assert.Equal(t, b, out.Results[1].Source)
	require.Len(t, out.Keys, 6)
	assert.Equal(t, "smith2019titlea", out.Keys[3])

	require.NotEmpty(t, out.Duplicates)
	assert.Equal(t, 0, out.Duplicates[0].IndexA)
	assert.Equal(t, 3, out.Duplicates[0].IndexB)
	assert.Equal(t, 100.0, out.Duplicates[0].Score)
}

func TestExtract_NoBibliography(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "letter.txt", letter)

	res := runBibx(t, dir, "extract", doc)
	assert.Equal(t, 4, res.code)

	var out errorOutput
	decode(t, res.stdout, &out)
	assert.Contains(t, out.Error, "no bibliography found")
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "slides.pptx", "binary")

	res := runBibx(t, dir, "extract", doc)
	assert.Equal(t, 3, res.code)

	var out errorOutput
	decode(t, res.stdout, &out)
	assert.Contains(t, out.Error, "slides.pptx")
	assert.Contains(t, out.Error, "unsupported document format")
}

func TestExtract_HTML(t *testing.T) {
	dir := t.TempDir()
	html := `<html><head><style>p { color: red }</style></head><body>
<h1>Essay</h1><p>Body text.</p>
<h2>References</h2>
<p>[1] Smith, J. (2019). Title of paper. Journal Name, 5(2), 100-120.</p>
<p>[2] Jones, K. (2020). Another study of things. Other Journal, 7(1), 1-9.</p>
<p>[3] Brown, L. (2018). Third title here. Journal Three, 2(4), 10-20.</p>
</body></html>`
	doc := writeFile(t, dir, "essay.html", html)

	var out extractOutput
	decode(t, mustRun(t, dir, "extract", doc), &out)

	require.Len(t, out.Results, 1)
	assert.Equal(t, "html", out.Results[0].Kind)
	assert.Len(t, out.Results[0].Refs, 3)
}

func TestExtract_UnknownStyle(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)

	res := runBibx(t, dir, "extract", doc, "--style", "chicago")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "unknown style")
}

func TestExtract_Human(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)

	out := mustRun(t, dir, "extract", doc, "--human")
	assert.Contains(t, out, "3 references (bibliography from line 4)")
	assert.Contains(t, out, "[1] smith2019title")
	assert.False(t, json.Valid([]byte(out)))
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)

	var out struct {
		Style   string   `json:"style"`
		Entries []string `json:"entries"`
		Text    string   `json:"text"`
	}
	decode(t, mustRun(t, dir, "format", doc, "--style", "ieee"), &out)

	assert.Equal(t, "IEEE", out.Style)
	require.Len(t, out.Entries, 3)
	assert.True(t, strings.HasPrefix(out.Entries[0], `[1] Smith, J., "Title of paper,"`), out.Entries[0])
	assert.True(t, strings.HasPrefix(out.Entries[2], "[3] Brown, L."), out.Entries[2])
	assert.Equal(t, strings.Join(out.Entries, "\n\n"), out.Text)
}

func TestFormat_DefaultStyleFromConfig(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)
	mustRun(t, dir, "config", "set", "style", "MLA 9")

	var out struct {
		Style string `json:"style"`
	}
	decode(t, mustRun(t, dir, "format", doc), &out)
	assert.Equal(t, "MLA 9", out.Style)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)

	t.Run("bibtex", func(t *testing.T) {
		out := mustRun(t, dir, "export", doc)
		assert.Contains(t, out, "@article{smith2019title,")
		assert.Contains(t, out, "pages = {100--120}")
		assert.Equal(t, 3, strings.Count(out, "\n@")+1)
	})

	t.Run("ris", func(t *testing.T) {
		out := mustRun(t, dir, "export", doc, "--format", "ris")
		assert.Equal(t, 3, strings.Count(out, "TY  - JOUR"))
		assert.Equal(t, 3, strings.Count(out, "ER  - "))
	})

	t.Run("csljson", func(t *testing.T) {
		var items []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		}
		decode(t, mustRun(t, dir, "export", doc, "--format", "csljson"), &items)
		require.Len(t, items, 3)
		assert.Equal(t, "smith2019title", items[0].ID)
		assert.Equal(t, "article-journal", items[0].Type)
	})

	t.Run("unknown format", func(t *testing.T) {
		res := runBibx(t, dir, "export", doc, "--format", "endnote")
		assert.Equal(t, 1, res.code)
	})
}

func TestExport_AppendTo(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)
	bib := filepath.Join(dir, "refs.bib")

	var first, second struct {
		Added   []string `json:"added"`
		Skipped int      `json:"skipped"`
	}
	decode(t, mustRun(t, dir, "export", doc, "--append-to", bib), &first)
	assert.Equal(t, []string{"smith2019title", "jones2020another", "brown2018third"}, first.Added)
	assert.Equal(t, 0, first.Skipped)

	decode(t, mustRun(t, dir, "export", doc, "--append-to", bib), &second)
	assert.Empty(t, second.Added)
	assert.Equal(t, 3, second.Skipped)

	res := runBibx(t, dir, "export", doc, "--format", "ris", "--append-to", bib)
	assert.Equal(t, 1, res.code)
}

func TestDupes(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "thesis.txt", thesis)
	b := writeFile(t, dir, "report.txt", report)

	var out struct {
		Total      int `json:"total_refs"`
		Duplicates []struct {
			IndexA int    `json:"index_a"`
			IndexB int    `json:"index_b"`
			IDA    string `json:"id_a"`
		} `json:"duplicates"`
	}
	decode(t, mustRun(t, dir, "dupes", a, b), &out)

	assert.Equal(t, 6, out.Total)
	require.Len(t, out.Duplicates, 1)
	assert.Equal(t, 0, out.Duplicates[0].IndexA)
	assert.Equal(t, 3, out.Duplicates[0].IndexB)
	assert.Empty(t, out.Duplicates[0].IDA)

	res := runBibx(t, dir, "dupes")
	assert.Equal(t, 1, res.code)
}

func TestRewrite(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "thesis.txt", thesis)

	var out struct {
		Text         string   `json:"text"`
		Replacements int      `json:"replacements"`
		Unresolved   []string `json:"unresolved"`
	}
	decode(t, mustRun(t, dir, "rewrite", doc), &out)

	assert.Equal(t, "Introduction\nThis thesis studies parsing, as shown in [@smith2019title; @jones2020another] and in [9].", out.Text)
	assert.Equal(t, 1, out.Replacements)
	assert.Equal(t, []string{"[9]"}, out.Unresolved)
}

func TestRewrite_KeysFromBib(t *testing.T) {
	dir := t.TempDir()
	body := writeFile(t, dir, "draft.md", "As argued in [2], and also [1-2].")
	bib := writeFile(t, dir, "refs.bib", "@article{alpha2020,\n  title = {A},\n}\n\n@book{beta2021,\n  title = {B},\n}\n")
	outPath := filepath.Join(dir, "draft.cited.md")

	var out struct {
		Replacements int    `json:"replacements"`
		Output       string `json:"output"`
	}
	decode(t, mustRun(t, dir, "rewrite", body, "--keys-from", bib, "-o", outPath), &out)
	assert.Equal(t, 2, out.Replacements)
	assert.Equal(t, outPath, out.Output)

	got := readFile(t, outPath)
	assert.Equal(t, "As argued in [@beta2021], and also [@alpha2020; @beta2021].\n", got)
}

func TestRewrite_NoBibliography(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "letter.txt", letter)

	res := runBibx(t, dir, "rewrite", doc)
	assert.Equal(t, 4, res.code)
}
