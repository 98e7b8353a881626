package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/scrapedeck/pkg/models"
)

func sampleResult() models.ScrapeResult {
	href := "https://example.com/item-0"
	return models.ScrapeResult{
		Status:    models.StatusSuccess,
		Timestamp: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		URL:       "https://example.com/news",
		Data: []models.ScrapeResultGroup{
			{
				Pattern:  "titles",
				Type:     models.PatternCSS,
				Selector: "h2",
				Items: []models.Item{
					&models.ElementItem{ID: "item-0", Text: `Say "hi"`, Href: &href},
					&models.ElementItem{ID: "item-1", Text: "b"},
					&models.ElementItem{ID: "item-2", Text: "c", HTML: `<script>alert(1)</script><b class="x">c</b>`},
				},
			},
			{
				Pattern:  "emails",
				Type:     models.PatternRegex,
				Selector: `\w+@\w+`,
				Items: []models.Item{
					&models.MatchItem{ID: "item-0", Match: "Match 1", Groups: []string{"g1", "g2"}},
				},
			},
		},
	}
}

func TestFormatCSV(t *testing.T) {
	got, err := FormatCSV(sampleResult())
	require.NoError(t, err)

	want := `"titles (css)"
"id","text","href","html"
"item-0","Say ""hi""","https://example.com/item-0",""
"item-1","b","",""
"item-2","c","","<script>alert(1)</script><b class=""x"">c</b>"

"emails (regex)"
"id","match","groups"
"item-0","Match 1","[""g1"",""g2""]"

`
	assert.Equal(t, want, string(got))
}

func TestFormatCSV_JSONValues(t *testing.T) {
	r := models.ScrapeResult{
		Status: models.StatusSuccess,
		Data: []models.ScrapeResultGroup{{
			Pattern: "cfg", Type: models.PatternJSON, Selector: "$.a",
			Items: []models.Item{&models.ValueItem{ID: "item-0", Value: models.ValueObject{Key: "k", Nested: models.NestedValue{Data: "d"}}}},
		}},
	}
	got, err := FormatCSV(r)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"{""key"":""k"",""nested"":{""data"":""d""}}"`)
}

func TestFormatCSV_ErrorResultIsEmpty(t *testing.T) {
	got, err := FormatCSV(models.ScrapeResult{Status: models.StatusError, Message: "boom"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFormatJSON(t *testing.T) {
	got, err := FormatJSON(sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "[\n  {"))

	var groups []models.ScrapeResultGroup
	require.NoError(t, json.Unmarshal(got, &groups))
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Items, 3)

	empty, err := FormatJSON(models.ScrapeResult{Status: models.StatusError})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestFormatYAML(t *testing.T) {
	got, err := FormatYAML(sampleResult())
	require.NoError(t, err)
	s := string(got)
	assert.Contains(t, s, "pattern: titles")
	assert.Contains(t, s, "href: null")
	assert.Contains(t, s, "- g1")
}

func TestFormatHTML(t *testing.T) {
	got, err := FormatHTML(sampleResult())
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(got))
	require.NoError(t, err)

	assert.Equal(t, "Scrape of https://example.com/news", strings.TrimSpace(doc.Find("title").Text()))
	headings := doc.Find("section h2")
	require.Equal(t, 2, headings.Length())
	assert.Equal(t, "titles (css)", strings.TrimSpace(headings.First().Text()))
	assert.Equal(t, 1, doc.Find(`td a[href="https://example.com/item-0"]`).Length())
	assert.Equal(t, 4, doc.Find("section").First().Find("tr").Length())
	assert.NotContains(t, string(got), "alert(1)")
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestFormatHTML_ErrorResult(t *testing.T) {
	got, err := FormatHTML(models.ScrapeResult{
		Status:  models.StatusError,
		URL:     "https://example.com",
		Message: "Network error or server refused the connection",
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(got))
	require.NoError(t, err)
	assert.Contains(t, doc.Find("p.error").Text(), "Network error")
	assert.Equal(t, 0, doc.Find("section").Length())
}

func TestCleanHTML(t *testing.T) {
	got, err := CleanHTML(`<div class="a" onclick="x()"><script>bad()</script><a href="/p" style="s">link</a></div>`)
	require.NoError(t, err)
	assert.Equal(t, `<div><a href="/p">link</a></div>`, got)
}

func TestFormatMarkdown(t *testing.T) {
	got, err := FormatMarkdown(sampleResult())
	require.NoError(t, err)
	s := string(got)
	assert.Contains(t, s, "# Scraped Results")
	assert.Contains(t, s, "titles (css)")
	assert.Contains(t, s, "[https://example.com/item-0](https://example.com/item-0)")
	assert.Contains(t, s, "|")
	assert.NotContains(t, s, "alert(1)")
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json": JSON, "CSV": CSV, "yml": YAML, ".yaml": YAML,
		"htm": HTML, "markdown": Markdown, "md": Markdown,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	r := sampleResult()

	path := filepath.Join(dir, "out.csv")
	require.NoError(t, SaveFile(r, path))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := FormatCSV(r)
	require.NoError(t, err)
	assert.Equal(t, want, onDisk)

	assert.Error(t, SaveFile(r, filepath.Join(dir, "noext")))
	assert.Error(t, SaveFile(r, filepath.Join(dir, "out.pdf")))
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResult(), YAML))
	assert.Contains(t, buf.String(), "pattern: emails")
}

func TestDefaultFileName(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "scrape-https---example-com-news-2024-03-09", ExportName(sampleResult(), day))
	assert.Equal(t, "scrape-https---example-com-news-2024-03-09.csv", DefaultFileName(sampleResult(), CSV, day))
}
