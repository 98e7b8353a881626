package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() ScrapeResult {
	href := "https://example.com/item-0"
	return ScrapeResult{
		Status:    StatusSuccess,
		Timestamp: time.Date(2024, 3, 1, 12, 30, 0, 123000000, time.UTC),
		URL:       "https://example.com",
		Data: []ScrapeResultGroup{
			{
				Pattern:  "titles",
				Type:     PatternCSS,
				Selector: "h2",
				Items: []Item{
					&ElementItem{ID: "item-0", Text: "Sample text for titles #1", Href: &href, HTML: "<div>x</div>"},
					&ElementItem{ID: "item-1", Text: "Sample text for titles #2"},
				},
			},
			{
				Pattern:  "emails",
				Type:     PatternRegex,
				Selector: "[a-z]+@[a-z]+",
				Items:    []Item{&MatchItem{ID: "item-0", Match: "Match 1 for emails", Groups: []string{"group1-0", "group2-0"}}},
			},
			{
				Pattern:  "payload",
				Type:     PatternJSON,
				Selector: "$.items",
				Items:    []Item{&ValueItem{ID: "item-0", Value: ValueObject{Key: "value-0", Nested: NestedValue{Data: "nested-0"}}}},
			},
			{
				Pattern:  "anything",
				Type:     PatternAuto,
				Selector: "",
				Items:    []Item{&ContentItem{ID: "item-0", Content: "Content for anything #1"}},
			},
		},
	}
}

func TestScrapeResult_JSONRoundTrip(t *testing.T) {
	original := sampleResult()

	b, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ScrapeResult
	require.NoError(t, json.Unmarshal(b, &decoded))

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeResult_ErrorEncodesEmptyData(t *testing.T) {
	r := ScrapeResult{
		Status:    StatusError,
		Timestamp: time.Now().UTC(),
		URL:       "https://example.com",
		Message:   "boom",
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, []any{}, raw["data"])
	assert.Equal(t, "boom", raw["message"])
}

func TestElementItem_NullHref(t *testing.T) {
	b, err := json.Marshal(&ElementItem{ID: "item-1", Text: "t"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"item-1","text":"t","href":null}`, string(b))
}

func TestGroup_UnknownTypeDecodesAsContent(t *testing.T) {
	var g ScrapeResultGroup
	err := json.Unmarshal([]byte(`{"pattern":"p","type":"mystery","selector":"s","items":[{"id":"item-0","content":"c"}]}`), &g)
	require.NoError(t, err)
	require.Len(t, g.Items, 1)
	_, ok := g.Items[0].(*ContentItem)
	assert.True(t, ok, "expected *ContentItem, got %T", g.Items[0])
}

func TestRequestFromResult(t *testing.T) {
	req := RequestFromResult(sampleResult())
	assert.Equal(t, "https://example.com", req.URL)
	require.Len(t, req.Patterns, 4)
	assert.Equal(t, PatternSpec{Name: "titles", Type: PatternCSS, Selector: "h2"}, req.Patterns[0])
}

func TestScrapeOptions_Defaults(t *testing.T) {
	var o ScrapeOptions
	assert.False(t, o.HTMLEnabled())
	assert.Equal(t, 1, o.Depth())
	assert.Equal(t, time.Duration(0), o.Delay())

	o = ScrapeOptions{IncludeHTML: Bool(true), MaxDepth: Int(3), RequestDelay: Int(250)}
	assert.True(t, o.HTMLEnabled())
	assert.Equal(t, 3, o.Depth())
	assert.Equal(t, 250*time.Millisecond, o.Delay())
}

func TestScrapeResult_NilSlicesEncodeAsArrays(t *testing.T) {
	r := ScrapeResult{
		Status:    StatusSuccess,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		URL:       "https://example.com",
		Data:      []ScrapeResultGroup{{Pattern: "titles", Type: PatternCSS, Selector: "h2"}},
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"items":[]`)
	assert.NotContains(t, string(b), "null")

	var decoded ScrapeResult
	require.NoError(t, json.Unmarshal(b, &decoded))
	if diff := cmp.Diff(r.Normalize(), decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeResult_NormalizeNilData(t *testing.T) {
	r := ScrapeResult{Status: StatusSuccess, URL: "https://example.com"}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded ScrapeResult
	require.NoError(t, json.Unmarshal(b, &decoded))

	n := r.Normalize()
	require.NotNil(t, n.Data)
	assert.Empty(t, n.Data)
	if diff := cmp.Diff(n, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	// the receiver is left untouched
	assert.Nil(t, r.Data)
}
