package pattern

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/law-makers/scrapedeck/pkg/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		typ      models.PatternType
		want     bool
	}{
		{"css simple", "h2", models.PatternCSS, true},
		{"css whitespace", "   ", models.PatternCSS, false},
		{"xpath with slash", "//div[@class='name']", models.PatternXPath, true},
		{"xpath without slash", "div", models.PatternXPath, false},
		{"xpath only spaces and slash", "  ", models.PatternXPath, false},
		{"regex valid", "[a-z0-9]+", models.PatternRegex, true},
		{"regex unbalanced bracket", "[a-z", models.PatternRegex, false},
		{"regex unbalanced paren", "(abc", models.PatternRegex, false},
		{"regex js lookbehind", `(?<=\$)\d+`, models.PatternRegex, true},
		{"regex named group", `(?<year>\d{4})`, models.PatternRegex, true},
		{"json dollar", "$.items[*].name", models.PatternJSON, true},
		{"json dot only", "items.name", models.PatternJSON, true},
		{"json plain word", "items", models.PatternJSON, false},
		{"auto anything", "whatever", models.PatternAuto, true},
		{"unknown type", "h2", models.PatternType("sql"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.selector, tt.typ))
		})
	}
}

func TestValidate_DuplicateGroupNames(t *testing.T) {
	tests := []struct {
		selector string
		want     bool
	}{
		{`(?<n>a)(?<n>b)`, false},
		{`(?<year>\d{4})-(?<month>\d{2})-(?<year>\d{2})`, false},
		{`(?<a>x)(?<b>y)`, true},
		{`(?<=\$)(?<n>\d+)(?<!x)`, true},
		{`\(?<n>a\)(?<n>b)`, true},
		{`[(?<n>](?<n>b)`, true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.selector, models.PatternRegex))
		})
	}
}

func TestValidate_EmptySelector(t *testing.T) {
	for _, typ := range models.PatternTypes() {
		got := Validate("", typ)
		if typ == models.PatternAuto {
			assert.True(t, got, "auto must accept empty selector")
			continue
		}
		assert.False(t, got, "type %s must reject empty selector", typ)
	}
}

func TestValidate_RegexAgreesWithCompilerOnCommonSyntax(t *testing.T) {
	// Patterns where the JS and RE2 dialects agree.
	inputs := []string{`\d+`, `^abc$`, `a|b`, `[`, `(`, `a**`, `x{2,3}`, `[^)]+`}
	for _, in := range inputs {
		_, err := regexp.Compile(in)
		assert.Equal(t, err == nil, Validate(in, models.PatternRegex), "pattern %q", in)
	}
}

func TestValidate_ConcurrentRegex(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if !Validate(`[a-z]+\d*`, models.PatternRegex) {
					t.Error("expected valid regex")
				}
			}
		}()
	}
	wg.Wait()
}

func TestDescribe(t *testing.T) {
	for _, typ := range models.PatternTypes() {
		assert.NotEmpty(t, Describe(typ), "missing description for %s", typ)
	}
	assert.Empty(t, Describe("unknown"))
}

func TestSamplesAreValid(t *testing.T) {
	samples := Samples()
	assert.Len(t, samples, 5)
	for _, s := range samples {
		assert.True(t, Validate(s.Selector, s.Type), "sample %q should validate", s.Name)
	}

	s, ok := FindSample("Links")
	assert.True(t, ok)
	assert.Equal(t, "a[href]", s.Selector)
}
