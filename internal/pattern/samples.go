package pattern

import "github.com/law-makers/scrapedeck/pkg/models"

// Sample is a ready-made pattern users can start from
type Sample struct {
	models.PatternSpec
	Description string
}

// Samples returns the built-in sample patterns.
func Samples() []Sample {
	return []Sample{
		{
			PatternSpec: models.PatternSpec{Name: "Article Titles", Type: models.PatternCSS, Selector: "h1, h2.article-title"},
			Description: "Extracts main titles and article headings",
		},
		{
			PatternSpec: models.PatternSpec{Name: "Product Prices", Type: models.PatternCSS, Selector: `.price, span[itemprop="price"]`},
			Description: "Extracts product prices from e-commerce sites",
		},
		{
			PatternSpec: models.PatternSpec{Name: "Email Addresses", Type: models.PatternRegex, Selector: `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`},
			Description: "Finds email addresses on the page",
		},
		{
			PatternSpec: models.PatternSpec{Name: "Links", Type: models.PatternCSS, Selector: "a[href]"},
			Description: "Extracts all links with their text and URLs",
		},
		{
			PatternSpec: models.PatternSpec{Name: "Images", Type: models.PatternCSS, Selector: "img[src]"},
			Description: "Extracts all images with their sources and alt text",
		},
	}
}

// FindSample looks up a sample by case-sensitive name.
func FindSample(name string) (Sample, bool) {
	for _, s := range Samples() {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
