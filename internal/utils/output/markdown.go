package output

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/scrapedeck/internal/utils/url"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// FormatMarkdown converts the HTML report of result to GitHub-flavored Markdown
func FormatMarkdown(result models.ScrapeResult) ([]byte, error) {
	doc, err := BuildReport(result)
	if err != nil {
		return nil, err
	}
	report, err := doc.Html()
	if err != nil {
		return nil, err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Resolve relative links against the scraped page
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(result.URL, href)
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", selec.Text(), resolved, titlePart)
			return &str
		},
	})

	cleaned, err := CleanHTML(report)
	if err != nil {
		return nil, err
	}

	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return nil, err
	}
	return []byte(mdStr + "\n"), nil
}
