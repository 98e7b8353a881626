package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/law-makers/scrapedeck/pkg/models"
)

const reportSkeleton = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title></title></head>
<body><h1>Scraped Results</h1><p class="meta"></p></body></html>`

// BuildReport lays a result out as an HTML document: a header with url, time and
// status, then one section per pattern group holding a table of its items.
func BuildReport(result models.ScrapeResult) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(reportSkeleton))
	if err != nil {
		return nil, err
	}

	doc.Find("title").SetText("Scrape of " + result.URL)
	doc.Find("p.meta").AppendHtml(fmt.Sprintf(
		`<a href="%s">%s</a> <time>%s</time> <strong>%s</strong>`,
		html.EscapeString(result.URL),
		html.EscapeString(result.URL),
		result.Timestamp.UTC().Format(time.RFC3339),
		html.EscapeString(string(result.Status)),
	))

	body := doc.Find("body")
	if !result.OK() {
		body.AppendHtml(fmt.Sprintf(`<p class="error">%s</p>`, html.EscapeString(result.Message)))
		return doc, nil
	}

	for _, group := range result.Data {
		section, err := groupSection(group)
		if err != nil {
			return nil, err
		}
		body.AppendHtml(section)
	}
	return doc, nil
}

func groupSection(group models.ScrapeResultGroup) (string, error) {
	var keys []string
	seen := map[string]bool{}
	for _, item := range group.Items {
		for _, f := range item.Fields() {
			if !seen[f.Key] {
				seen[f.Key] = true
				keys = append(keys, f.Key)
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<section><h2>%s (%s)</h2><p><code>%s</code></p>`,
		html.EscapeString(group.Pattern), html.EscapeString(string(group.Type)), html.EscapeString(group.Selector))

	sb.WriteString("<table><thead><tr>")
	for _, k := range keys {
		fmt.Fprintf(&sb, "<th>%s</th>", html.EscapeString(k))
	}
	sb.WriteString("</tr></thead><tbody>")

	for _, item := range group.Items {
		values := map[string]any{}
		for _, f := range item.Fields() {
			values[f.Key] = f.Value
		}
		sb.WriteString("<tr>")
		for _, k := range keys {
			cell, err := htmlCell(k, values[k])
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, "<td>%s</td>", cell)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table></section>")
	return sb.String(), nil
}

func htmlCell(key string, v any) (string, error) {
	text, err := cellValue(v)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", nil
	}

	switch key {
	case "href":
		esc := html.EscapeString(text)
		return fmt.Sprintf(`<a href="%s">%s</a>`, esc, esc), nil
	case "html":
		cleaned, err := CleanHTML(text)
		if err != nil {
			return "", err
		}
		return "<code>" + html.EscapeString(cleaned) + "</code>", nil
	}
	return html.EscapeString(text), nil
}

// FormatHTML renders the result as an indented standalone HTML report
func FormatHTML(result models.ScrapeResult) ([]byte, error) {
	doc, err := BuildReport(result)
	if err != nil {
		return nil, err
	}
	return []byte(PrettyPrint(doc.Nodes[0])), nil
}

// CleanHTML removes unwanted elements and attributes and returns the sanitized body content
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	// Remove unwanted tags
	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	// Clean attributes
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			if keepAttr(node.Data, attr.Key) {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	htmlStr, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}

func keepAttr(tag, key string) bool {
	switch tag {
	case "a":
		return key == "href" || key == "title"
	case "img":
		return key == "src" || key == "alt" || key == "title"
	}
	return false
}

// PrettyPrint returns an indented human-readable representation of an HTML node tree.
// Text and attribute values are escaped, so the output parses back to the same tree.
func PrettyPrint(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node, int)
	f = func(n *html.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch n.Type {
		case html.DocumentNode:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				f(c, depth)
			}
		case html.ElementNode:
			sb.WriteString(fmt.Sprintf("%s<%s", indent, n.Data))
			for _, a := range n.Attr {
				sb.WriteString(fmt.Sprintf(" %s=\"%s\"", a.Key, html.EscapeString(a.Val)))
			}
			sb.WriteString(">\n")
			if isVoidElement(n.Data) {
				return
			}

			for c := n.FirstChild; c != nil; c = c.NextSibling {
				f(c, depth+1)
			}
			sb.WriteString(fmt.Sprintf("%s</%s>\n", indent, n.Data))
		case html.TextNode:
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(fmt.Sprintf("%s%s\n", indent, html.EscapeString(text)))
			}
		case html.DoctypeNode:
			sb.WriteString(fmt.Sprintf("<!DOCTYPE %s>\n", n.Data))
		}
	}
	f(n, 0)
	return sb.String()
}

func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}
