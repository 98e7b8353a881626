package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// Layout controls how tables are drawn
type Layout struct {
	// Compact drops borders and row separators
	Compact bool
	// MaxItems caps the rows printed per pattern group; 0 prints all
	MaxItems int
}

// NewTable returns a table writer mirroring to w in the given layout
func NewTable(w io.Writer, l Layout) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if l.Compact {
		t.SetStyle(table.StyleLight)
		t.Style().Options.DrawBorder = false
		t.Style().Options.SeparateColumns = false
	} else {
		t.SetStyle(table.StyleRounded)
	}
	// Footers carry sentences such as "3 more"; keep their case
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// StatusLabel renders a result status with its color
func StatusLabel(s models.Status) string {
	if s == models.StatusSuccess {
		return Success(string(s))
	}
	return Error(string(s))
}

// RenderHistory lists history entries, newest first, with their index
func RenderHistory(w io.Writer, results []models.ScrapeResult, l Layout) {
	t := NewTable(w, l)
	t.AppendHeader(table.Row{"#", "URL", "Status", "Patterns", "Items", "Time"})
	for i, r := range results {
		t.AppendRow(table.Row{
			i,
			r.URL,
			StatusLabel(r.Status),
			len(r.Data),
			r.ItemCount(),
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
}

// RenderResult prints a result header followed by one table per pattern group
func RenderResult(w io.Writer, r models.ScrapeResult, l Layout) {
	fmt.Fprintf(w, "%s %s\n", Bold("Scraped Results"), Dim(r.Timestamp.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintf(w, "%s %s\n", Accent(r.URL), StatusLabel(r.Status))

	if !r.OK() {
		fmt.Fprintf(w, "\n%s\n", Error(r.Message))
		return
	}

	for _, g := range r.Data {
		fmt.Fprintf(w, "\n%s %s %s\n", Bold(g.Pattern), Dim("("+string(g.Type)+")"), Dim(g.Selector))

		var keys []string
		seen := map[string]bool{}
		for _, it := range g.Items {
			for _, f := range it.Fields() {
				if !seen[f.Key] {
					seen[f.Key] = true
					keys = append(keys, f.Key)
				}
			}
		}

		t := NewTable(w, l)
		header := make(table.Row, len(keys))
		for i, k := range keys {
			header[i] = k
		}
		t.AppendHeader(header)

		for n, it := range g.Items {
			if l.MaxItems > 0 && n >= l.MaxItems {
				break
			}
			values := map[string]any{}
			for _, f := range it.Fields() {
				values[f.Key] = f.Value
			}
			row := make(table.Row, len(keys))
			for i, k := range keys {
				row[i] = cell(values[k])
			}
			t.AppendRow(row)
		}
		if l.MaxItems > 0 && len(g.Items) > l.MaxItems {
			t.AppendFooter(table.Row{fmt.Sprintf("%d more", len(g.Items)-l.MaxItems)})
		}
		t.Render()
	}
}

// RenderTemplates lists templates
func RenderTemplates(w io.Writer, list []models.Template, l Layout) {
	t := NewTable(w, l)
	t.AppendHeader(table.Row{"ID", "Name", "URL", "Patterns", "Created", "Last used"})
	for _, tpl := range list {
		lastUsed := "never"
		if tpl.LastUsed != nil {
			lastUsed = tpl.LastUsed.Local().Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{
			tpl.ID,
			tpl.Name,
			tpl.URL,
			len(tpl.Patterns),
			tpl.CreatedAt.Local().Format("2006-01-02 15:04"),
			lastUsed,
		})
	}
	t.Render()
}

// RenderPatterns lists pattern specs with an optional description column
func RenderPatterns(w io.Writer, patterns []models.PatternSpec, descriptions []string, l Layout) {
	t := NewTable(w, l)
	header := table.Row{"Name", "Type", "Selector"}
	if descriptions != nil {
		header = append(header, "Description")
	}
	t.AppendHeader(header)
	for i, p := range patterns {
		row := table.Row{p.Name, p.Type, p.Selector}
		if descriptions != nil {
			row = append(row, descriptions[i])
		}
		t.AppendRow(row)
	}
	t.Render()
}

// RenderKeyValues prints two-column rows under the given headers
func RenderKeyValues(w io.Writer, keyHeader, valueHeader string, rows [][2]string, l Layout) {
	t := NewTable(w, l)
	t.AppendHeader(table.Row{keyHeader, valueHeader})
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case models.ValueObject:
		return fmt.Sprintf("%s (%s)", val.Key, val.Nested.Data)
	default:
		return fmt.Sprint(val)
	}
}
