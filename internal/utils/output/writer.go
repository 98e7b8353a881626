package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	urlutil "github.com/law-makers/scrapedeck/internal/utils/url"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// Format selects an export renderer
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	YAML     Format = "yaml"
	HTML     Format = "html"
	Markdown Format = "md"
)

// Formats lists every supported export format
func Formats() []Format {
	return []Format{JSON, CSV, YAML, HTML, Markdown}
}

// Ext returns the file extension used for f, including the dot
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat accepts a format name or one of its common aliases
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "yaml", "yml":
		return YAML, nil
	case "html", "htm":
		return HTML, nil
	case "md", "markdown":
		return Markdown, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FormatFromPath picks the format matching the extension of path
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format of %q: no file extension", path)
	}
	return ParseFormat(ext)
}

// Render renders the result in format f
func Render(result models.ScrapeResult, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return FormatJSON(result)
	case CSV:
		return FormatCSV(result)
	case YAML:
		return FormatYAML(result)
	case HTML:
		return FormatHTML(result)
	case Markdown:
		return FormatMarkdown(result)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// Export renders the result in format f to w
func Export(w io.Writer, result models.ScrapeResult, f Format) error {
	content, err := Render(result, f)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

// SaveFile writes the result to path in the format implied by its extension
func SaveFile(result models.ScrapeResult, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	content, err := Render(result, f)
	if err != nil {
		return fmt.Errorf("failed to render %s export: %w", f, err)
	}
	return os.WriteFile(path, content, 0644)
}

// ExportName returns the default base name for an export of result made on day
func ExportName(result models.ScrapeResult, day time.Time) string {
	return urlutil.ExportName(result.URL, day)
}

// DefaultFileName returns ExportName plus the extension of f
func DefaultFileName(result models.ScrapeResult, f Format, day time.Time) string {
	return ExportName(result, day) + f.Ext()
}
