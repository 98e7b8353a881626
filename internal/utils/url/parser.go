package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ValidateURL checks that urlStr is an absolute http or https URL with a host
func ValidateURL(urlStr string) error {
	if strings.TrimSpace(urlStr) == "" {
		return fmt.Errorf("invalid URL: empty")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %q", parsed.Scheme)
	}

	if parsed.Host == "" || parsed.Hostname() == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// Host returns the host of urlStr, or urlStr itself when it does not parse
func Host(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return urlStr
	}
	return parsed.Host
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Slug replaces every non-alphanumeric character of urlStr with '-'
func Slug(urlStr string) string {
	return nonAlnum.ReplaceAllString(urlStr, "-")
}

// ExportName builds the base file name used for exported results:
// scrape-<slug>-<YYYY-MM-DD>
func ExportName(urlStr string, day time.Time) string {
	return fmt.Sprintf("scrape-%s-%s", Slug(urlStr), day.Format("2006-01-02"))
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}
