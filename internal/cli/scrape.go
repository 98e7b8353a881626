// internal/cli/scrape.go
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/scrapedeck/internal/app"
	"github.com/law-makers/scrapedeck/internal/engine"
	"github.com/law-makers/scrapedeck/internal/pattern"
	"github.com/law-makers/scrapedeck/internal/ui"
	"github.com/law-makers/scrapedeck/internal/utils/output"
	"github.com/law-makers/scrapedeck/pkg/models"
)

var (
	scrapePatterns     []string
	scrapeSamples      []string
	scrapeTemplate     string
	scrapeIncludeHTML  bool
	scrapeIncludeText  bool
	scrapeMaxDepth     int
	scrapeRequestDelay int
	scrapeFollowLinks  bool
	scrapeRespectRobot bool
	scrapeOutput       string
	scrapeFormat       string
	scrapeSaveTemplate string
	scrapeShowItems    int
	scrapeRetries      int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Submit a scrape request and show the results",
	Long: `Submits a URL and a set of extraction patterns and prints the result.

Patterns are given as name:type:selector where type is one of css, xpath,
regex, json or auto. The selector may itself contain colons. A saved template
can provide the URL, patterns and options; flags given on the command line
override or extend it.

Successful results are added to the history unless auto-save is turned off
in the settings.`,
	Example: `  # Extract article titles
  scrapedeck scrape https://example.com -p titles:css:h2

  # Several patterns, including HTML, saved as CSV
  scrapedeck scrape https://example.com -p links:xpath://a/@href -p "emails:regex:[\w.]+@[\w.]+" --include-html -o out.csv

  # Use a built-in sample pattern
  scrapedeck scrape https://shop.example.com --sample "Product Prices"

  # Run a saved template and print JSON
  scrapedeck scrape --template "Blog posts" --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	f := scrapeCmd.Flags()
	f.StringArrayVarP(&scrapePatterns, "pattern", "p", nil, "Pattern as name:type:selector (repeatable)")
	f.StringArrayVar(&scrapeSamples, "sample", nil, "Add a built-in sample pattern by name (repeatable)")
	f.StringVarP(&scrapeTemplate, "template", "t", "", "Start from a saved template (id or name)")
	f.BoolVar(&scrapeIncludeHTML, "include-html", false, "Include element HTML in css/xpath items")
	f.BoolVar(&scrapeIncludeText, "include-text", true, "Include element text")
	f.IntVar(&scrapeMaxDepth, "max-depth", 1, "Maximum link depth (1-5)")
	f.IntVar(&scrapeRequestDelay, "request-delay", 0, "Delay between requests in milliseconds")
	f.BoolVar(&scrapeFollowLinks, "follow-links", false, "Follow links found on the page")
	f.BoolVar(&scrapeRespectRobot, "respect-robots", true, "Honor robots.txt")
	f.StringVarP(&scrapeOutput, "output", "o", "", "Save the result to a file or directory (.json, .csv, .yaml, .html, .md)")
	f.StringVarP(&scrapeFormat, "format", "f", "table", "Print format: table, json, csv, yaml, html, md")
	f.StringVar(&scrapeSaveTemplate, "save-template", "", "Save the request as a template with this name")
	f.IntVar(&scrapeShowItems, "items", 10, "Rows shown per pattern in table output (0 = all)")
	f.IntVar(&scrapeRetries, "retries", 0, "Resubmit up to this many times after a network failure")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	req, tpl, err := buildRequest(cmd, a, args)
	if err != nil {
		return err
	}

	result, err := submit(cmd, a, req, scrapeRetries)
	if err != nil {
		return err
	}

	if tpl != nil {
		if _, err := a.Templates.MarkUsed(tpl.ID); err != nil {
			log.Warn().Err(err).Str("template", tpl.ID).Msg("Failed to mark template as used")
		}
	}

	if scrapeSaveTemplate != "" {
		saved, err := a.Templates.Save(models.Template{
			Name:     scrapeSaveTemplate,
			URL:      req.URL,
			Patterns: req.Patterns,
			Options:  req.Options,
		})
		if err != nil {
			return fmt.Errorf("save template: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Saved template %s (%s)\n", ui.Success("✓"), ui.Bold(saved.Name), saved.ID)
	}

	return presentResult(cmd, a, result, scrapeFormat, scrapeOutput, scrapeShowItems)
}

// buildRequest assembles the request from an optional template, the url argument and flags
func buildRequest(cmd *cobra.Command, a *app.Application, args []string) (models.ScrapeRequest, *models.Template, error) {
	var req models.ScrapeRequest
	var tpl *models.Template

	if scrapeTemplate != "" {
		t, err := a.Templates.Find(scrapeTemplate)
		if err != nil {
			return req, nil, err
		}
		req = t.Request()
		tpl = &t
	}

	if len(args) == 1 {
		req.URL = args[0]
	}

	for _, raw := range scrapePatterns {
		p, err := parsePattern(raw)
		if err != nil {
			return req, nil, err
		}
		req.Patterns = append(req.Patterns, p)
	}
	for _, name := range scrapeSamples {
		s, ok := pattern.FindSample(name)
		if !ok {
			return req, nil, fmt.Errorf("unknown sample pattern %q (see: scrapedeck patterns samples)", name)
		}
		req.Patterns = append(req.Patterns, s.PatternSpec)
	}

	flags := cmd.Flags()
	if flags.Changed("include-html") {
		req.Options.IncludeHTML = models.Bool(scrapeIncludeHTML)
	}
	if flags.Changed("include-text") {
		req.Options.IncludeText = models.Bool(scrapeIncludeText)
	}
	if flags.Changed("max-depth") {
		req.Options.MaxDepth = models.Int(scrapeMaxDepth)
	}
	if flags.Changed("request-delay") {
		req.Options.RequestDelay = models.Int(scrapeRequestDelay)
	}
	if flags.Changed("follow-links") {
		req.Options.FollowLinks = models.Bool(scrapeFollowLinks)
	}
	if flags.Changed("respect-robots") {
		req.Options.RespectRobotsTxt = models.Bool(scrapeRespectRobot)
	}

	return req, tpl, nil
}

// parsePattern parses name:type:selector. The selector keeps any further colons.
func parsePattern(raw string) (models.PatternSpec, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return models.PatternSpec{}, fmt.Errorf("invalid pattern %q: want name:type:selector", raw)
	}
	p := models.PatternSpec{
		Name:     strings.TrimSpace(parts[0]),
		Type:     models.PatternType(strings.ToLower(strings.TrimSpace(parts[1]))),
		Selector: parts[2],
	}
	if p.Name == "" {
		return p, fmt.Errorf("invalid pattern %q: name is empty", raw)
	}
	if !p.Type.Known() {
		return p, fmt.Errorf("invalid pattern %q: unknown type %q (want one of %v)", raw, p.Type, models.PatternTypes())
	}
	return p, nil
}

// submit runs req through the application with a spinner while it is in flight,
// retrying network failures up to retries times
func submit(cmd *cobra.Command, a *app.Application, req models.ScrapeRequest, retries int) (models.ScrapeResult, error) {
	if retries < 0 {
		return models.ScrapeResult{}, fmt.Errorf("--retries must not be negative")
	}

	prefs := a.Settings.Load()

	var spinner *ui.Spinner
	if !a.Config.Quiet && prefs.Appearance.AnimationsEnabled && ui.IsTerminal(os.Stderr) {
		spinner = ui.StartSpinner(cmd.ErrOrStderr(), "Scraping "+req.URL)
	}
	result, err := a.SubmitWithRetry(cmd.Context(), req, retries+1)
	spinner.Stop()

	if err != nil {
		if engine.CodeOf(err) == engine.ErrCodeValidation {
			var ee *engine.EngineError
			if errors.As(err, &ee) {
				return result, errors.New(ee.Message)
			}
		}
		return result, err
	}
	return result, nil
}

// presentResult prints or saves a result and turns a failed scrape into a command error
func presentResult(cmd *cobra.Command, a *app.Application, result models.ScrapeResult, format, dest string, rows int) error {
	prefs := a.Settings.Load()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if prefs.Notifications.SoundEnabled {
		fmt.Fprint(errOut, "\a")
	}

	if !result.OK() {
		if prefs.Notifications.ErrorNotifications && !a.Config.Quiet {
			fmt.Fprintf(errOut, "%s %s\n", ui.Error("✗ Scrape failed:"), result.Message)
			if result.Message == engine.NetworkFailureMessage {
				fmt.Fprintf(errOut, "%s\n", ui.Dim("The failure may be transient, run the same command again or pass --retries."))
			}
		}
		return fmt.Errorf("scrape of %s failed: %s", result.URL, result.Message)
	}

	if dest != "" {
		path, err := exportPath(result, dest, format)
		if err != nil {
			return err
		}
		if err := output.SaveFile(result, path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		fmt.Fprintf(errOut, "%s Saved to %s\n", ui.Success("✓"), path)
	}

	if format == "" || format == "table" {
		ui.RenderResult(out, result, ui.Layout{Compact: prefs.Appearance.CompactMode, MaxItems: rows})
	} else {
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		if err := output.Export(out, result, f); err != nil {
			return err
		}
	}

	if prefs.Notifications.ScrapeComplete && !a.Config.Quiet {
		fmt.Fprintf(errOut, "%s Scraped %d items across %d patterns\n", ui.Success("✓"), result.ItemCount(), len(result.Data))
	}
	return nil
}

// exportPath resolves dest to a file path. A directory gets the default export name,
// using format when it names an export format and JSON otherwise.
func exportPath(result models.ScrapeResult, dest, format string) (string, error) {
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		return dest, nil
	}
	f, perr := output.ParseFormat(format)
	if perr != nil {
		f = output.JSON
	}
	return filepath.Join(dest, output.DefaultFileName(result, f, time.Now())), nil
}
