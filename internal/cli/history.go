// internal/cli/history.go
package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/scrapedeck/internal/app"
	"github.com/law-makers/scrapedeck/internal/ui"
	"github.com/law-makers/scrapedeck/internal/utils/output"
	"github.com/law-makers/scrapedeck/pkg/models"
)

var (
	historyShowFormat   string
	historyExportFormat string
	historyRerunFormat  string
	historyOutput       string
	historyItems        int
	historyRetries      int
	historyName         string
	historyDescription  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, export and rerun past scrapes",
	Long: `Lists the most recent successful scrapes, newest first. Entries are addressed
by their index in "history list" (0 is the newest).`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored results",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show a stored result",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored results",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <index>",
	Short: "Export a stored result to a file",
	Example: `  # Export the newest result as CSV using the default file name
  scrapedeck history export 0 --format csv

  # Export to a chosen path, format from the extension
  scrapedeck history export 2 -o results.md`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryExport,
}

var historyRerunCmd = &cobra.Command{
	Use:   "rerun <index>",
	Short: "Submit a stored result's URL and patterns again",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRerun,
}

var historySaveCmd = &cobra.Command{
	Use:   "save <index>",
	Short: "Save a stored result's URL and patterns as a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySave,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd, historyExportCmd, historyRerunCmd, historySaveCmd)

	historyShowCmd.Flags().StringVarP(&historyShowFormat, "format", "f", "table", "Print format: table, json, csv, yaml, html, md")
	historyShowCmd.Flags().IntVar(&historyItems, "items", 10, "Rows shown per pattern in table output (0 = all)")

	historyExportCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Destination file or directory (default: generated name in the current directory)")
	historyExportCmd.Flags().StringVarP(&historyExportFormat, "format", "f", "json", "Export format when the destination has no extension")

	historyRerunCmd.Flags().StringVarP(&historyRerunFormat, "format", "f", "table", "Print format: table, json, csv, yaml, html, md")
	historyRerunCmd.Flags().IntVar(&historyItems, "items", 10, "Rows shown per pattern in table output (0 = all)")
	historyRerunCmd.Flags().IntVar(&historyRetries, "retries", 0, "Resubmit up to this many times after a network failure")

	historySaveCmd.Flags().StringVar(&historyName, "name", "", "Template name (required)")
	historySaveCmd.Flags().StringVar(&historyDescription, "description", "", "Template description")
	_ = historySaveCmd.MarkFlagRequired("name")
}

// historyEntry resolves an index argument against the stored history
func historyEntry(a *app.Application, arg string) (models.ScrapeResult, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return models.ScrapeResult{}, fmt.Errorf("invalid history index %q", arg)
	}
	r, ok := a.History.Get(index)
	if !ok {
		return models.ScrapeResult{}, fmt.Errorf("no history entry at index %d (have %d)", index, len(a.History.GetAll()))
	}
	return r, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	all := a.History.GetAll()
	out := cmd.OutOrStdout()

	if len(all) == 0 {
		fmt.Fprintln(out, "\nNo scrape history yet.")
		fmt.Fprintln(out, "\nRun a scrape with:")
		fmt.Fprintln(out, "  scrapedeck scrape <url> -p name:css:selector")
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintf(out, "\n📋 Scrape History (%d of max %d)\n\n", len(all), a.History.Limit())
	ui.RenderHistory(out, all, ui.Layout{Compact: a.Settings.Load().Appearance.CompactMode})
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	r, err := historyEntry(a, args[0])
	if err != nil {
		return err
	}

	if historyShowFormat == "" || historyShowFormat == "table" {
		ui.RenderResult(cmd.OutOrStdout(), r, ui.Layout{Compact: a.Settings.Load().Appearance.CompactMode, MaxItems: historyItems})
		return nil
	}
	f, err := output.ParseFormat(historyShowFormat)
	if err != nil {
		return err
	}
	return output.Export(cmd.OutOrStdout(), r, f)
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if err := a.History.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s History cleared\n", ui.Success("✓"))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	r, err := historyEntry(a, args[0])
	if err != nil {
		return err
	}

	dest := historyOutput
	if dest == "" {
		dest = "."
	}
	path, err := exportPath(r, dest, historyExportFormat)
	if err != nil {
		return err
	}
	if err := output.SaveFile(r, path); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %s (%s) to %s\n", ui.Success("✓"), r.URL, r.Timestamp.Local().Format(time.DateTime), path)
	return nil
}

func runHistoryRerun(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	r, err := historyEntry(a, args[0])
	if err != nil {
		return err
	}

	result, err := submit(cmd, a, models.RequestFromResult(r), historyRetries)
	if err != nil {
		return err
	}
	return presentResult(cmd, a, result, historyRerunFormat, "", historyItems)
}

func runHistorySave(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	r, err := historyEntry(a, args[0])
	if err != nil {
		return err
	}

	tpl, err := a.Templates.FromResult(historyName, historyDescription, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Saved template %s (%s) with %d patterns\n", ui.Success("✓"), ui.Bold(tpl.Name), tpl.ID, len(tpl.Patterns))
	return nil
}
