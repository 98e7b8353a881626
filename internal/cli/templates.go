// internal/cli/templates.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/scrapedeck/internal/pattern"
	"github.com/law-makers/scrapedeck/internal/templates"
	"github.com/law-makers/scrapedeck/internal/ui"
	"github.com/law-makers/scrapedeck/pkg/models"
)

var (
	templateSearch      string
	templateSort        string
	templateDescription string
	templateURL         string
	templatePatterns    []string
	templateOutput      string
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template", "tpl"},
	Short:   "Manage reusable scrape templates",
	Long: `Templates are named presets of a URL, patterns and options. Run one with
"scrapedeck scrape --template <name>".`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a template",
	Example: `  scrapedeck templates create "Blog posts" --url https://blog.example.com -p titles:css:h2 -p links:css:"article a"`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesCreate,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import templates from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesImport,
}

var templatesExportCmd = &cobra.Command{
	Use:   "export [id|name...]",
	Short: "Export templates as YAML (all when none are named)",
	RunE:  runTemplatesExport,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd, templatesCreateCmd, templatesDeleteCmd, templatesImportCmd, templatesExportCmd)

	templatesListCmd.Flags().StringVarP(&templateSearch, "search", "s", "", "Filter by name or description")
	templatesListCmd.Flags().StringVar(&templateSort, "sort", templates.SortLastUsed, "Sort order: newest, oldest, name, last-used")

	templatesCreateCmd.Flags().StringVarP(&templateDescription, "description", "d", "", "Template description")
	templatesCreateCmd.Flags().StringVar(&templateURL, "url", "", "Target URL (default "+templates.DefaultURL+")")
	templatesCreateCmd.Flags().StringArrayVarP(&templatePatterns, "pattern", "p", nil, "Pattern as name:type:selector (repeatable)")

	templatesExportCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Write to a file instead of stdout")
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	switch templateSort {
	case templates.SortNewest, templates.SortOldest, templates.SortName, templates.SortLastUsed:
	default:
		return fmt.Errorf("invalid sort order %q", templateSort)
	}

	list := templates.Filter(a.Templates.List(), templateSearch, templateSort)
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		if templateSearch != "" {
			fmt.Fprintf(out, "\nNo templates match %q.\n\n", templateSearch)
			return nil
		}
		fmt.Fprintln(out, "\nNo saved templates found.")
		fmt.Fprintln(out, "\nCreate one with:")
		fmt.Fprintln(out, "  scrapedeck templates create <name> --url <url> -p name:css:selector")
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintf(out, "\n📋 Saved Templates (%d)\n\n", len(list))
	ui.RenderTemplates(out, list, ui.Layout{Compact: a.Settings.Load().Appearance.CompactMode})
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	t, err := a.Templates.Find(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n🔍 Template: %s\n", ui.Bold(t.Name))
	fmt.Fprintf(out, "   ID: %s\n", t.ID)
	if t.Description != "" {
		fmt.Fprintf(out, "   Description: %s\n", t.Description)
	}
	fmt.Fprintf(out, "   URL: %s\n", t.URL)
	fmt.Fprintf(out, "   Created: %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	if t.LastUsed != nil {
		fmt.Fprintf(out, "   Last used: %s\n", t.LastUsed.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(out, "   Options: %s\n\n", describeOptions(t.Options))

	if len(t.Patterns) == 0 {
		fmt.Fprintln(out, "   No patterns yet.")
		return nil
	}
	ui.RenderPatterns(out, t.Patterns, nil, ui.Layout{Compact: a.Settings.Load().Appearance.CompactMode})
	return nil
}

func runTemplatesCreate(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)

	var patterns []models.PatternSpec
	for _, raw := range templatePatterns {
		p, err := parsePattern(raw)
		if err != nil {
			return err
		}
		if !pattern.Validate(p.Selector, p.Type) {
			return fmt.Errorf("invalid %s selector %q for pattern %s", p.Type, p.Selector, p.Name)
		}
		patterns = append(patterns, p)
	}

	t, err := a.Templates.Create(args[0], templateDescription)
	if err != nil {
		return err
	}
	if templateURL != "" || len(patterns) > 0 {
		if templateURL != "" {
			t.URL = templateURL
		}
		t.Patterns = patterns
		if t, err = a.Templates.Save(t); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created template %s (%s)\n", ui.Success("✓"), ui.Bold(t.Name), t.ID)
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	t, err := a.Templates.Find(args[0])
	if err != nil {
		return err
	}
	if err := a.Templates.Delete(t.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted template %s\n", ui.Success("✓"), t.Name)
	return nil
}

func runTemplatesImport(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	imported, err := a.Templates.Import(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d templates from %s\n", ui.Success("✓"), len(imported), args[0])
	return nil
}

func runTemplatesExport(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)

	list := a.Templates.List()
	if len(args) > 0 {
		list = list[:0:0]
		for _, ref := range args {
			t, err := a.Templates.Find(ref)
			if err != nil {
				return err
			}
			list = append(list, t)
		}
	}

	if templateOutput == "" {
		return templates.Export(cmd.OutOrStdout(), list)
	}

	f, err := os.Create(templateOutput)
	if err != nil {
		return err
	}
	if err := templates.Export(f, list); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Exported %d templates to %s\n", ui.Success("✓"), len(list), templateOutput)
	return nil
}

func describeOptions(o models.ScrapeOptions) string {
	return fmt.Sprintf("html=%s text=%s depth=%d delay=%s follow=%s robots=%s",
		onOff(o.IncludeHTML), onOff(o.IncludeText), o.Depth(), o.Delay(), onOff(o.FollowLinks), onOff(o.RespectRobotsTxt))
}

func onOff(b *bool) string {
	if b == nil {
		return "default"
	}
	if *b {
		return "on"
	}
	return "off"
}
