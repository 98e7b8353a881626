// internal/cli/patterns.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/scrapedeck/internal/pattern"
	"github.com/law-makers/scrapedeck/internal/ui"
	"github.com/law-makers/scrapedeck/pkg/models"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Check selectors and browse sample patterns",
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate <type> <selector>",
	Short: "Check whether a selector is acceptable for a pattern type",
	Example: `  scrapedeck patterns validate xpath //div/a
  scrapedeck patterns validate regex "\d{3}-\d{4}"`,
	Args: cobra.ExactArgs(2),
	RunE: runPatternsValidate,
}

var patternsSamplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List built-in sample patterns",
	Args:  cobra.NoArgs,
	RunE:  runPatternsSamples,
}

var patternsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List pattern types",
	Args:  cobra.NoArgs,
	RunE:  runPatternsTypes,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.AddCommand(patternsValidateCmd, patternsSamplesCmd, patternsTypesCmd)
}

func runPatternsValidate(cmd *cobra.Command, args []string) error {
	t := models.PatternType(args[0])
	if !t.Known() {
		return fmt.Errorf("unknown pattern type %q (want one of %v)", args[0], models.PatternTypes())
	}
	if !pattern.Validate(args[1], t) {
		return fmt.Errorf("invalid %s selector %q: %s", t, args[1], pattern.Describe(t))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s valid %s selector\n", ui.Success("✓"), t)
	return nil
}

func runPatternsSamples(cmd *cobra.Command, args []string) error {
	samples := pattern.Samples()
	specs := make([]models.PatternSpec, len(samples))
	descriptions := make([]string, len(samples))
	for i, s := range samples {
		specs[i] = s.PatternSpec
		descriptions[i] = s.Description
	}
	ui.RenderPatterns(cmd.OutOrStdout(), specs, descriptions, ui.Layout{})
	return nil
}

func runPatternsTypes(cmd *cobra.Command, args []string) error {
	var rows [][2]string
	for _, t := range models.PatternTypes() {
		rows = append(rows, [2]string{string(t), pattern.Describe(t)})
	}
	ui.RenderKeyValues(cmd.OutOrStdout(), "Type", "Description", rows, ui.Layout{})
	return nil
}
