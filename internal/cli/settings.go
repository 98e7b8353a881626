// internal/cli/settings.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/scrapedeck/internal/settings"
	"github.com/law-makers/scrapedeck/internal/ui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change application settings",
	Long: `Settings are stored alongside history and templates. Keys are dotted paths
such as scraping.historyLimit or appearance.compactMode.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Example: `  scrapedeck settings set scraping.historyLimit 25
  scrapedeck settings set appearance.theme dark
  scrapedeck settings set scraping.autoSaveHistory false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	current := a.Settings.Load()
	defaults := settings.Defaults()

	var rows [][2]string
	for _, key := range settings.Keys() {
		v, err := current.Value(key)
		if err != nil {
			return err
		}
		cell := fmt.Sprint(v)
		if d, _ := defaults.Value(key); fmt.Sprint(d) != cell {
			cell = ui.Warn(cell) + ui.Dim(fmt.Sprintf(" (default %v)", d))
		}
		rows = append(rows, [2]string{key, cell})
	}

	ui.RenderKeyValues(cmd.OutOrStdout(), "Setting", "Value", rows, ui.Layout{Compact: current.Appearance.CompactMode})
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	updated, err := a.Settings.Set(args[0], args[1])
	if err != nil {
		return err
	}
	v, _ := updated.Value(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %v\n", ui.Success("✓"), args[0], v)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if err := a.Settings.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Settings restored to defaults\n", ui.Success("✓"))
	return nil
}
