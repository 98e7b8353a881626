// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/scrapedeck/internal/app"
	"github.com/law-makers/scrapedeck/internal/config"
	"github.com/law-makers/scrapedeck/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scrapedeck",
	Short: "Define extraction patterns, run scrapes and manage their history",
	Long: `Scrapedeck is a terminal front-end for a scraping service.

Point it at a URL, describe what to extract with CSS, XPath, regex or JSON
patterns, and review, export or rerun the results. Scrapes are simulated: the
service returns placeholder items after a short delay and occasionally fails
the way a real network would.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// activeApp is the application opened for the running command, closed by run
var activeApp *app.Application

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := run(ctx, nil); err != nil {
		os.Exit(1)
	}
}

// run executes rootCmd with args (nil means os.Args) and closes the application afterwards,
// whether or not the command succeeded.
func run(ctx context.Context, args []string) error {
	if args != nil {
		rootCmd.SetArgs(args)
	}
	err := rootCmd.ExecuteContext(ctx)

	if activeApp != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := activeApp.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
		activeApp = nil
	}
	resetContexts(rootCmd)
	return err
}

// resetContexts drops the per-run contexts cobra leaves on executed commands
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // cleared so the next run inherits the root context
	for _, c := range cmd.Commands() {
		resetContexts(c)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		activeApp = a

		if cfg.JSONLog {
			ui.Enabled = false
		}
		return nil
	}

	config.RegisterFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help for scrapedeck")
	rootCmd.Flags().Bool("version", false, "Version for scrapedeck")

	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		printHelp(cmd.OutOrStdout(), cmd, true)
	})
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		printHelp(cmd.ErrOrStderr(), cmd, false)
		return nil
	})
}

// printHelp renders colorized help. The short form omits descriptions, examples and global flags.
func printHelp(w io.Writer, cmd *cobra.Command, full bool) {
	heading := func(title string) {
		fmt.Fprintf(w, "\n%s\n", ui.Bold(title))
	}

	if full {
		fmt.Fprintf(w, "\n%s\n", ui.Bold(ui.Accent(strings.ToUpper(cmd.Name()))))
		if cmd.Short != "" {
			fmt.Fprintln(w, cmd.Short)
		}
		if cmd.Long != "" && cmd.Long != cmd.Short {
			fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, 80))
		}
	}

	heading("Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Accent(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s %s\n", ui.Accent(cmd.CommandPath()), ui.Warn("<command>"), ui.Dim("[flags]"))
	}

	if full && cmd.HasExample() {
		heading("Examples")
		lastWasCommand := false
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
				continue
			case strings.HasPrefix(trimmed, "#"):
				if lastWasCommand {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s\n", ui.Dim(trimmed))
				lastWasCommand = false
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+trimmed))
				lastWasCommand = true
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		heading("Commands")
		var available []*cobra.Command
		maxLen := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				available = append(available, c)
				maxLen = max(maxLen, len(c.Name()))
			}
		}
		for _, c := range available {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(w, "  %s%s%s\n", ui.Accent(c.Name()), padding, ui.Dim(c.Short))
		}
	}

	if cmd.HasAvailableLocalFlags() {
		heading("Flags")
		printFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if full && cmd.HasAvailableInheritedFlags() {
		heading("Global Flags")
		printFlags(w, cmd.InheritedFlags().FlagUsages())
	}

	fmt.Fprintf(w, "\n%s\n\n", ui.Dim(fmt.Sprintf("Use \"%s [command] --help\" for more information.", cmd.CommandPath())))
}

// printFlags prints flag usages with color formatting, aligning descriptions
func printFlags(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	maxFlagLen := 28
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			flagPart := strings.TrimSpace(strings.SplitN(trimmed, "  ", 2)[0])
			maxFlagLen = max(maxFlagLen, len(flagPart))
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			// Continuation of the previous description
			fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", maxFlagLen+4), ui.Dim(trimmed))
			continue
		}
		parts := strings.SplitN(trimmed, "  ", 2)
		if len(parts) != 2 {
			fmt.Fprintf(w, "  %s\n", ui.Success(trimmed))
			continue
		}
		flagPart := strings.TrimSpace(parts[0])
		padding := strings.Repeat(" ", maxFlagLen-len(flagPart)+2)
		fmt.Fprintf(w, "  %s%s%s\n", ui.Success(flagPart), padding, ui.Dim(strings.TrimSpace(parts[1])))
	}
}

// wrapText wraps text at the specified width while preserving paragraphs and list items
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
				lines = append(lines, trimmed)
				continue
			}

			var current strings.Builder
			for _, word := range strings.Fields(trimmed) {
				switch {
				case current.Len() == 0:
					current.WriteString(word)
				case current.Len()+1+len(word) <= width:
					current.WriteString(" " + word)
				default:
					lines = append(lines, current.String())
					current.Reset()
					current.WriteString(word)
				}
			}
			if current.Len() > 0 {
				lines = append(lines, current.String())
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
