package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nulint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nu-lint [flags] [paths...]",
	Short: "A linter for Nushell scripts",
	Long: `nu-lint parses Nushell scripts, runs a registry of lint rules over the
syntax tree, and reports violations with optional machine-applicable fixes.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
}

func init() {
	// Assigned here rather than in the literal: runLint refers back to
	// rootCmd, which would otherwise be an initialization cycle.
	rootCmd.RunE = runLint
}

func main() {
	configureVersion(rootCmd)

	rootCmd.AddCommand(listRulesCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(lspCmd)

	rootCmd.Flags().StringP("config", "c", "", "path to a .nu-lint.toml config file")
	rootCmd.Flags().StringP("format", "f", "text", "output format (text|json|github)")
	rootCmd.Flags().Bool("fix", false, "apply auto-fixes in place")
	rootCmd.Flags().Bool("dry-run", false, "show the fixes as a diff without writing files")
	rootCmd.Flags().Bool("parallel", false, "lint files in parallel")
	rootCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto, implies --parallel)")
	rootCmd.Flags().Bool("no-cache", false, "bypass the result cache")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

// configureVersion renders the colored version banner through the automatic
// --version flag.
func configureVersion(cmd *cobra.Command) {
	cmd.Version = version.Full()
	cmd.SetVersionTemplate("nu-lint {{.Version}}\n")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
