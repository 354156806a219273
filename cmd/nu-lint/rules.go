package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nulint/internal/rules"
)

var listRulesCmd = &cobra.Command{
	Use:   "list-rules",
	Short: "List every rule with its category and default severity",
	Args:  cobra.NoArgs,
	RunE:  runListRules,
}

func runListRules(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	for _, rule := range rules.All() {
		meta := rule.Meta()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", meta.ID, meta.Category, meta.Level, meta.Short)
	}
	return w.Flush()
}

var explainCmd = &cobra.Command{
	Use:   "explain <rule_id>",
	Short: "Show a rule's full description and documentation link",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	id := args[0]
	for _, rule := range rules.All() {
		meta := rule.Meta()
		if meta.ID != id {
			continue
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s, default %s)\n\n", meta.ID, meta.Category, meta.Level)
		long := meta.Long
		if long == "" {
			long = meta.Short
		}
		fmt.Fprintln(out, long)
		if meta.URL != "" {
			fmt.Fprintf(out, "\ndocs: %s\n", meta.URL)
		}
		return nil
	}
	fmt.Fprintf(os.Stderr, "error: unknown rule %q\n", id)
	os.Exit(2)
	return nil
}
