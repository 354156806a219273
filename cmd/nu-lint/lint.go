package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"nulint/internal/diag"
	"nulint/internal/diagfmt"
	"nulint/internal/driver"
	"nulint/internal/fix"
	"nulint/internal/lint"
	"nulint/internal/rules"
	"nulint/internal/source"
	"nulint/internal/ui"
)

const cacheAppName = "nu-lint"

func runLint(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	format, _ := flags.GetString("format")
	applyFixes, _ := flags.GetBool("fix")
	dryRun, _ := flags.GetBool("dry-run")
	parallel, _ := flags.GetBool("parallel")
	jobs, _ := flags.GetInt("jobs")
	noCache, _ := flags.GetBool("no-cache")

	switch format {
	case "text", "json", "github":
	default:
		return fmt.Errorf("unsupported format %q (must be text, json, or github)", format)
	}
	if len(args) == 0 {
		return fmt.Errorf("no paths given")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	registry := rules.All()
	state := lint.NewState(registry, cfg)
	for _, id := range cfg.UnknownRules(state.KnownRule) {
		fmt.Fprintf(os.Stderr, "warning: config names unknown rule %q\n", id)
	}

	files, walkErrs := driver.CollectFiles(args)
	for _, werr := range walkErrs {
		fmt.Fprintf(os.Stderr, "error: %v\n", werr)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "error: no files to lint")
		os.Exit(2)
	}

	if applyFixes || dryRun {
		code := runFixes(state, files, dryRun)
		os.Exit(code)
	}

	var cache *driver.DiskCache
	if !noCache {
		// Cache failures degrade to plain relints.
		cache, _ = driver.OpenDiskCache(cacheAppName)
	}

	opts := driver.Options{
		Rules:    registry,
		Config:   cfg,
		Parallel: parallel || jobs > 0,
		Jobs:     jobs,
		Cache:    cache,
	}

	var events chan driver.Event
	var progressDone chan struct{}
	if opts.Parallel && format == "text" && isTerminal(os.Stdout) {
		events = make(chan driver.Event, 64)
		opts.Progress = ui.ChannelSink(events)
		progressDone = runProgress(files, events)
	}

	runner := driver.NewRunner(opts)
	fileSet, results, runErr := runner.Run(context.Background(), files)
	if events != nil {
		close(events)
		<-progressDone
	}
	if runErr != nil {
		return runErr
	}

	violations := driver.Flatten(fileSet, results)
	for i := range results {
		if results[i].Err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", results[i].Path, results[i].Err)
		}
	}
	writeOutput(format, violations, fileSet, state)
	os.Exit(driver.ExitCode(results))
	return nil
}

func loadConfig(explicit string) (*lint.Config, error) {
	if explicit != "" {
		return lint.LoadConfig(explicit)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if path, ok := lint.DiscoverConfig(cwd); ok {
		return lint.LoadConfig(path)
	}
	return lint.DefaultConfig(), nil
}

func textOpts(state *lint.State) diagfmt.TextOpts {
	return diagfmt.TextOpts{
		Color: colorEnabled(),
		Describe: func(ruleID string) (string, string) {
			if r, ok := state.Lookup(ruleID); ok {
				meta := r.Meta()
				return meta.Long, meta.URL
			}
			return "", ""
		},
	}
}

func writeOutput(format string, violations []diag.Violation, fileSet *source.FileSet, state *lint.State) {
	switch format {
	case "json":
		if err := diagfmt.JSON(os.Stdout, violations, fileSet, diagfmt.JSONOpts{}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	case "github":
		diagfmt.Github(os.Stdout, violations, fileSet, textOpts(state))
	default:
		diagfmt.Text(os.Stdout, violations, fileSet, textOpts(state))
	}
}

// runFixes iterates each file to its fixpoint. With dryRun the diff goes to
// stdout and nothing is written. Returns the process exit code.
func runFixes(state *lint.State, files []string, dryRun bool) int {
	linted := 0
	remaining := 0
	fixedFiles := 0
	totalApplied := 0

	for _, path := range files {
		original, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			continue
		}
		linted++

		relint := func(src []byte) []diag.Violation {
			fs := source.NewFileSet()
			return state.LintString(fs, path, src)
		}
		res, err := fix.Fixpoint(original, relint)
		if err != nil {
			// Conflicting fixes leave the file untouched.
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			remaining += len(relint(original))
			continue
		}
		remaining += len(relint(res.Final))

		if res.Applied == 0 {
			continue
		}
		fixedFiles++
		totalApplied += res.Applied
		if dryRun {
			fmt.Fprint(os.Stdout, fix.Unified(path, original, res.Final))
			continue
		}
		if err := os.WriteFile(path, res.Final, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
		}
	}

	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	if totalApplied > 0 {
		fmt.Fprintf(os.Stdout, "%s %d problems in %d files\n", verb, totalApplied, fixedFiles)
	}

	if linted == 0 {
		return 2
	}
	if remaining > 0 {
		return 1
	}
	return 0
}

func runProgress(files []string, events chan driver.Event) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		model := ui.NewProgressModel("linting", files, events)
		// Progress renders on stderr so stdout stays parseable.
		prog := tea.NewProgram(model, tea.WithOutput(os.Stderr))
		if _, err := prog.Run(); err != nil {
			// Fall back to silent progress; drain so workers never block.
			for range events {
			}
		}
	}()
	return done
}

func colorEnabled() bool {
	mode, _ := rootCmd.PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
