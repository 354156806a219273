package fuzztests

import (
	"testing"

	"nulint/internal/lint"
	"nulint/internal/rules"
	"nulint/internal/source"
)

// FuzzLintString runs the whole pipeline: parse, every registered rule,
// ignore filtering and sorting. Rule panics are isolated by the engine, so
// any panic escaping here is an engine bug.
func FuzzLintString(f *testing.F) {
	addCorpusSeeds(f)
	state := lint.NewState(rules.All(), nil)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		violations := state.LintString(fs, "fuzz.nu", input)
		for _, v := range violations {
			if v.RuleID == "" {
				t.Fatalf("violation without rule id: %+v", v)
			}
			if v.RuleID == lint.InternalRuleErrorID {
				t.Fatalf("rule panicked on input %q: %s", truncateForLog(input, 200), v.Message)
			}
		}
	})
}
