package lint_test

import (
	"reflect"
	"strings"
	"testing"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/rules"
	"nulint/internal/source"
)

func lintWith(t *testing.T, cfg *lint.Config, src string) []diag.Violation {
	t.Helper()
	state := lint.NewState(rules.All(), cfg)
	fs := source.NewFileSet()
	return state.LintString(fs, "engine.nu", []byte(src))
}

func ids(vs []diag.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.RuleID
	}
	return out
}

func TestEngineEmptySource(t *testing.T) {
	if vs := lintWith(t, nil, ""); len(vs) != 0 {
		t.Errorf("empty source produced %v", ids(vs))
	}
}

func TestEngineIgnoreSuppression(t *testing.T) {
	src := "# lint-ignore: snake_case_variables\nlet myVariable = 5\n"
	vs := lintWith(t, nil, src)
	if len(vs) != 0 {
		t.Errorf("suppressed violation leaked: %v", ids(vs))
	}
}

func TestEngineUnknownIgnoreWarning(t *testing.T) {
	src := "# lint-ignore: bogus_rule\nlet x = 5\n"
	vs := lintWith(t, nil, src)
	if len(vs) != 1 || vs[0].RuleID != lint.UnknownIgnoreRuleID {
		t.Fatalf("got %v, want one unknown_ignore_rule warning", ids(vs))
	}
}

func TestEngineParserViolationPassThrough(t *testing.T) {
	vs := lintWith(t, nil, "let x = (\n")
	found := false
	for _, v := range vs {
		if v.RuleID == "nu_parse_error" && v.Level == diag.LevelError {
			found = true
		}
	}
	if !found {
		t.Errorf("parser diagnostics missing from %v", ids(vs))
	}
}

func TestEngineConfigTurnsRuleOff(t *testing.T) {
	cfg := &lint.Config{Rules: map[string]string{"snake_case_variables": "off"}}
	vs := lintWith(t, cfg, "let myVariable = 5\nprint $myVariable\n")
	for _, v := range vs {
		if v.RuleID == "snake_case_variables" {
			t.Error("rule configured off still ran")
		}
	}
}

func TestEngineConfigOverridesLevel(t *testing.T) {
	cfg := &lint.Config{Rules: map[string]string{"no_empty_block": "error"}}
	vs := lintWith(t, cfg, "def noop [] {}\n")
	found := false
	for _, v := range vs {
		if v.RuleID == "no_empty_block" {
			found = true
			if v.Level != diag.LevelError {
				t.Errorf("level = %v, want error after override", v.Level)
			}
		}
	}
	if !found {
		t.Error("no_empty_block did not fire")
	}
}

func TestEngineSeverityFloor(t *testing.T) {
	cfg := &lint.Config{}
	cfg.General.MaxSeverity = "warning"
	// no_empty_block is a hint, below the floor
	vs := lintWith(t, cfg, "def noop [] {}\n")
	for _, v := range vs {
		if v.RuleID == "no_empty_block" {
			t.Error("hint survived a warning floor")
		}
	}
}

func TestEngineDeterministicOrder(t *testing.T) {
	src := "let BadName = 1\nmut unchanged = 2\nprint $BadName $unchanged\ncat file.txt\n"
	first := ids(lintWith(t, nil, src))
	if len(first) < 3 {
		t.Fatalf("fixture too quiet: %v", first)
	}
	for i := 0; i < 5; i++ {
		if got := ids(lintWith(t, nil, src)); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d order %v != %v", i, got, first)
		}
	}
}

func TestEngineSortsBySpanThenRule(t *testing.T) {
	src := "cat a.txt\nlet BadName = 1\nprint $BadName\n"
	vs := lintWith(t, nil, src)
	for i := 1; i < len(vs); i++ {
		prev, cur := vs[i-1], vs[i]
		if prev.Primary.Span.Start > cur.Primary.Span.Start {
			t.Errorf("violations out of span order: %v", ids(vs))
		}
		if prev.Primary.Span.Start == cur.Primary.Span.Start && prev.RuleID > cur.RuleID {
			t.Errorf("violations out of rule order: %v", ids(vs))
		}
	}
}

type panickyRule struct{}

func (panickyRule) Meta() lint.Meta {
	return lint.Meta{ID: "panicky", Category: "test", Level: diag.LevelWarning, Short: "always panics"}
}

func (panickyRule) Detect(*lint.Context) []diag.Violation {
	panic("boom")
}

func TestEngineIsolatesRulePanic(t *testing.T) {
	state := lint.NewState(append([]lint.Rule{panickyRule{}}, rules.All()...), nil)
	fs := source.NewFileSet()
	vs := state.LintString(fs, "panic.nu", []byte("let myVariable = 5\nprint $myVariable\n"))

	var internal, snake bool
	for _, v := range vs {
		switch v.RuleID {
		case lint.InternalRuleErrorID:
			internal = true
		case "snake_case_variables":
			snake = true
		}
	}
	if !internal {
		t.Error("panicking rule did not surface internal_rule_error")
	}
	if !snake {
		t.Error("panic aborted the remaining rules")
	}
}

type wildSpanRule struct{}

func (wildSpanRule) Meta() lint.Meta {
	return lint.Meta{ID: "wild_span", Category: "test", Level: diag.LevelWarning, Short: "reads past the file"}
}

func (wildSpanRule) Detect(c *lint.Context) []diag.Violation {
	c.SpanText(source.Span{File: c.File.ID, Start: 100, End: 200})
	return nil
}

func TestEngineReportsOutOfRangeSpanText(t *testing.T) {
	state := lint.NewState([]lint.Rule{wildSpanRule{}}, nil)
	fs := source.NewFileSet()
	vs := state.LintString(fs, "wild.nu", []byte("ls | first\n"))

	if len(vs) != 1 || vs[0].RuleID != lint.InternalRuleErrorID {
		t.Fatalf("got %v, want one internal_rule_error", ids(vs))
	}
	if !strings.Contains(vs[0].Message, "out of range") {
		t.Errorf("message %q does not name the out-of-range span", vs[0].Message)
	}
}

func TestEngineLintFileMissing(t *testing.T) {
	state := lint.NewState(rules.All(), nil)
	fs := source.NewFileSet()
	if _, err := state.LintFile(fs, "does/not/exist.nu"); err == nil {
		t.Error("missing file must surface an IO error")
	}
}
