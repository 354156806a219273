package rules

import (
	"strings"
	"testing"

	"nulint/internal/diag"
	"nulint/internal/fix"
	"nulint/internal/lint"
	"nulint/internal/source"
)

func lintSource(t *testing.T, src string) []diag.Violation {
	t.Helper()
	state := lint.NewState(All(), nil)
	fs := source.NewFileSet()
	return state.LintString(fs, "test.nu", []byte(src))
}

func byRule(vs []diag.Violation, id string) []diag.Violation {
	var out []diag.Violation
	for _, v := range vs {
		if v.RuleID == id {
			out = append(out, v)
		}
	}
	return out
}

// applyRuleFixes applies every fix the named rule produced and returns the
// rewritten source.
func applyRuleFixes(t *testing.T, src, id string) string {
	t.Helper()
	edits := fix.Collect(byRule(lintSource(t, src), id))
	if len(edits) == 0 {
		t.Fatalf("rule %s produced no fixes for %q", id, src)
	}
	out, err := fix.Apply([]byte(src), edits)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return string(out)
}

// checkClean asserts the rule no longer fires on the fixed source and the
// fixed source still parses.
func checkClean(t *testing.T, fixed, id string) {
	t.Helper()
	vs := lintSource(t, fixed)
	if parse := byRule(vs, "nu_parse_error"); len(parse) > 0 {
		t.Fatalf("fixed source does not parse: %v", parse[0].Message)
	}
	if again := byRule(vs, id); len(again) > 0 {
		t.Errorf("rule %s still fires after its own fix: %v", id, again[0].Message)
	}
}

func TestSnakeCaseVariables(t *testing.T) {
	bad := "let myVariable = 5\nprint $myVariable\n"
	vs := byRule(lintSource(t, bad), "snake_case_variables")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if !strings.Contains(vs[0].Message, "myVariable") {
		t.Errorf("message = %q", vs[0].Message)
	}

	fixed := applyRuleFixes(t, bad, "snake_case_variables")
	want := "let my_variable = 5\nprint $my_variable\n"
	if fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
	checkClean(t, fixed, "snake_case_variables")

	if vs := byRule(lintSource(t, "let my_var = 5\nprint $my_var\n"), "snake_case_variables"); len(vs) != 0 {
		t.Errorf("good source flagged: %v", vs)
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"myVariable", "my_variable"},
		{"HTTPPort", "httpport"},
		{"kebab-case", "kebab_case"},
		{"already_snake", "already_snake"},
		{"Mixed_Case", "mixed_case"},
	}
	for _, c := range cases {
		if got := toSnakeCase(c.in); got != c.want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUnneededMut(t *testing.T) {
	bad := "mut x = 5\nprint $x\n"
	vs := byRule(lintSource(t, bad), "unneeded_mut")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}

	fixed := applyRuleFixes(t, bad, "unneeded_mut")
	if want := "let x = 5\nprint $x\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
	checkClean(t, fixed, "unneeded_mut")
}

func TestUnneededMutGood(t *testing.T) {
	good := []string{
		"mut x = 5\n$x = 6\n",
		"mut x = 5\n$x += 1\n",
		"mut r = { a: 1 }\n$r.a = 2\n",
		"let x = 5\nprint $x\n",
	}
	for _, src := range good {
		if vs := byRule(lintSource(t, src), "unneeded_mut"); len(vs) != 0 {
			t.Errorf("%q flagged: %v", src, vs[0].Message)
		}
	}
}

func TestPreferBuiltin(t *testing.T) {
	vs := byRule(lintSource(t, "cat file.txt\n"), "prefer_builtin")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if !strings.Contains(vs[0].Message, "open") || !strings.Contains(vs[0].Message, "cat") {
		t.Errorf("message = %q, want both command names", vs[0].Message)
	}
	if vs[0].Fix != nil {
		t.Error("prefer_builtin must not offer a fix")
	}

	for _, src := range []string{"open file.txt\n", "my-custom-tool --run\n"} {
		if vs := byRule(lintSource(t, src), "prefer_builtin"); len(vs) != 0 {
			t.Errorf("%q flagged: %v", src, vs[0].Message)
		}
	}
}

func TestPreferLines(t *testing.T) {
	bad := "open file.txt | split row \"\\n\"\n"
	vs := byRule(lintSource(t, bad), "prefer_lines")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}

	fixed := applyRuleFixes(t, bad, "prefer_lines")
	if want := "open file.txt | lines\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
	checkClean(t, fixed, "prefer_lines")

	if vs := byRule(lintSource(t, "open file.txt | split row \",\"\n"), "prefer_lines"); len(vs) != 0 {
		t.Errorf("comma split flagged: %v", vs)
	}
}

func TestPreferIsEmpty(t *testing.T) {
	bad := "let e = (ls | length) == 0\n"
	vs := byRule(lintSource(t, bad), "prefer_is_empty")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}

	fixed := applyRuleFixes(t, bad, "prefer_is_empty")
	if want := "let e = (ls | is-empty)\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
	checkClean(t, fixed, "prefer_is_empty")
}

func TestPreferIsEmptyReversed(t *testing.T) {
	fixed := applyRuleFixes(t, "let e = 0 == (ls | length)\n", "prefer_is_empty")
	if want := "let e = (ls | is-empty)\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
}

func TestPreferIsEmptyGood(t *testing.T) {
	good := []string{
		"let n = (ls | length) == 1\n",
		"let n = (ls | length)\n",
		"let e = (ls | is-empty)\n",
	}
	for _, src := range good {
		if vs := byRule(lintSource(t, src), "prefer_is_empty"); len(vs) != 0 {
			t.Errorf("%q flagged: %v", src, vs[0].Message)
		}
	}
}

func TestUnusedParameter(t *testing.T) {
	bad := "def greet [name: string, unused: int] { print $name }\n"
	vs := byRule(lintSource(t, bad), "unused_parameter")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if !strings.Contains(vs[0].Message, "unused") {
		t.Errorf("message = %q", vs[0].Message)
	}

	fixed := applyRuleFixes(t, bad, "unused_parameter")
	if want := "def greet [name: string] { print $name }\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
	checkClean(t, fixed, "unused_parameter")

	if vs := byRule(lintSource(t, "def greet [name: string] { print $name }\n"), "unused_parameter"); len(vs) != 0 {
		t.Errorf("good def flagged: %v", vs[0].Message)
	}
}

func TestUnusedParameterFirstPosition(t *testing.T) {
	fixed := applyRuleFixes(t, "def f [unused: int, name: string] { print $name }\n", "unused_parameter")
	if want := "def f [name: string] { print $name }\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
}

func TestNoEmptyBlock(t *testing.T) {
	vs := byRule(lintSource(t, "def noop [] {}\n"), "no_empty_block")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if vs[0].Level != diag.LevelHint {
		t.Errorf("level = %v, want hint", vs[0].Level)
	}

	if vs := byRule(lintSource(t, "def f [] { print hi }\n"), "no_empty_block"); len(vs) != 0 {
		t.Errorf("non-empty body flagged: %v", vs)
	}
}

func TestRedundantEcho(t *testing.T) {
	bad := "let x = 1\necho $x\n"
	vs := byRule(lintSource(t, bad), "redundant_echo")
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}

	fixed := applyRuleFixes(t, bad, "redundant_echo")
	if want := "let x = 1\n$x\n"; fixed != want {
		t.Errorf("fixed = %q, want %q", fixed, want)
	}
	checkClean(t, fixed, "redundant_echo")
}

func TestRedundantEchoGood(t *testing.T) {
	good := []string{
		"echo a b\n", // multiple args build a list
		"echo\n",
		"print $x\n",
	}
	for _, src := range good {
		if vs := byRule(lintSource(t, src), "redundant_echo"); len(vs) != 0 {
			t.Errorf("%q flagged: %v", src, vs[0].Message)
		}
	}
}

func TestRegistryMetadata(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range All() {
		m := r.Meta()
		if m.ID == "" || m.Short == "" || m.Category == "" {
			t.Errorf("rule %q missing metadata", m.ID)
		}
		if seen[m.ID] {
			t.Errorf("duplicate rule id %q", m.ID)
		}
		seen[m.ID] = true
		for _, ch := range m.ID {
			if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') && ch != '_' {
				t.Errorf("rule id %q has invalid character %q", m.ID, ch)
			}
		}
	}
	if len(seen) != 8 {
		t.Errorf("registry has %d rules, want 8", len(seen))
	}
}
