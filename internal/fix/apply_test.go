package fix

import (
	"errors"
	"strings"
	"testing"

	"nulint/internal/diag"
	"nulint/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

func TestApplySingleReplacement(t *testing.T) {
	src := []byte("mut x = 5\nprint $x\n")
	out, err := Apply(src, []Edit{{Span: span(0, 3), NewText: "let", RuleID: "unneeded_mut"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), "let x = 5\nprint $x\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyDescendingOrder(t *testing.T) {
	src := []byte("aaa bbb ccc")
	out, err := Apply(src, []Edit{
		{Span: span(0, 3), NewText: "X", RuleID: "r1"},
		{Span: span(8, 11), NewText: "YYYY", RuleID: "r2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), "X bbb YYYY"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyConflictNamesBothRules(t *testing.T) {
	src := []byte("hello world")
	_, err := Apply(src, []Edit{
		{Span: span(0, 6), NewText: "a", RuleID: "rule_a"},
		{Span: span(4, 9), NewText: "b", RuleID: "rule_b"},
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	msg := conflict.Error()
	if !strings.Contains(msg, "rule_a") || !strings.Contains(msg, "rule_b") {
		t.Errorf("conflict message %q must name both rules", msg)
	}
}

func TestApplyIdenticalEditsAreNotAConflict(t *testing.T) {
	src := []byte("mut x = 1\n")
	edits := []Edit{
		{Span: span(0, 3), NewText: "let", RuleID: "a"},
		{Span: span(0, 3), NewText: "let", RuleID: "b"},
	}
	out, err := Apply(src, edits)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "let x = 1\n" {
		t.Errorf("got %q", out)
	}
}

func TestApplyInsertions(t *testing.T) {
	src := []byte("ab")
	out, err := Apply(src, []Edit{
		{Span: span(1, 1), NewText: "X", RuleID: "r"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "aXb" {
		t.Errorf("got %q, want aXb", out)
	}
}

func TestCollect(t *testing.T) {
	vs := []diag.Violation{
		diag.New("a", diag.LevelWarning, span(0, 1), "no fix"),
		{
			RuleID: "b",
			Fix: &diag.Fix{
				Explanation: "swap",
				Replacements: []diag.Replacement{
					{Span: span(2, 4), NewText: "x"},
					{Span: span(6, 8), NewText: "y"},
				},
			},
		},
	}
	edits := Collect(vs)
	if len(edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(edits))
	}
	for _, e := range edits {
		if e.RuleID != "b" {
			t.Errorf("edit rule = %q, want b", e.RuleID)
		}
	}
}

func TestDedupOverlappingEarlierRuleWins(t *testing.T) {
	rank := func(id string) int {
		if id == "first" {
			return 0
		}
		return 1
	}
	edits := []Edit{
		{Span: span(0, 5), NewText: "a", RuleID: "second"},
		{Span: span(3, 8), NewText: "b", RuleID: "first"},
		{Span: span(20, 25), NewText: "c", RuleID: "second"},
	}
	out := DedupOverlapping(edits, rank)
	if len(out) != 2 {
		t.Fatalf("edits = %d, want 2", len(out))
	}
	if out[0].RuleID != "first" {
		t.Errorf("surviving overlap rule = %q, want first", out[0].RuleID)
	}
	if out[1].RuleID != "second" {
		t.Errorf("disjoint edit dropped")
	}
}

func TestFixpointConverges(t *testing.T) {
	// fixing the first marker exposes the second: the lint callback only
	// reports one marker per pass, front to back
	lintOnce := func(src []byte) []diag.Violation {
		idx := strings.Index(string(src), "XX")
		if idx < 0 {
			return nil
		}
		v := diag.Violation{
			RuleID: "marker",
			Fix: &diag.Fix{
				Replacements: []diag.Replacement{
					{Span: span(uint32(idx), uint32(idx+2)), NewText: "ok"},
				},
			},
		}
		return []diag.Violation{v}
	}
	res, err := Fixpoint([]byte("XX and XX\n"), lintOnce)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Final) != "ok and ok\n" {
		t.Errorf("final = %q", res.Final)
	}
	if res.Iterations != 2 || res.Applied != 2 {
		t.Errorf("iterations = %d applied = %d, want 2/2", res.Iterations, res.Applied)
	}
}

func TestFixpointRespectsCap(t *testing.T) {
	// a fix that always reintroduces its own violation must stop at the cap
	lintForever := func(src []byte) []diag.Violation {
		return []diag.Violation{{
			RuleID: "loop",
			Fix: &diag.Fix{
				Replacements: []diag.Replacement{{Span: span(0, 1), NewText: "z"}},
			},
		}}
	}
	res, err := Fixpoint([]byte("a\n"), lintForever)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != MaxIterations {
		t.Errorf("iterations = %d, want %d", res.Iterations, MaxIterations)
	}
}
