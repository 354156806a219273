package rules

import (
	"fmt"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// UnneededMut flags mut bindings that are never reassigned and rewrites
// them to let.
type UnneededMut struct{}

func (UnneededMut) Meta() lint.Meta {
	return lint.Meta{
		ID:       "unneeded_mut",
		Category: "clarity",
		Level:    diag.LevelWarning,
		Short:    "mut variable is never reassigned",
		Long: "A mut binding signals that the value changes later. When no " +
			"assignment ever targets the variable, let states the intent " +
			"precisely and lets the reader stop tracking it.",
		URL:  docBase + "unneeded_mut",
		Tags: []diag.Tag{diag.TagUnnecessary},
	}
}

type unneededMutFix struct {
	kwSpan source.Span
}

func (UnneededMut) DetectAll(c *lint.Context) []lint.Detection {
	return lint.FlatMap(c, func(e *nuast.Expr) []lint.Detection {
		if e.Kind != nuast.ExprLet || e.Let.Keyword != "mut" {
			return nil
		}
		if isReassigned(c, e.Let.Var) {
			return nil
		}
		v := diag.New("unneeded_mut", diag.LevelWarning, e.Let.KwSpan,
			fmt.Sprintf("variable %q is declared mut but never reassigned", e.Let.Name)).
			WithHelp("declare it with let instead")
		return []lint.Detection{{
			Violation: v,
			FixInput:  unneededMutFix{kwSpan: e.Let.KwSpan},
		}}
	})
}

func (UnneededMut) Fix(_ *lint.Context, input any) (diag.Fix, bool) {
	in, ok := input.(unneededMutFix)
	if !ok {
		return diag.Fix{}, false
	}
	return diag.Fix{
		Explanation:  "Replace mut with let",
		Replacements: []diag.Replacement{{Span: in.kwSpan, NewText: "let"}},
	}, true
}

// isReassigned proves an assignment targets the variable anywhere in the
// file, including through a cell path on it.
func isReassigned(c *lint.Context, id nuast.VarID) bool {
	_, found := lint.FindMap(c, func(e *nuast.Expr) (struct{}, bool) {
		if e.Kind != nuast.ExprBinaryOp || !e.Binary.IsAssignment() {
			return struct{}{}, false
		}
		return struct{}{}, assignmentTargets(&e.Binary.LHS, id)
	})
	return found
}

func assignmentTargets(lhs *nuast.Expr, id nuast.VarID) bool {
	switch lhs.Kind {
	case nuast.ExprVar:
		return lhs.Var == id
	case nuast.ExprCellPath:
		return lhs.Path.Head.Kind == nuast.ExprVar && lhs.Path.Head.Var == id
	}
	return false
}
