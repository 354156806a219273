package rules

import (
	"strings"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// PreferIsEmpty rewrites `(… | length) == 0` comparisons to `… | is-empty`.
type PreferIsEmpty struct{}

func (PreferIsEmpty) Meta() lint.Meta {
	return lint.Meta{
		ID:       "prefer_is_empty",
		Category: "idiom",
		Level:    diag.LevelWarning,
		Short:    "compare with is-empty instead of length == 0",
		Long: "is-empty asks the question directly and also covers strings " +
			"and nothing values, where a length comparison needs extra care.",
		URL: docBase + "prefer_is_empty",
	}
}

type preferIsEmptyFix struct {
	lengthSpan source.Span // the length stage inside the subexpression
	removeSpan source.Span // the `== 0` side of the comparison
}

func (r PreferIsEmpty) DetectAll(c *lint.Context) []lint.Detection {
	return lint.FlatMap(c, func(e *nuast.Expr) []lint.Detection {
		if e.Kind != nuast.ExprBinaryOp || e.Binary.Op != "==" {
			return nil
		}
		sub, zero := &e.Binary.LHS, &e.Binary.RHS
		if sub.Kind != nuast.ExprSubexpression {
			sub, zero = zero, sub
		}
		if sub.Kind != nuast.ExprSubexpression || zero.Kind != nuast.ExprInt || zero.Int != 0 {
			return nil
		}
		lengthSpan, ok := trailingLengthStage(c, sub)
		if !ok {
			return nil
		}
		removeSpan := source.Span{File: e.Span.File, Start: sub.Span.End, End: e.Span.End}
		if e.Binary.LHS.Kind == nuast.ExprInt {
			// 0 == (…): the comparison sits before the subexpression
			removeSpan = source.Span{File: e.Span.File, Start: e.Span.Start, End: sub.Span.Start}
		}
		v := diag.New(r.Meta().ID, diag.LevelWarning, e.Span,
			"length == 0 asks whether the input is empty").
			WithHelp("pipe into is-empty instead")
		return []lint.Detection{{
			Violation: v,
			FixInput: preferIsEmptyFix{
				lengthSpan: lengthSpan,
				removeSpan: removeSpan,
			},
		}}
	})
}

// trailingLengthStage returns the span of a bare `length` stage ending the
// subexpression's single pipeline.
func trailingLengthStage(c *lint.Context, sub *nuast.Expr) (source.Span, bool) {
	block := c.WS.Block(sub.Block)
	if block == nil || len(block.Pipelines) != 1 {
		return source.Span{}, false
	}
	pl := &block.Pipelines[0]
	if len(pl.Elements) < 2 {
		return source.Span{}, false
	}
	last := &pl.Elements[len(pl.Elements)-1]
	call, ok := lint.CallTo(c, last, "length")
	if !ok || len(call.Args) != 0 || len(call.Flags) != 0 {
		return source.Span{}, false
	}
	return last.Span, true
}

func (PreferIsEmpty) Fix(c *lint.Context, input any) (diag.Fix, bool) {
	in, ok := input.(preferIsEmptyFix)
	if !ok {
		return diag.Fix{}, false
	}
	// only rewrite when the removed side is literally the 0 comparison
	removed := strings.Join(strings.Fields(c.SpanText(in.removeSpan)), " ")
	if removed != "== 0" && removed != "0 ==" {
		return diag.Fix{}, false
	}
	return diag.Fix{
		Explanation: "Replace the length comparison with is-empty",
		Replacements: []diag.Replacement{
			{Span: in.lengthSpan, NewText: "is-empty"},
			{Span: in.removeSpan, NewText: ""},
		},
	}, true
}
