package rules

import (
	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// RedundantEcho flags echo stages that only forward their single argument
// and deletes the echo.
type RedundantEcho struct{}

func (RedundantEcho) Meta() lint.Meta {
	return lint.Meta{
		ID:       "redundant_echo",
		Category: "clarity",
		Level:    diag.LevelHint,
		Short:    "echo only forwards its argument",
		Long: "echo returns its arguments unchanged, so `echo $x` is just " +
			"`$x`. Use print when the goal is writing to the terminal.",
		URL:  docBase + "redundant_echo",
		Tags: []diag.Tag{diag.TagUnnecessary},
	}
}

type redundantEchoFix struct {
	headSpan source.Span // from the echo keyword up to its argument
}

func (r RedundantEcho) DetectAll(c *lint.Context) []lint.Detection {
	return lint.DetectInPipelines(c, func(pl *nuast.Pipeline) []lint.Detection {
		var out []lint.Detection
		for i := range pl.Elements {
			e := &pl.Elements[i]
			call, ok := lint.CallTo(c, e, "echo")
			if !ok || len(call.Args) != 1 || len(call.Flags) != 0 {
				continue
			}
			arg := &call.Args[0]
			v := diag.New(r.Meta().ID, diag.LevelHint, call.Head,
				"echo here only forwards its argument").
				WithHelp("drop the echo; the value flows through on its own")
			out = append(out, lint.Detection{
				Violation: v,
				FixInput: redundantEchoFix{
					headSpan: source.Span{File: e.Span.File, Start: e.Span.Start, End: arg.Span.Start},
				},
			})
		}
		return out
	})
}

func (RedundantEcho) Fix(_ *lint.Context, input any) (diag.Fix, bool) {
	in, ok := input.(redundantEchoFix)
	if !ok {
		return diag.Fix{}, false
	}
	return diag.Fix{
		Explanation:  "Remove the redundant echo",
		Replacements: []diag.Replacement{{Span: in.headSpan, NewText: ""}},
	}, true
}
