package rules

import (
	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// PreferLines rewrites `split row "\n"` pipeline stages to `lines`.
type PreferLines struct{}

func (PreferLines) Meta() lint.Meta {
	return lint.Meta{
		ID:       "prefer_lines",
		Category: "idiom",
		Level:    diag.LevelWarning,
		Short:    "use lines instead of splitting on newlines",
		Long: "lines splits text into rows on any line terminator and drops " +
			"a trailing empty entry, which is almost always what splitting " +
			"on \"\\n\" was trying to do.",
		URL: docBase + "prefer_lines",
	}
}

type preferLinesFix struct {
	span source.Span
}

func (r PreferLines) DetectAll(c *lint.Context) []lint.Detection {
	return lint.DetectInPipelines(c, func(pl *nuast.Pipeline) []lint.Detection {
		var out []lint.Detection
		for i := range pl.Elements {
			e := &pl.Elements[i]
			call, ok := lint.CallTo(c, e, "split row")
			if !ok || len(call.Args) != 1 {
				continue
			}
			sep := &call.Args[0]
			if sep.Kind != nuast.ExprString || sep.Str != "\n" {
				continue
			}
			v := diag.New(r.Meta().ID, diag.LevelWarning, e.Span,
				`splitting on "\n" reimplements lines`).
				WithHelp("lines also handles \\r\\n and trailing terminators")
			out = append(out, lint.Detection{
				Violation: v,
				FixInput:  preferLinesFix{span: e.Span},
			})
		}
		return out
	})
}

func (PreferLines) Fix(_ *lint.Context, input any) (diag.Fix, bool) {
	in, ok := input.(preferLinesFix)
	if !ok {
		return diag.Fix{}, false
	}
	return diag.Fix{
		Explanation:  "Replace with lines",
		Replacements: []diag.Replacement{{Span: in.span, NewText: "lines"}},
	}, true
}
