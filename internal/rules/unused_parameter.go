package rules

import (
	"fmt"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// UnusedParameter flags def parameters the body never references and
// removes them from the signature.
type UnusedParameter struct{}

func (UnusedParameter) Meta() lint.Meta {
	return lint.Meta{
		ID:       "unused_parameter",
		Category: "correctness",
		Level:    diag.LevelWarning,
		Short:    "command parameter is never used",
		Long: "A parameter the body ignores still forces every caller to " +
			"supply it. Either use it or take it out of the signature.",
		URL:  docBase + "unused_parameter",
		Tags: []diag.Tag{diag.TagUnnecessary},
	}
}

type unusedParameterFix struct {
	body    nuast.BlockID
	name    string
	sigSpan source.Span
}

func (r UnusedParameter) DetectAll(c *lint.Context) []lint.Detection {
	return lint.FlatMap(c, func(e *nuast.Expr) []lint.Detection {
		if e.Kind != nuast.ExprDef {
			return nil
		}
		body := c.WS.Block(e.Def.Body)
		if body == nil || body.Signature == nil {
			return nil
		}
		sig := body.Signature

		var out []lint.Detection
		for _, param := range sig.Positional() {
			if len(lint.VariableUsages(c, body, param.Var)) > 0 {
				continue
			}
			v := diag.New(r.Meta().ID, diag.LevelWarning, param.Span,
				fmt.Sprintf("parameter %q of %q is never used", param.Name, e.Def.Name)).
				WithHelp("remove it from the signature")
			out = append(out, lint.Detection{
				Violation: v,
				FixInput:  unusedParameterFix{body: e.Def.Body, name: param.Name, sigSpan: sig.Span},
			})
		}
		return out
	})
}

func (UnusedParameter) Fix(c *lint.Context, input any) (diag.Fix, bool) {
	in, ok := input.(unusedParameterFix)
	if !ok {
		return diag.Fix{}, false
	}
	nameSpan, ok := lint.ParamNameSpan(c, in.sigSpan, in.name)
	if !ok {
		return diag.Fix{}, false
	}

	// widen over the optional marker, the type annotation, and one
	// separator; the last entry gives back its leading separator instead
	text := c.SpanText(in.sigSpan)
	start := int(nameSpan.Start - in.sigSpan.Start)
	end := start + len(in.name)

	if end < len(text) && text[end] == '?' {
		end++
	}
	if end < len(text) && text[end] == ':' {
		end++
		for end < len(text) && text[end] == ' ' {
			end++
		}
		for end < len(text) && isIdentChar(text[end]) {
			end++
		}
	}
	if end < len(text) && text[end] == ',' {
		end++
		for end < len(text) && text[end] == ' ' {
			end++
		}
	} else {
		for start > 0 && (text[start-1] == ' ' || text[start-1] == ',') {
			start--
		}
	}

	span := source.Span{
		File:  in.sigSpan.File,
		Start: in.sigSpan.Start + uint32(start),
		End:   in.sigSpan.Start + uint32(end),
	}
	return diag.Fix{
		Explanation:  fmt.Sprintf("Remove the unused parameter %q", in.name),
		Replacements: []diag.Replacement{{Span: span, NewText: ""}},
	}, true
}

func isIdentChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '-', b == '<', b == '>':
		return true
	}
	return false
}
