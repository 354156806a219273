package rules

import (
	"fmt"
	"strings"
	"unicode"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// SnakeCaseVariables flags let/mut/const bindings whose names are not
// snake_case and offers a rename covering the declaration and every usage.
type SnakeCaseVariables struct{}

func (SnakeCaseVariables) Meta() lint.Meta {
	return lint.Meta{
		ID:       "snake_case_variables",
		Category: "style",
		Level:    diag.LevelWarning,
		Short:    "variable names should be snake_case",
		Long: "Nushell convention names variables in snake_case. Mixed-case " +
			"names read as commands or external identifiers and make scripts " +
			"harder to scan.",
		URL: docBase + "snake_case_variables",
	}
}

type snakeCaseFix struct {
	varID    nuast.VarID
	nameSpan source.Span
	renamed  string
}

func (SnakeCaseVariables) DetectAll(c *lint.Context) []lint.Detection {
	return lint.FlatMap(c, func(e *nuast.Expr) []lint.Detection {
		if e.Kind != nuast.ExprLet {
			return nil
		}
		name := e.Let.Name
		if isSnakeCase(name) {
			return nil
		}
		renamed := toSnakeCase(name)
		v := diag.New("snake_case_variables", diag.LevelWarning, e.Let.NameSpan,
			fmt.Sprintf("variable %q should be snake_case", name)).
			WithHelp(fmt.Sprintf("rename it to %q", renamed))
		return []lint.Detection{{
			Violation: v,
			FixInput:  snakeCaseFix{varID: e.Let.Var, nameSpan: e.Let.NameSpan, renamed: renamed},
		}}
	})
}

func (SnakeCaseVariables) Fix(c *lint.Context, input any) (diag.Fix, bool) {
	in, ok := input.(snakeCaseFix)
	if !ok {
		return diag.Fix{}, false
	}
	repls := []diag.Replacement{{Span: in.nameSpan, NewText: in.renamed}}
	for _, use := range lint.VariableUsages(c, c.Root, in.varID) {
		repls = append(repls, diag.Replacement{Span: use, NewText: "$" + in.renamed})
	}
	return diag.Fix{
		Explanation:  fmt.Sprintf("Rename to %q", in.renamed),
		Replacements: repls,
	}, true
}

func isSnakeCase(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return name != ""
}

func toSnakeCase(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case r == '-':
			b.WriteByte('_')
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
