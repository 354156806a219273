package rules

import (
	"fmt"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
)

// PreferBuiltin flags external commands that have a structured builtin
// counterpart. No fix: argument conventions rarely translate one to one.
type PreferBuiltin struct{}

func (PreferBuiltin) Meta() lint.Meta {
	return lint.Meta{
		ID:       "prefer_builtin",
		Category: "idiom",
		Level:    diag.LevelWarning,
		Short:    "external command has a structured builtin equivalent",
		Long: "Builtins return structured data that flows through pipelines; " +
			"external commands return bytes that need re-parsing. Reaching " +
			"for curl or cat where http get or open exists discards the " +
			"structure Nushell is built around.",
		URL: docBase + "prefer_builtin",
	}
}

func (r PreferBuiltin) Detect(c *lint.Context) []diag.Violation {
	return lint.FlatMap(c, func(e *nuast.Expr) []diag.Violation {
		ext, ok := lint.IsExternal(e)
		if !ok {
			return nil
		}
		builtin, ok := nuast.BuiltinEquivalent(ext.Name)
		if !ok {
			return nil
		}
		v := diag.New(r.Meta().ID, diag.LevelWarning, ext.Head.Span,
			fmt.Sprintf("prefer the builtin %q over the external %q", builtin, ext.Name)).
			WithHelp(fmt.Sprintf("%s keeps the output structured", builtin)).
			WithURL(r.Meta().URL)
		return []diag.Violation{v}
	})
}
