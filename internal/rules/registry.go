// Package rules ships the built-in lint rules. The order of All is the
// registry order and is observable through fix-all conflict resolution, so
// new rules go at the end.
package rules

import (
	"nulint/internal/lint"
)

const docBase = "https://nu-lint.dev/rules/"

// All returns the registry in its canonical order.
func All() []lint.Rule {
	return []lint.Rule{
		lint.AsRule(SnakeCaseVariables{}),
		lint.AsRule(UnneededMut{}),
		PreferBuiltin{},
		lint.AsRule(PreferLines{}),
		lint.AsRule(PreferIsEmpty{}),
		lint.AsRule(UnusedParameter{}),
		NoEmptyBlock{},
		lint.AsRule(RedundantEcho{}),
	}
}
