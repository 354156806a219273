package lint

import (
	"nulint/internal/diag"
)

// Meta is a rule's static metadata. IDs match [a-z][a-z0-9_]* and are
// unique across the registry.
type Meta struct {
	ID       string
	Category string
	Level    diag.LintLevel
	Short    string
	Long     string
	URL      string
	Tags     []diag.Tag
}

// Rule is the raw contract: inspect the context, return violations.
type Rule interface {
	Meta() Meta
	Detect(c *Context) []diag.Violation
}

// Detection is a violation under construction paired with whatever data
// the rule needs to regenerate its fix later.
type Detection struct {
	Violation diag.Violation
	FixInput  any
}

// DetectFixer is the common rule shape: detection and fix generation are
// separate passes, so tests can exercise detection alone and the LSP can
// rebuild fixes against the latest document without re-detecting.
type DetectFixer interface {
	Meta() Meta
	DetectAll(c *Context) []Detection
	Fix(c *Context, input any) (diag.Fix, bool)
}

// AsRule adapts a DetectFixer to the raw contract by folding each fix
// input through Fix and attaching the result to its violation.
func AsRule(df DetectFixer) Rule {
	return fixerRule{df}
}

type fixerRule struct {
	df DetectFixer
}

func (r fixerRule) Meta() Meta { return r.df.Meta() }

func (r fixerRule) Detect(c *Context) []diag.Violation {
	detections := r.df.DetectAll(c)
	out := make([]diag.Violation, 0, len(detections))
	for _, d := range detections {
		v := d.Violation
		if d.FixInput != nil {
			if fix, ok := r.df.Fix(c, d.FixInput); ok {
				v.Fix = &fix
			}
		}
		out = append(out, v)
	}
	return out
}
