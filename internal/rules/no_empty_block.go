package rules

import (
	"fmt"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/nuast"
)

// NoEmptyBlock flags blocks, closures, and command bodies with no
// pipelines in them.
type NoEmptyBlock struct{}

func (NoEmptyBlock) Meta() lint.Meta {
	return lint.Meta{
		ID:       "no_empty_block",
		Category: "clarity",
		Level:    diag.LevelHint,
		Short:    "block has no statements",
		Long: "An empty block usually marks an unfinished branch or a " +
			"leftover from a refactor. Drop it or leave a comment saying " +
			"why nothing happens here.",
		URL: docBase + "no_empty_block",
	}
}

func (r NoEmptyBlock) Detect(c *lint.Context) []diag.Violation {
	return lint.FlatMap(c, func(e *nuast.Expr) []diag.Violation {
		var id nuast.BlockID
		var what string
		switch e.Kind {
		case nuast.ExprBlock:
			id, what = e.Block, "block"
		case nuast.ExprClosure:
			id, what = e.Block, "closure"
		case nuast.ExprDef:
			id, what = e.Def.Body, fmt.Sprintf("body of %q", e.Def.Name)
		default:
			return nil
		}
		block := c.WS.Block(id)
		if block == nil || len(block.Pipelines) > 0 {
			return nil
		}
		span := e.Span
		if e.Kind == nuast.ExprDef {
			span = block.Span
		}
		return []diag.Violation{diag.New(r.Meta().ID, diag.LevelHint, span,
			fmt.Sprintf("empty %s", what))}
	})
}
