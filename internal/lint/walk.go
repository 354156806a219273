package lint

import (
	"nulint/internal/nuast"
)

// FlatMap visits every expression in pre-order, descending into nested
// blocks, closures, and subexpressions, and concatenates the visitor's
// results.
func FlatMap[T any](c *Context, fn func(*nuast.Expr) []T) []T {
	var out []T
	walkBlock(c.WS, c.Root, func(e *nuast.Expr) bool {
		out = append(out, fn(e)...)
		return false
	})
	return out
}

// FindMap is the short-circuiting form: it returns the first value the
// visitor yields, in pre-order.
func FindMap[T any](c *Context, fn func(*nuast.Expr) (T, bool)) (T, bool) {
	return FindMapInBlock(c, c.Root, fn)
}

// FindMapInBlock scopes the search to one block and its nested blocks.
func FindMapInBlock[T any](c *Context, block *nuast.Block, fn func(*nuast.Expr) (T, bool)) (T, bool) {
	var result T
	var found bool
	walkBlock(c.WS, block, func(e *nuast.Expr) bool {
		if v, ok := fn(e); ok {
			result = v
			found = true
			return true
		}
		return false
	})
	return result, found
}

// DetectInPipelines invokes the visitor once per pipeline, outermost block
// first, so rules can inspect element relationships within a stage chain.
func DetectInPipelines[T any](c *Context, fn func(*nuast.Pipeline) []T) []T {
	var out []T
	forEachBlock(c.WS, c.Root, func(b *nuast.Block) {
		for i := range b.Pipelines {
			out = append(out, fn(&b.Pipelines[i])...)
		}
	})
	return out
}

// forEachBlock visits the block and every block nested in its expressions.
func forEachBlock(ws *nuast.WorkingSet, block *nuast.Block, fn func(*nuast.Block)) {
	if block == nil {
		return
	}
	fn(block)
	walkBlock(ws, block, func(e *nuast.Expr) bool {
		if nested, ok := nestedBlock(ws, e); ok {
			fn(nested)
		}
		return false
	})
}

func nestedBlock(ws *nuast.WorkingSet, e *nuast.Expr) (*nuast.Block, bool) {
	switch e.Kind {
	case nuast.ExprBlock, nuast.ExprClosure, nuast.ExprSubexpression:
		if b := ws.Block(e.Block); b != nil {
			return b, true
		}
	case nuast.ExprDef:
		if b := ws.Block(e.Def.Body); b != nil {
			return b, true
		}
	}
	return nil, false
}

// walkBlock drives a pre-order walk. The visitor returns true to stop the
// whole walk; walkBlock propagates the stop.
func walkBlock(ws *nuast.WorkingSet, block *nuast.Block, visit func(*nuast.Expr) bool) bool {
	if block == nil {
		return false
	}
	for pi := range block.Pipelines {
		pl := &block.Pipelines[pi]
		for ei := range pl.Elements {
			if walkExpr(ws, &pl.Elements[ei], visit) {
				return true
			}
		}
	}
	return false
}

func walkExpr(ws *nuast.WorkingSet, e *nuast.Expr, visit func(*nuast.Expr) bool) bool {
	if visit(e) {
		return true
	}
	switch e.Kind {
	case nuast.ExprCall:
		for i := range e.Call.Args {
			if walkExpr(ws, &e.Call.Args[i], visit) {
				return true
			}
		}
		for i := range e.Call.Flags {
			if v := e.Call.Flags[i].Value; v != nil {
				if walkExpr(ws, v, visit) {
					return true
				}
			}
		}
	case nuast.ExprExternalCall:
		if walkExpr(ws, &e.External.Head, visit) {
			return true
		}
		for i := range e.External.Args {
			if walkExpr(ws, &e.External.Args[i], visit) {
				return true
			}
		}
	case nuast.ExprList:
		for i := range e.Items {
			if walkExpr(ws, &e.Items[i], visit) {
				return true
			}
		}
	case nuast.ExprRecord:
		for i := range e.Fields {
			if walkExpr(ws, &e.Fields[i].Value, visit) {
				return true
			}
		}
	case nuast.ExprBlock, nuast.ExprClosure, nuast.ExprSubexpression:
		if walkBlock(ws, ws.Block(e.Block), visit) {
			return true
		}
	case nuast.ExprBinaryOp:
		if walkExpr(ws, &e.Binary.LHS, visit) {
			return true
		}
		if walkExpr(ws, &e.Binary.RHS, visit) {
			return true
		}
	case nuast.ExprCellPath:
		if walkExpr(ws, &e.Path.Head, visit) {
			return true
		}
	case nuast.ExprLet:
		if walkExpr(ws, &e.Let.Value, visit) {
			return true
		}
	case nuast.ExprDef:
		if walkBlock(ws, ws.Block(e.Def.Body), visit) {
			return true
		}
	}
	return false
}
