package lint

import (
	"strings"

	"nulint/internal/nuast"
	"nulint/internal/source"
)

// CallTo returns the call payload when the expression invokes the named
// command.
func CallTo(c *Context, e *nuast.Expr, name string) (*nuast.Call, bool) {
	if e.Kind != nuast.ExprCall {
		return nil, false
	}
	decl := c.WS.Decl(e.Call.Decl)
	if decl == nil || decl.Name != name {
		return nil, false
	}
	return e.Call, true
}

// IsCallTo reports whether the expression invokes the named command.
func IsCallTo(c *Context, e *nuast.Expr, name string) bool {
	_, ok := CallTo(c, e, name)
	return ok
}

// HasNamedFlag reports whether the call passes the long flag.
func HasNamedFlag(call *nuast.Call, long string) bool {
	return call.HasFlag(long)
}

// BlockID extracts the nested block behind a block, closure, or
// subexpression literal.
func BlockID(e *nuast.Expr) (nuast.BlockID, bool) {
	switch e.Kind {
	case nuast.ExprBlock, nuast.ExprClosure, nuast.ExprSubexpression:
		return e.Block, true
	case nuast.ExprDef:
		return e.Def.Body, true
	}
	return 0, false
}

// IsLiteralList reports whether the expression is a list literal.
func IsLiteralList(e *nuast.Expr) bool {
	return e.Kind == nuast.ExprList
}

// IsEmptyList reports whether the expression is a list literal with no
// items.
func IsEmptyList(e *nuast.Expr) bool {
	return e.Kind == nuast.ExprList && len(e.Items) == 0
}

// IsExternal returns the external-call payload when the expression spawns
// a process.
func IsExternal(e *nuast.Expr) (*nuast.ExternalCall, bool) {
	if e.Kind != nuast.ExprExternalCall {
		return nil, false
	}
	return e.External, true
}

// ParamNameSpan scans the signature text for the parameter name and
// returns its exact span. Fix builders that rewrite signatures use it to
// anchor their edits.
func ParamNameSpan(c *Context, sigSpan source.Span, name string) (source.Span, bool) {
	text := c.SpanText(sigSpan)
	for off := 0; off < len(text); {
		idx := strings.Index(text[off:], name)
		if idx < 0 {
			return source.Span{}, false
		}
		abs := off + idx
		before := byte('[')
		if abs > 0 {
			before = text[abs-1]
		}
		after := byte(']')
		if abs+len(name) < len(text) {
			after = text[abs+len(name)]
		}
		if !isIdentByte(before) && !isIdentByte(after) {
			start := sigSpan.Start + uint32(abs)
			return source.Span{File: sigSpan.File, Start: start, End: start + uint32(len(name))}, true
		}
		off = abs + len(name)
	}
	return source.Span{}, false
}

func isIdentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '-':
		return true
	}
	return false
}

// VariableUsages lists the spans where the variable is referenced inside
// the block, honoring nested blocks. Declaration sites do not count.
func VariableUsages(c *Context, block *nuast.Block, id nuast.VarID) []source.Span {
	var spans []source.Span
	walkBlock(c.WS, block, func(e *nuast.Expr) bool {
		if e.Kind == nuast.ExprVar && e.Var == id {
			spans = append(spans, e.Span)
		}
		return false
	})
	return spans
}
