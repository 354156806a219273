// Package lint holds the rule contract, the traversal toolkit, the ignore
// filter, and the engine that runs registered rules over parsed files.
package lint

import (
	"bytes"
	"fmt"

	"nulint/internal/nuast"
	"nulint/internal/source"
)

// Context is the read-only bundle handed to a rule's detect pass. Rules
// borrow it for the duration of one file and never retain it.
type Context struct {
	Root *nuast.Block
	WS   *nuast.WorkingSet
	Src  *source.FileSet
	File *source.File
}

// SpanText returns the source text under the span. An out-of-range span is
// a rule bug: it panics, and the engine reports the panic as an
// internal_rule_error violation.
func (c *Context) SpanText(span source.Span) string {
	text, err := c.Src.Text(span)
	if err != nil {
		panic(fmt.Sprintf("span [%d,%d) out of range: %v", span.Start, span.End, err))
	}
	return text
}

// FindDeclSpan locates the first textual occurrence of name in the file.
// It is a positioning heuristic for diagnostics, not a resolver.
func (c *Context) FindDeclSpan(name string) source.Span {
	idx := bytes.Index(c.File.Content, []byte(name))
	if idx < 0 {
		return source.Span{File: c.File.ID}
	}
	start := uint32(idx)
	return source.Span{File: c.File.ID, Start: start, End: start + uint32(len(name))}
}
