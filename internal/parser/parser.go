package parser

import (
	"fmt"
	"strconv"
	"strings"

	"nulint/internal/diag"
	"nulint/internal/nuast"
	"nulint/internal/source"
)

// ParseErrorID is the rule id carried by parser-produced violations.
const ParseErrorID = "nu_parse_error"

// maxParseErrors caps error cascades from badly broken input.
const maxParseErrors = 50

// Parse runs the parser over the file and returns the root block plus any
// parser diagnostics as violations. The block is always usable: bad regions
// parse to garbage expressions and the rest of the file is still analyzed.
func Parse(ws *nuast.WorkingSet, file *source.File) (*nuast.Block, []diag.Violation) {
	p := &parser{
		ws:   ws,
		file: file,
	}
	p.scan()
	p.pushScope()
	root := p.parseBlock(tokEOF, nil)
	p.popScope()
	return root, p.violations
}

type parser struct {
	ws         *nuast.WorkingSet
	file       *source.File
	toks       []token
	i          int
	violations []diag.Violation
	scopes     []map[string]nuast.VarID
}

func (p *parser) scan() {
	sc := newScanner(p.file.Content, p.file.ID)
	for {
		t := sc.next()
		p.toks = append(p.toks, t)
		if t.kind == tokEOF {
			return
		}
	}
}

func (p *parser) cur() token  { return p.toks[p.i] }
func (p *parser) peek() token { return p.peekAt(1) }

func (p *parser) peekAt(n int) token {
	j := p.i + n
	if j >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[j]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) at(kind tokenKind) bool { return p.cur().kind == kind }

func (p *parser) errorAt(span source.Span, msg string) {
	if len(p.violations) >= maxParseErrors {
		return
	}
	p.violations = append(p.violations, diag.New(ParseErrorID, diag.LevelError, span, msg))
}

func (p *parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]nuast.VarID))
}

func (p *parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *parser) bindVar(name string, id nuast.VarID) {
	p.scopes[len(p.scopes)-1][name] = id
}

func (p *parser) lookupVar(name string, use source.Span) nuast.VarID {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if id, ok := p.scopes[i][name]; ok {
			return id
		}
	}
	// unknown or ambient ($env, $in, $nu): mint a record with no decl site
	id := p.ws.AddVariable(nuast.Variable{Name: name, DeclSpan: source.Span{File: p.file.ID, Start: use.Start, End: use.Start}})
	p.bindVar(name, id)
	return id
}

func (p *parser) skipBlankLines() {
	for p.at(tokNewline) || p.at(tokSemicolon) {
		p.advance()
	}
}

// skipAttribute consumes an @attribute line.
func (p *parser) skipAttribute() {
	for !p.at(tokNewline) && !p.at(tokEOF) {
		p.advance()
	}
}

// parseBlock parses pipelines until the closing token. The signature, when
// present, binds its parameters into the block's scope.
func (p *parser) parseBlock(closer tokenKind, sig *nuast.Signature) *nuast.Block {
	start := p.cur().span
	block := &nuast.Block{Signature: sig, Span: start}

	p.pushScope()
	if sig != nil {
		for i := range sig.Required {
			p.bindVar(sig.Required[i].Name, sig.Required[i].Var)
		}
		for i := range sig.Optional {
			p.bindVar(sig.Optional[i].Name, sig.Optional[i].Var)
		}
		if sig.Rest != nil {
			p.bindVar(sig.Rest.Name, sig.Rest.Var)
		}
		for i := range sig.Named {
			p.bindVar(strings.ReplaceAll(sig.Named[i].Long, "-", "_"), sig.Named[i].Var)
		}
	}

	for {
		p.skipBlankLines()
		if p.at(tokAt) {
			p.skipAttribute()
			continue
		}
		if p.at(closer) {
			break
		}
		if p.at(tokEOF) {
			if closer != tokEOF {
				p.errorAt(p.cur().span, closerMessage(closer))
			}
			break
		}
		pl := p.parsePipeline()
		if len(pl.Elements) > 0 {
			block.Pipelines = append(block.Pipelines, pl)
			block.Span = block.Span.Cover(pl.Span)
		}
	}

	p.popScope()
	p.ws.AddBlock(block)
	return block
}

func closerMessage(closer tokenKind) string {
	switch closer {
	case tokRParen:
		return "unclosed parenthesis (expected ')')"
	case tokRBrace:
		return "unclosed brace (expected '}')"
	case tokRBracket:
		return "unclosed bracket (expected ']')"
	}
	return "unexpected end of input"
}

func (p *parser) parsePipeline() nuast.Pipeline {
	first := p.parseStatement()
	pl := nuast.Pipeline{Elements: []nuast.Expr{first}, Span: first.Span}

	for {
		if p.at(tokPipe) {
			p.advance()
			for p.at(tokNewline) {
				p.advance()
			}
			elem := p.parseElement()
			pl.Elements = append(pl.Elements, elem)
			pl.Span = pl.Span.Cover(elem.Span)
			continue
		}
		// the `| next-stage` continuation style: newline, then a pipe
		if p.at(tokNewline) {
			j := 1
			for p.peekAt(j).kind == tokNewline {
				j++
			}
			if p.peekAt(j).kind == tokPipe {
				for !p.at(tokPipe) {
					p.advance()
				}
				continue
			}
		}
		break
	}
	return pl
}

// parseStatement handles the keyword forms; everything else is a pipeline
// element.
func (p *parser) parseStatement() nuast.Expr {
	if p.at(tokWord) {
		switch p.cur().text {
		case "let", "mut", "const":
			return p.parseLet()
		case "def":
			return p.parseDef()
		case "export":
			if p.peek().kind == tokWord && p.peek().text == "def" {
				p.advance()
				return p.parseDef()
			}
		}
	}
	return p.parseElement()
}

func (p *parser) parseLet() nuast.Expr {
	kw := p.advance()

	if !p.at(tokWord) {
		p.errorAt(p.cur().span, fmt.Sprintf("expected identifier after '%s'", kw.text))
		return garbage(kw.span)
	}
	name := p.advance()

	if !(p.at(tokOperator) && p.cur().text == "=") {
		p.errorAt(p.cur().span, fmt.Sprintf("expected '=' in %s declaration", kw.text))
		return garbage(kw.span.Cover(name.span))
	}
	p.advance()

	value := p.parseExpr()

	id := p.ws.AddVariable(nuast.Variable{
		Name:     name.text,
		DeclSpan: name.span,
		Ty:       inferType(&value),
		Mutable:  kw.text == "mut",
		Const:    kw.text == "const",
	})
	p.bindVar(name.text, id)

	return nuast.Expr{
		Kind: nuast.ExprLet,
		Span: kw.span.Cover(value.Span),
		Let: &nuast.LetDecl{
			Var:      id,
			Name:     name.text,
			NameSpan: name.span,
			Keyword:  kw.text,
			KwSpan:   kw.span,
			Value:    value,
		},
	}
}

func inferType(e *nuast.Expr) nuast.Type {
	switch e.Kind {
	case nuast.ExprInt:
		return nuast.TypeInt
	case nuast.ExprFloat:
		return nuast.TypeFloat
	case nuast.ExprString:
		return nuast.TypeString
	case nuast.ExprBool:
		return nuast.TypeBool
	case nuast.ExprList:
		return nuast.TypeList
	case nuast.ExprRecord:
		return nuast.TypeRecord
	case nuast.ExprClosure:
		return nuast.TypeClosure
	}
	return nuast.TypeAny
}

func (p *parser) parseDef() nuast.Expr {
	kw := p.advance()

	var name token
	switch p.cur().kind {
	case tokWord, tokString:
		name = p.advance()
	default:
		p.errorAt(p.cur().span, "expected command name after 'def'")
		return garbage(kw.span)
	}

	if !p.at(tokLBracket) {
		p.errorAt(p.cur().span, fmt.Sprintf("expected signature '[...]' for 'def %s'", name.text))
		return garbage(kw.span.Cover(name.span))
	}
	sig := p.parseSignature(name.text)

	// the command is visible inside its own body
	declID := p.ws.AddDecl(nuast.Decl{
		Name:      name.text,
		Signature: sig,
		Category:  nuast.CategoryCustom,
	})

	if !p.at(tokLBrace) {
		p.errorAt(p.cur().span, fmt.Sprintf("expected '{' to open the body of 'def %s'", name.text))
		return garbage(kw.span.Cover(sig.Span))
	}
	open := p.advance()
	body := p.parseBlock(tokRBrace, sig)
	end := open.span
	if p.at(tokRBrace) {
		end = p.advance().span
	}
	body.Span = open.span.Cover(end)

	return nuast.Expr{
		Kind: nuast.ExprDef,
		Span: kw.span.Cover(end),
		Def: &nuast.DefDecl{
			Decl:     declID,
			Name:     name.text,
			NameSpan: name.span,
			Body:     body.ID,
		},
	}
}

func (p *parser) parseSignature(name string) *nuast.Signature {
	open := p.advance() // [
	sig := &nuast.Signature{Name: name, Category: nuast.CategoryCustom, Span: open.span}

	for {
		for p.at(tokComma) || p.at(tokNewline) {
			p.advance()
		}
		if p.at(tokRBracket) {
			sig.Span = sig.Span.Cover(p.advance().span)
			return sig
		}
		if p.at(tokEOF) {
			p.errorAt(p.cur().span, closerMessage(tokRBracket))
			return sig
		}

		switch p.cur().kind {
		case tokEllipsis:
			p.advance()
			if !p.at(tokWord) {
				p.errorAt(p.cur().span, "expected rest parameter name after '...'")
				continue
			}
			t := p.advance()
			param := p.finishParam(t)
			sig.Rest = &param
		case tokLongFlag:
			sig.Named = append(sig.Named, p.parseSigFlag())
		case tokWord:
			t := p.advance()
			optional := strings.HasSuffix(t.text, "?")
			param := p.finishParam(t)
			if optional {
				sig.Optional = append(sig.Optional, param)
			} else {
				sig.Required = append(sig.Required, param)
			}
		default:
			p.errorAt(p.cur().span, fmt.Sprintf("unexpected token %q in signature", p.cur().text))
			p.advance()
		}
	}
}

func (p *parser) finishParam(t token) nuast.Param {
	name := strings.TrimSuffix(t.text, "?")
	param := nuast.Param{Name: name, Shape: nuast.ShapeAny, Span: t.span}

	if p.at(tokColon) {
		p.advance()
		if p.at(tokWord) {
			param.Shape = nuast.ParseShape(p.advance().text)
		} else {
			p.errorAt(p.cur().span, "expected type after ':'")
		}
	}
	if p.at(tokOperator) && p.cur().text == "=" {
		p.advance()
		def := p.parsePrimary()
		param.Default = &def
	}

	param.Var = p.ws.AddVariable(nuast.Variable{Name: name, DeclSpan: t.span, Ty: shapeToType(param.Shape)})
	return param
}

func shapeToType(s nuast.SyntaxShape) nuast.Type {
	switch s {
	case nuast.ShapeInt:
		return nuast.TypeInt
	case nuast.ShapeFloat:
		return nuast.TypeFloat
	case nuast.ShapeString:
		return nuast.TypeString
	case nuast.ShapeBool:
		return nuast.TypeBool
	case nuast.ShapeList:
		return nuast.TypeList
	case nuast.ShapeRecord:
		return nuast.TypeRecord
	case nuast.ShapeClosure:
		return nuast.TypeClosure
	case nuast.ShapeNothing:
		return nuast.TypeNothing
	}
	return nuast.TypeAny
}

func (p *parser) parseSigFlag() nuast.Flag {
	t := p.advance()
	flag := nuast.Flag{
		Long:  strings.TrimPrefix(t.text, "--"),
		Shape: nuast.ShapeNothing,
		Span:  t.span,
	}

	if p.at(tokLParen) && p.peek().kind == tokShortFlag {
		p.advance()
		short := p.advance()
		flag.Short = rune(short.text[1])
		if p.at(tokRParen) {
			p.advance()
		} else {
			p.errorAt(p.cur().span, "expected ')' after short flag")
		}
	}
	if p.at(tokColon) {
		p.advance()
		if p.at(tokWord) {
			flag.Shape = nuast.ParseShape(p.advance().text)
		} else {
			p.errorAt(p.cur().span, "expected type after ':'")
		}
	}
	if p.at(tokOperator) && p.cur().text == "=" {
		p.advance()
		def := p.parsePrimary()
		flag.Default = &def
	}

	varName := strings.ReplaceAll(flag.Long, "-", "_")
	flag.Var = p.ws.AddVariable(nuast.Variable{Name: varName, DeclSpan: t.span, Ty: shapeToType(flag.Shape)})
	return flag
}

// parseElement parses one pipeline element: a command call when it starts
// with a bare word, otherwise an expression.
func (p *parser) parseElement() nuast.Expr {
	if p.at(tokWord) && !isOperatorWord(p.cur().text) {
		return p.parseCall()
	}
	if p.at(tokCaret) {
		return p.parseExternal()
	}
	return p.parseExpr()
}

func isOperatorWord(s string) bool {
	switch s {
	case "and", "or", "not", "in", "not-in", "mod":
		return true
	}
	return false
}

// parseCall resolves a (possibly multi-word) command head and its
// arguments. Unknown heads are external calls, as in Nushell itself.
func (p *parser) parseCall() nuast.Expr {
	head := p.advance()
	name := head.text
	headSpan := head.span

	// greedy two-word match against the declaration table
	if p.at(tokWord) {
		joined := name + " " + p.cur().text
		if _, ok := p.ws.FindDecl(joined); ok {
			second := p.advance()
			name = joined
			headSpan = headSpan.Cover(second.span)
		}
	}

	declID, known := p.ws.FindDecl(name)
	if !known {
		return p.parseExternalTail(headSpan, name)
	}

	decl := p.ws.Decl(declID)
	call := &nuast.Call{Decl: declID, Head: headSpan}
	span := headSpan

	for p.startsArgument() {
		switch p.cur().kind {
		case tokLongFlag:
			t := p.advance()
			fa := nuast.FlagArg{Long: strings.TrimPrefix(t.text, "--"), Span: t.span}
			if f, ok := decl.Signature.FindFlag(fa.Long); ok && f.Shape != nuast.ShapeNothing && p.startsArgument() {
				v := p.parseExpr()
				fa.Value = &v
				span = span.Cover(v.Span)
			} else {
				span = span.Cover(t.span)
			}
			call.Flags = append(call.Flags, fa)
		case tokShortFlag:
			t := p.advance()
			long := strings.TrimPrefix(t.text, "-")
			if len(t.text) == 2 {
				for i := range decl.Signature.Named {
					f := &decl.Signature.Named[i]
					if f.Short != 0 && byte(f.Short) == t.text[1] {
						long = f.Long
						break
					}
				}
			}
			call.Flags = append(call.Flags, nuast.FlagArg{Long: long, Span: t.span})
			span = span.Cover(t.span)
		default:
			arg := p.parseExpr()
			call.Args = append(call.Args, arg)
			span = span.Cover(arg.Span)
		}
	}

	return nuast.Expr{Kind: nuast.ExprCall, Span: span, Call: call}
}

func (p *parser) parseExternal() nuast.Expr {
	caret := p.advance()
	if !p.at(tokWord) && !p.at(tokString) {
		p.errorAt(caret.span, "expected command name after '^'")
		return garbage(caret.span)
	}
	head := p.advance()
	return p.parseExternalTail(caret.span.Cover(head.span), head.text)
}

func (p *parser) parseExternalTail(headSpan source.Span, name string) nuast.Expr {
	ext := &nuast.ExternalCall{
		Head: nuast.Expr{Kind: nuast.ExprString, Span: headSpan, Str: name},
		Name: name,
	}
	span := headSpan
	for p.startsArgument() {
		var arg nuast.Expr
		switch p.cur().kind {
		case tokLongFlag, tokShortFlag:
			t := p.advance()
			arg = nuast.Expr{Kind: nuast.ExprString, Span: t.span, Str: t.text}
		default:
			arg = p.parseExpr()
		}
		ext.Args = append(ext.Args, arg)
		span = span.Cover(arg.Span)
	}
	return nuast.Expr{Kind: nuast.ExprExternalCall, Span: span, External: ext}
}

// startsArgument reports whether the current token can begin a call
// argument rather than terminate the call.
func (p *parser) startsArgument() bool {
	switch p.cur().kind {
	case tokEOF, tokNewline, tokPipe, tokSemicolon,
		tokRBrace, tokRParen, tokRBracket, tokComma:
		return false
	}
	return true
}

// parseExpr parses a primary followed by a flat chain of binary operators.
func (p *parser) parseExpr() nuast.Expr {
	left := p.parsePrimary()
	for {
		var op token
		switch {
		case p.at(tokOperator):
			op = p.advance()
		case p.at(tokWord) && isOperatorWord(p.cur().text):
			op = p.advance()
		default:
			return left
		}
		right := p.parsePrimary()
		left = nuast.Expr{
			Kind: nuast.ExprBinaryOp,
			Span: left.Span.Cover(right.Span),
			Binary: &nuast.BinaryOp{
				Op:     op.text,
				OpSpan: op.span,
				LHS:    left,
				RHS:    right,
			},
		}
	}
}

func (p *parser) parsePrimary() nuast.Expr {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		n, err := strconv.ParseInt(strings.ReplaceAll(t.text, "_", ""), 10, 64)
		if err != nil {
			p.errorAt(t.span, fmt.Sprintf("invalid integer literal %q", t.text))
			return garbage(t.span)
		}
		return nuast.Expr{Kind: nuast.ExprInt, Span: t.span, Int: n}

	case tokFloat:
		p.advance()
		f, err := strconv.ParseFloat(strings.ReplaceAll(t.text, "_", ""), 64)
		if err != nil {
			p.errorAt(t.span, fmt.Sprintf("invalid float literal %q", t.text))
			return garbage(t.span)
		}
		return nuast.Expr{Kind: nuast.ExprFloat, Span: t.span, Float: f}

	case tokString:
		p.advance()
		return nuast.Expr{Kind: nuast.ExprString, Span: t.span, Str: t.text}

	case tokWord:
		p.advance()
		switch t.text {
		case "true":
			return nuast.Expr{Kind: nuast.ExprBool, Span: t.span, Bool: true}
		case "false":
			return nuast.Expr{Kind: nuast.ExprBool, Span: t.span, Bool: false}
		}
		// bare words in argument position are strings
		return nuast.Expr{Kind: nuast.ExprString, Span: t.span, Str: t.text}

	case tokVar:
		p.advance()
		return p.varExpr(t)

	case tokLBracket:
		return p.parseList()

	case tokLParen:
		return p.parseSubexpression()

	case tokLBrace:
		return p.parseBraced()

	case tokCaret:
		return p.parseExternal()

	case tokBad:
		p.advance()
		msg := t.text
		if msg == "" || len(msg) == 1 {
			msg = fmt.Sprintf("unexpected character %q", t.text)
		}
		p.errorAt(t.span, msg)
		return garbage(t.span)
	}

	p.errorAt(t.span, fmt.Sprintf("expected expression, found %q", t.text))
	p.advance()
	return garbage(t.span)
}

// varExpr splits a $name.path token into a var reference plus cell path.
func (p *parser) varExpr(t token) nuast.Expr {
	body := strings.TrimPrefix(t.text, "$")
	parts := strings.Split(body, ".")

	nameLen := uint32(len(parts[0]) + 1) // $name
	varSpan := source.Span{File: t.span.File, Start: t.span.Start, End: t.span.Start + nameLen}
	id := p.lookupVar(parts[0], varSpan)
	head := nuast.Expr{Kind: nuast.ExprVar, Span: varSpan, Var: id}
	if len(parts) == 1 {
		return head
	}

	path := &nuast.CellPath{Head: head}
	off := varSpan.End
	for _, part := range parts[1:] {
		off++ // the dot
		end := off + uint32(len(part))
		member := nuast.PathMember{Name: part, Span: source.Span{File: t.span.File, Start: off, End: end}}
		if n, err := strconv.ParseInt(part, 10, 64); err == nil {
			member.Index = n
			member.IsInt = true
		}
		path.Tail = append(path.Tail, member)
		off = end
	}
	return nuast.Expr{Kind: nuast.ExprCellPath, Span: t.span, Path: path}
}

func (p *parser) parseList() nuast.Expr {
	open := p.advance()
	expr := nuast.Expr{Kind: nuast.ExprList, Span: open.span}
	for {
		for p.at(tokComma) || p.at(tokNewline) {
			p.advance()
		}
		if p.at(tokRBracket) {
			expr.Span = expr.Span.Cover(p.advance().span)
			return expr
		}
		if p.at(tokEOF) {
			p.errorAt(p.cur().span, closerMessage(tokRBracket))
			return expr
		}
		item := p.parseExpr()
		expr.Items = append(expr.Items, item)
		expr.Span = expr.Span.Cover(item.Span)
	}
}

func (p *parser) parseSubexpression() nuast.Expr {
	open := p.advance()
	block := p.parseBlock(tokRParen, nil)
	end := open.span
	if p.at(tokRParen) {
		end = p.advance().span
	}
	span := open.span.Cover(end)
	block.Span = span
	return nuast.Expr{Kind: nuast.ExprSubexpression, Span: span, Block: block.ID}
}

// parseBraced disambiguates record literals, closures, and plain blocks.
func (p *parser) parseBraced() nuast.Expr {
	open := p.advance()

	// {|args| ...} is a closure with parameters
	if p.at(tokPipe) {
		sig := p.parseClosureParams()
		block := p.parseBlock(tokRBrace, sig)
		end := open.span
		if p.at(tokRBrace) {
			end = p.advance().span
		}
		span := open.span.Cover(end)
		block.Span = span
		return nuast.Expr{Kind: nuast.ExprClosure, Span: span, Block: block.ID}
	}

	// { key: value, ... } is a record
	if (p.cur().kind == tokWord || p.cur().kind == tokString) && p.peek().kind == tokColon {
		return p.parseRecord(open)
	}

	block := p.parseBlock(tokRBrace, nil)
	end := open.span
	if p.at(tokRBrace) {
		end = p.advance().span
	}
	span := open.span.Cover(end)
	block.Span = span
	return nuast.Expr{Kind: nuast.ExprBlock, Span: span, Block: block.ID}
}

func (p *parser) parseClosureParams() *nuast.Signature {
	p.advance() // opening |
	sig := &nuast.Signature{Category: nuast.CategoryCustom}
	for {
		switch p.cur().kind {
		case tokPipe:
			p.advance()
			return sig
		case tokEOF:
			p.errorAt(p.cur().span, "unclosed closure parameters (expected '|')")
			return sig
		case tokComma:
			p.advance()
		case tokWord:
			t := p.advance()
			param := p.finishParam(t)
			sig.Required = append(sig.Required, param)
		default:
			p.errorAt(p.cur().span, fmt.Sprintf("unexpected token %q in closure parameters", p.cur().text))
			p.advance()
		}
	}
}

func (p *parser) parseRecord(open token) nuast.Expr {
	expr := nuast.Expr{Kind: nuast.ExprRecord, Span: open.span}
	for {
		for p.at(tokComma) || p.at(tokNewline) {
			p.advance()
		}
		if p.at(tokRBrace) {
			expr.Span = expr.Span.Cover(p.advance().span)
			return expr
		}
		if p.at(tokEOF) {
			p.errorAt(p.cur().span, closerMessage(tokRBrace))
			return expr
		}
		if p.cur().kind != tokWord && p.cur().kind != tokString {
			p.errorAt(p.cur().span, fmt.Sprintf("expected record key, found %q", p.cur().text))
			p.advance()
			continue
		}
		key := p.advance()
		if !p.at(tokColon) {
			p.errorAt(p.cur().span, fmt.Sprintf("expected ':' after record key %q", key.text))
			continue
		}
		p.advance()
		value := p.parseExpr()
		expr.Fields = append(expr.Fields, nuast.RecordField{
			Key:     key.text,
			KeySpan: key.span,
			Value:   value,
		})
		expr.Span = expr.Span.Cover(value.Span)
	}
}

func garbage(span source.Span) nuast.Expr {
	return nuast.Expr{Kind: nuast.ExprGarbage, Span: span}
}
