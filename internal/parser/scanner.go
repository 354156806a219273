// Package parser turns Nushell source into the nuast model. It is the
// concrete half of the parse bridge: parsing never fails, problems become
// nu_parse_error violations on a partial AST.
package parser

import (
	"fmt"

	"fortio.org/safecast"

	"nulint/internal/source"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNewline
	tokPipe
	tokSemicolon
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokColon
	tokEllipsis
	tokInt
	tokFloat
	tokString
	tokWord
	tokVar       // $name or $name.path.0
	tokLongFlag  // --name
	tokShortFlag // -n
	tokCaret     // ^ introducing an explicit external call
	tokOperator  // == != <= >= < > = += -= *= /= ++ + - * /
	tokAt        // @ attribute marker at line start
	tokBad
)

type token struct {
	kind tokenKind
	span source.Span
	text string
}

type scanner struct {
	src  []byte
	file source.FileID
	pos  uint32
}

func newScanner(src []byte, file source.FileID) *scanner {
	return &scanner{src: src, file: file}
}

func (s *scanner) len() uint32 {
	n, err := safecast.Conv[uint32](len(s.src))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	return n
}

func (s *scanner) peekByte() byte {
	if s.pos >= s.len() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) byteAt(off uint32) byte {
	if off >= s.len() {
		return 0
	}
	return s.src[off]
}

func isWordStart(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b == '_', b == '.', b == '/', b == '~', b == '*', b == '?':
		return true
	case b >= 0x80: // multi-byte rune, keep inside bare words
		return true
	}
	return false
}

func isWordPart(b byte) bool {
	if isWordStart(b) {
		return true
	}
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == '-', b == '+', b == '!':
		return true
	}
	return false
}

func isIdentPart(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '-':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// next produces the next token, skipping spaces and comments. Newlines are
// tokens: they terminate pipelines.
func (s *scanner) next() token {
	for s.pos < s.len() {
		b := s.src[s.pos]
		if b == ' ' || b == '\t' || b == '\r' {
			s.pos++
			continue
		}
		if b == '#' {
			for s.pos < s.len() && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		break
	}

	start := s.pos
	if s.pos >= s.len() {
		return token{kind: tokEOF, span: source.Span{File: s.file, Start: start, End: start}}
	}

	b := s.src[s.pos]
	switch {
	case b == '\n':
		s.pos++
		return s.tok(tokNewline, start)
	case b == '|':
		s.pos++
		return s.tok(tokPipe, start)
	case b == ';':
		s.pos++
		return s.tok(tokSemicolon, start)
	case b == '{':
		s.pos++
		return s.tok(tokLBrace, start)
	case b == '}':
		s.pos++
		return s.tok(tokRBrace, start)
	case b == '(':
		s.pos++
		return s.tok(tokLParen, start)
	case b == ')':
		s.pos++
		return s.tok(tokRParen, start)
	case b == '[':
		s.pos++
		return s.tok(tokLBracket, start)
	case b == ']':
		s.pos++
		return s.tok(tokRBracket, start)
	case b == ',':
		s.pos++
		return s.tok(tokComma, start)
	case b == ':':
		s.pos++
		return s.tok(tokColon, start)
	case b == '^':
		s.pos++
		return s.tok(tokCaret, start)
	case b == '@':
		s.pos++
		return s.tok(tokAt, start)
	case b == '"' || b == '\'':
		return s.scanString(start, b)
	case b == '$':
		return s.scanVar(start)
	case b == '-':
		return s.scanDash(start)
	case isDigit(b):
		return s.scanNumber(start)
	case b == '.' && s.byteAt(s.pos+1) == '.' && s.byteAt(s.pos+2) == '.':
		s.pos += 3
		return s.tok(tokEllipsis, start)
	case b == '=' || b == '!' || b == '<' || b == '>' || b == '+':
		return s.scanOperator(start)
	case b == '*' || b == '/':
		// operator only when it stands alone; otherwise a glob or path
		n := s.byteAt(s.pos + 1)
		if n == '=' || n == ' ' || n == '\t' || n == '\n' || n == 0 {
			return s.scanOperator(start)
		}
		return s.scanWord(start)
	case isWordStart(b):
		return s.scanWord(start)
	}

	s.pos++
	return s.tok(tokBad, start)
}

func (s *scanner) tok(kind tokenKind, start uint32) token {
	span := source.Span{File: s.file, Start: start, End: s.pos}
	return token{kind: kind, span: span, text: string(s.src[start:s.pos])}
}

func (s *scanner) scanString(start uint32, quote byte) token {
	s.pos++ // opening quote
	for s.pos < s.len() {
		b := s.src[s.pos]
		if b == '\\' && quote == '"' && s.pos+1 < s.len() {
			s.pos += 2
			continue
		}
		if b == quote {
			s.pos++
			t := s.tok(tokString, start)
			t.text = unquote(t.text, quote)
			return t
		}
		if b == '\n' {
			break
		}
		s.pos++
	}
	t := s.tok(tokBad, start)
	t.text = "unclosed string literal"
	return t
}

func unquote(raw string, quote byte) string {
	if len(raw) < 2 {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	if quote == '\'' {
		return inner
	}
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, inner[i])
			}
			continue
		}
		out = append(out, inner[i])
	}
	return string(out)
}

func (s *scanner) scanVar(start uint32) token {
	s.pos++ // $
	for s.pos < s.len() && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	// cell path tail: .field or .0, any depth
	for s.pos+1 < s.len() && s.src[s.pos] == '.' &&
		(isIdentPart(s.src[s.pos+1]) || isDigit(s.src[s.pos+1])) {
		s.pos++
		for s.pos < s.len() && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
	}
	return s.tok(tokVar, start)
}

func (s *scanner) scanDash(start uint32) token {
	if s.byteAt(s.pos+1) == '-' {
		if isIdentPart(s.byteAt(s.pos + 2)) {
			s.pos += 2
			for s.pos < s.len() && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			return s.tok(tokLongFlag, start)
		}
	}
	if isDigit(s.byteAt(s.pos + 1)) {
		s.pos++
		return s.scanNumberTail(start)
	}
	if isIdentPart(s.byteAt(s.pos + 1)) {
		s.pos++
		for s.pos < s.len() && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return s.tok(tokShortFlag, start)
	}
	// -= or bare minus
	s.pos++
	if s.peekByte() == '=' {
		s.pos++
	}
	return s.tok(tokOperator, start)
}

func (s *scanner) scanNumber(start uint32) token {
	return s.scanNumberTail(start)
}

func (s *scanner) scanNumberTail(start uint32) token {
	isFloat := false
	for s.pos < s.len() {
		b := s.src[s.pos]
		if isDigit(b) || b == '_' {
			s.pos++
			continue
		}
		if b == '.' && !isFloat && isDigit(s.byteAt(s.pos+1)) {
			isFloat = true
			s.pos++
			continue
		}
		break
	}
	if isFloat {
		return s.tok(tokFloat, start)
	}
	return s.tok(tokInt, start)
}

func (s *scanner) scanOperator(start uint32) token {
	b := s.src[s.pos]
	s.pos++
	if s.peekByte() == '=' {
		s.pos++
	} else if b == '+' && s.peekByte() == '+' {
		s.pos++
		if s.peekByte() == '=' {
			s.pos++
		}
	}
	return s.tok(tokOperator, start)
}

func (s *scanner) scanWord(start uint32) token {
	for s.pos < s.len() {
		b := s.src[s.pos]
		if isWordPart(b) {
			s.pos++
			continue
		}
		// keep URL schemes in one word
		if b == ':' && s.byteAt(s.pos+1) == '/' {
			s.pos++
			continue
		}
		break
	}
	return s.tok(tokWord, start)
}
