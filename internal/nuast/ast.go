// Package nuast models the parsed form of a Nushell script: a closed sum
// of expression kinds, pipelines, blocks, and the working set that resolves
// declaration, variable, and block identifiers. The lint engine consumes
// this package through the parse bridge and never mutates it.
package nuast

import (
	"nulint/internal/source"
)

type (
	// DeclID resolves to a command declaration in the working set.
	DeclID uint32
	// VarID resolves to a variable record in the working set.
	VarID uint32
	// BlockID resolves to a block body in the working set.
	BlockID uint32
)

// ExprKind enumerates the closed sum of expression variants.
type ExprKind uint8

const (
	ExprGarbage ExprKind = iota
	ExprCall
	ExprExternalCall
	ExprVar
	ExprString
	ExprInt
	ExprFloat
	ExprBool
	ExprList
	ExprRecord
	ExprBlock
	ExprClosure
	ExprSubexpression
	ExprBinaryOp
	ExprCellPath
	ExprLet
	ExprDef
)

func (k ExprKind) String() string {
	switch k {
	case ExprGarbage:
		return "garbage"
	case ExprCall:
		return "call"
	case ExprExternalCall:
		return "external-call"
	case ExprVar:
		return "var"
	case ExprString:
		return "string"
	case ExprInt:
		return "int"
	case ExprFloat:
		return "float"
	case ExprBool:
		return "bool"
	case ExprList:
		return "list"
	case ExprRecord:
		return "record"
	case ExprBlock:
		return "block"
	case ExprClosure:
		return "closure"
	case ExprSubexpression:
		return "subexpression"
	case ExprBinaryOp:
		return "binary-op"
	case ExprCellPath:
		return "cell-path"
	case ExprLet:
		return "let"
	case ExprDef:
		return "def"
	}
	return "unknown"
}

// Expr is a tagged variant. Only the payload matching Kind is set.
type Expr struct {
	Kind ExprKind
	Span source.Span

	Call     *Call         // ExprCall
	External *ExternalCall // ExprExternalCall
	Var      VarID         // ExprVar
	Str      string        // ExprString
	Int      int64         // ExprInt
	Float    float64       // ExprFloat
	Bool     bool          // ExprBool
	Items    []Expr        // ExprList
	Fields   []RecordField // ExprRecord
	Block    BlockID       // ExprBlock, ExprClosure, ExprSubexpression
	Binary   *BinaryOp     // ExprBinaryOp
	Path     *CellPath     // ExprCellPath
	Let      *LetDecl      // ExprLet
	Def      *DefDecl      // ExprDef
}

// Call is an invocation of a declared command.
type Call struct {
	Decl  DeclID
	Head  source.Span // span of the command name
	Args  []Expr      // positional arguments
	Flags []FlagArg   // named arguments
}

// FlagArg is a named flag passed at a call site.
type FlagArg struct {
	Long  string
	Span  source.Span // span of the --flag token
	Value *Expr       // nil for switch flags
}

// HasFlag reports whether the call passes the named long flag.
func (c *Call) HasFlag(long string) bool {
	for i := range c.Flags {
		if c.Flags[i].Long == long {
			return true
		}
	}
	return false
}

// ExternalCall spawns a process: the head names the command, the args are
// passed through verbatim.
type ExternalCall struct {
	Head Expr // usually ExprString; span includes a leading ^ when written
	Name string
	Args []Expr
}

// RecordField is one key/value entry of a record literal.
type RecordField struct {
	Key     string
	KeySpan source.Span
	Value   Expr
}

// BinaryOp covers comparisons, arithmetic, and assignment operators.
type BinaryOp struct {
	Op     string
	OpSpan source.Span
	LHS    Expr
	RHS    Expr
}

// IsAssignment reports whether the operator writes to its left-hand side.
func (b *BinaryOp) IsAssignment() bool {
	switch b.Op {
	case "=", "+=", "-=", "*=", "/=", "++=":
		return true
	}
	return false
}

// PathMember is one step of a cell path: a field name or a list index.
type PathMember struct {
	Name  string
	Index int64
	IsInt bool
	Span  source.Span
}

// CellPath is a chain of field/index accesses on a head expression.
type CellPath struct {
	Head Expr
	Tail []PathMember
}

// LetDecl is a let/mut/const binding.
type LetDecl struct {
	Var      VarID
	Name     string
	NameSpan source.Span
	Keyword  string // "let", "mut", or "const"
	KwSpan   source.Span
	Value    Expr
}

// DefDecl is a custom command definition.
type DefDecl struct {
	Decl     DeclID
	Name     string
	NameSpan source.Span
	Body     BlockID
}

// Pipeline is a sequence of expressions whose outputs feed left to right.
type Pipeline struct {
	Elements []Expr
	Span     source.Span
}

// Block is a braced sequence of pipelines parameterized by a signature.
// The top-level program is a block with an empty signature.
type Block struct {
	ID        BlockID
	Signature *Signature
	Pipelines []Pipeline
	Span      source.Span
}
