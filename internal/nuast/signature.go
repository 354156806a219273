package nuast

import (
	"nulint/internal/source"
)

// SyntaxShape is the syntactic type of a parameter.
type SyntaxShape uint8

const (
	ShapeAny SyntaxShape = iota
	ShapeInt
	ShapeFloat
	ShapeString
	ShapeBool
	ShapeList
	ShapeRecord
	ShapeClosure
	ShapeNothing
)

func (s SyntaxShape) String() string {
	switch s {
	case ShapeAny:
		return "any"
	case ShapeInt:
		return "int"
	case ShapeFloat:
		return "float"
	case ShapeString:
		return "string"
	case ShapeBool:
		return "bool"
	case ShapeList:
		return "list"
	case ShapeRecord:
		return "record"
	case ShapeClosure:
		return "closure"
	case ShapeNothing:
		return "nothing"
	}
	return "any"
}

// ParseShape maps a type annotation to its shape; unknown names are Any.
func ParseShape(name string) SyntaxShape {
	switch name {
	case "int":
		return ShapeInt
	case "float", "number":
		return ShapeFloat
	case "string":
		return ShapeString
	case "bool":
		return ShapeBool
	case "list":
		return ShapeList
	case "record", "table":
		return ShapeRecord
	case "closure", "block":
		return ShapeClosure
	case "nothing", "null":
		return ShapeNothing
	}
	return ShapeAny
}

// Param is a positional parameter of a signature.
type Param struct {
	Name    string
	Shape   SyntaxShape
	Var     VarID
	Span    source.Span
	Default *Expr
}

// Flag is a named flag of a signature.
type Flag struct {
	Long    string
	Short   rune        // 0 when absent
	Shape   SyntaxShape // ShapeNothing for switches
	Var     VarID
	Span    source.Span
	Default *Expr
}

// Signature is the parameter list of a callable.
type Signature struct {
	Name     string
	Span     source.Span // span of the bracketed parameter list, if written
	Required []Param
	Optional []Param
	Rest     *Param
	Named    []Flag
	Category Category
}

// FindFlag returns the flag with the given long name.
func (s *Signature) FindFlag(long string) (*Flag, bool) {
	for i := range s.Named {
		if s.Named[i].Long == long {
			return &s.Named[i], true
		}
	}
	return nil, false
}

// Positional returns required then optional parameters in order.
func (s *Signature) Positional() []Param {
	out := make([]Param, 0, len(s.Required)+len(s.Optional))
	out = append(out, s.Required...)
	out = append(out, s.Optional...)
	return out
}
