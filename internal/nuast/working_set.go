package nuast

import (
	"fmt"

	"fortio.org/safecast"

	"nulint/internal/source"
)

// Type is the shallow inferred type the parser records for variables.
// A deliberately thin layer: enough for heuristic rules, no real inference.
type Type uint8

const (
	TypeAny Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeList
	TypeRecord
	TypeClosure
	TypeNothing
)

func (t Type) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeList:
		return "list"
	case TypeRecord:
		return "record"
	case TypeClosure:
		return "closure"
	case TypeNothing:
		return "nothing"
	}
	return "any"
}

// Decl is a command declaration: builtin or user-defined.
type Decl struct {
	Name      string
	Signature *Signature
	Category  Category
	Builtin   bool
}

// Variable is a variable record minted during parsing.
type Variable struct {
	Name     string
	DeclSpan source.Span
	Ty       Type
	Mutable  bool
	Const    bool
}

// EngineState holds the process-wide builtin command table. It is built
// once at startup, read-only afterwards, and safe to share across threads.
type EngineState struct {
	decls  []Decl
	byName map[string]DeclID
}

// NewEngineState builds the engine state from the builtin command table.
func NewEngineState() *EngineState {
	st := &EngineState{
		decls:  make([]Decl, 0, len(builtinCommands)),
		byName: make(map[string]DeclID, len(builtinCommands)),
	}
	for _, bc := range builtinCommands {
		id := DeclID(len(st.decls))
		st.decls = append(st.decls, Decl{
			Name:      bc.name,
			Signature: bc.signature(),
			Category:  bc.category,
			Builtin:   true,
		})
		st.byName[bc.name] = id
	}
	return st
}

// FindBuiltin resolves a builtin command name.
func (st *EngineState) FindBuiltin(name string) (DeclID, bool) {
	id, ok := st.byName[name]
	return id, ok
}

// NewWorkingSet derives a fresh mutable working set. Working sets are
// per-lint and per-thread; parallel workers each clone their own.
func (st *EngineState) NewWorkingSet() *WorkingSet {
	ws := &WorkingSet{
		decls:  make([]Decl, len(st.decls)),
		byName: make(map[string]DeclID, len(st.byName)),
		vars:   make([]Variable, 0, 16),
		blocks: make([]*Block, 0, 4),
	}
	copy(ws.decls, st.decls)
	for name, id := range st.byName {
		ws.byName[name] = id
	}
	return ws
}

// WorkingSet is the per-parse lookup table the parser populates and the
// engine queries read-only. It resolves decl, var, and block identifiers.
type WorkingSet struct {
	decls  []Decl
	byName map[string]DeclID
	vars   []Variable
	blocks []*Block
}

// Decl resolves a declaration id.
func (ws *WorkingSet) Decl(id DeclID) *Decl {
	if int(id) >= len(ws.decls) {
		return nil
	}
	return &ws.decls[id]
}

// Variable resolves a variable id.
func (ws *WorkingSet) Variable(id VarID) *Variable {
	if int(id) >= len(ws.vars) {
		return nil
	}
	return &ws.vars[id]
}

// Block resolves a block id.
func (ws *WorkingSet) Block(id BlockID) *Block {
	if int(id) >= len(ws.blocks) {
		return nil
	}
	return ws.blocks[id]
}

// FindDecl resolves a command by canonical name.
func (ws *WorkingSet) FindDecl(name string) (DeclID, bool) {
	id, ok := ws.byName[name]
	return id, ok
}

// NumVars reports how many variables were minted.
func (ws *WorkingSet) NumVars() int {
	return len(ws.vars)
}

// AddDecl mints a declaration id (parser use).
func (ws *WorkingSet) AddDecl(d Decl) DeclID {
	n, err := safecast.Conv[uint32](len(ws.decls))
	if err != nil {
		panic(fmt.Errorf("decl count overflow: %w", err))
	}
	id := DeclID(n)
	ws.decls = append(ws.decls, d)
	ws.byName[d.Name] = id
	return id
}

// AddVariable mints a variable id (parser use).
func (ws *WorkingSet) AddVariable(v Variable) VarID {
	n, err := safecast.Conv[uint32](len(ws.vars))
	if err != nil {
		panic(fmt.Errorf("var count overflow: %w", err))
	}
	id := VarID(n)
	ws.vars = append(ws.vars, v)
	return id
}

// AddBlock mints a block id and assigns it to the block (parser use).
func (ws *WorkingSet) AddBlock(b *Block) BlockID {
	n, err := safecast.Conv[uint32](len(ws.blocks))
	if err != nil {
		panic(fmt.Errorf("block count overflow: %w", err))
	}
	id := BlockID(n)
	b.ID = id
	ws.blocks = append(ws.blocks, b)
	return id
}
