package nuast

// Category groups builtin commands the way Nushell's standard library
// does. The engine treats it as data: rules consult it to decide whether
// an external call shadows a builtin or whether a command has side effects.
type Category uint8

const (
	CategoryDefault Category = iota
	CategoryCore
	CategoryFilesystem
	CategoryNetwork
	CategorySystem
	CategoryStrings
	CategoryFilters
	CategoryPlatform
	CategoryViewers
	CategoryCustom
)

func (c Category) String() string {
	switch c {
	case CategoryCore:
		return "core"
	case CategoryFilesystem:
		return "filesystem"
	case CategoryNetwork:
		return "network"
	case CategorySystem:
		return "system"
	case CategoryStrings:
		return "strings"
	case CategoryFilters:
		return "filters"
	case CategoryPlatform:
		return "platform"
	case CategoryViewers:
		return "viewers"
	case CategoryCustom:
		return "custom"
	}
	return "default"
}

// HasSideEffects reports whether commands in the category touch state
// outside the pipeline (the heuristic a few inference rules rely on).
func (c Category) HasSideEffects() bool {
	switch c {
	case CategoryFilesystem, CategoryNetwork, CategorySystem:
		return true
	}
	return false
}

type builtinFlag struct {
	long  string
	short rune
	shape SyntaxShape
}

type builtinCommand struct {
	name     string
	category Category
	required []string
	optional []string
	rest     string
	flags    []builtinFlag
}

func (bc builtinCommand) signature() *Signature {
	sig := &Signature{Name: bc.name, Category: bc.category}
	for _, p := range bc.required {
		sig.Required = append(sig.Required, Param{Name: p, Shape: ShapeAny})
	}
	for _, p := range bc.optional {
		sig.Optional = append(sig.Optional, Param{Name: p, Shape: ShapeAny})
	}
	if bc.rest != "" {
		sig.Rest = &Param{Name: bc.rest, Shape: ShapeAny}
	}
	for _, f := range bc.flags {
		sig.Named = append(sig.Named, Flag{Long: f.long, Short: f.short, Shape: f.shape})
	}
	return sig
}

// builtinCommands is the subset of Nushell's standard commands the parser
// resolves and the rules reason about. The category assignments mirror
// Nushell's own; the table is data and extends without code changes.
var builtinCommands = []builtinCommand{
	// core
	{name: "echo", category: CategoryCore, rest: "values"},
	{name: "print", category: CategoryCore, rest: "values", flags: []builtinFlag{
		{long: "no-newline", short: 'n', shape: ShapeNothing},
		{long: "stderr", short: 'e', shape: ShapeNothing},
	}},
	{name: "describe", category: CategoryCore},
	{name: "ignore", category: CategoryCore},
	{name: "do", category: CategoryCore, required: []string{"closure"}, rest: "args"},
	{name: "if", category: CategoryCore, required: []string{"condition", "then"}, optional: []string{"else"}},
	{name: "for", category: CategoryCore},
	{name: "while", category: CategoryCore},
	{name: "error make", category: CategoryCore, required: []string{"error"}},

	// filesystem
	{name: "ls", category: CategoryFilesystem, optional: []string{"pattern"}, flags: []builtinFlag{
		{long: "all", short: 'a', shape: ShapeNothing},
		{long: "long", short: 'l', shape: ShapeNothing},
		{long: "short-names", short: 's', shape: ShapeNothing},
	}},
	{name: "open", category: CategoryFilesystem, required: []string{"path"}, flags: []builtinFlag{
		{long: "raw", short: 'r', shape: ShapeNothing},
	}},
	{name: "save", category: CategoryFilesystem, required: []string{"path"}, flags: []builtinFlag{
		{long: "force", short: 'f', shape: ShapeNothing},
		{long: "append", short: 'a', shape: ShapeNothing},
	}},
	{name: "rm", category: CategoryFilesystem, rest: "paths", flags: []builtinFlag{
		{long: "recursive", short: 'r', shape: ShapeNothing},
		{long: "force", short: 'f', shape: ShapeNothing},
	}},
	{name: "cp", category: CategoryFilesystem, required: []string{"source", "destination"}},
	{name: "mv", category: CategoryFilesystem, required: []string{"source", "destination"}},
	{name: "mkdir", category: CategoryFilesystem, rest: "dirs"},
	{name: "cd", category: CategoryFilesystem, optional: []string{"path"}},
	{name: "glob", category: CategoryFilesystem, required: []string{"pattern"}},

	// network
	{name: "http get", category: CategoryNetwork, required: []string{"url"}},
	{name: "http post", category: CategoryNetwork, required: []string{"url", "data"}},
	{name: "url parse", category: CategoryNetwork},

	// system
	{name: "ps", category: CategorySystem, flags: []builtinFlag{
		{long: "long", short: 'l', shape: ShapeNothing},
	}},
	{name: "sys", category: CategorySystem},
	{name: "which", category: CategorySystem, rest: "commands"},
	{name: "exec", category: CategorySystem, required: []string{"command"}, rest: "args"},

	// strings
	{name: "split row", category: CategoryStrings, required: []string{"separator"}},
	{name: "split column", category: CategoryStrings, required: []string{"separator"}},
	{name: "str trim", category: CategoryStrings},
	{name: "str join", category: CategoryStrings, optional: []string{"separator"}},
	{name: "str length", category: CategoryStrings},
	{name: "str contains", category: CategoryStrings, required: []string{"string"}},
	{name: "str replace", category: CategoryStrings, required: []string{"find", "replace"}, flags: []builtinFlag{
		{long: "all", short: 'a', shape: ShapeNothing},
	}},
	{name: "lines", category: CategoryStrings},

	// filters
	{name: "each", category: CategoryFilters, required: []string{"closure"}, flags: []builtinFlag{
		{long: "keep-empty", short: 'k', shape: ShapeNothing},
	}},
	{name: "where", category: CategoryFilters, required: []string{"condition"}},
	{name: "filter", category: CategoryFilters, required: []string{"closure"}},
	{name: "length", category: CategoryFilters},
	{name: "is-empty", category: CategoryFilters},
	{name: "first", category: CategoryFilters, optional: []string{"count"}},
	{name: "last", category: CategoryFilters, optional: []string{"count"}},
	{name: "get", category: CategoryFilters, required: []string{"path"}},
	{name: "select", category: CategoryFilters, rest: "columns"},
	{name: "reject", category: CategoryFilters, rest: "columns"},
	{name: "sort-by", category: CategoryFilters, rest: "columns", flags: []builtinFlag{
		{long: "reverse", short: 'r', shape: ShapeNothing},
	}},
	{name: "append", category: CategoryFilters, required: []string{"row"}},
	{name: "reverse", category: CategoryFilters},
	{name: "uniq", category: CategoryFilters},
	{name: "flatten", category: CategoryFilters},
	{name: "reduce", category: CategoryFilters, required: []string{"closure"}, flags: []builtinFlag{
		{long: "fold", short: 'f', shape: ShapeAny},
	}},

	// viewers
	{name: "table", category: CategoryViewers},
	{name: "to json", category: CategoryViewers, flags: []builtinFlag{
		{long: "indent", short: 'i', shape: ShapeInt},
	}},
	{name: "from json", category: CategoryViewers},
}

// externalEquivalents maps external command names onto the builtin that
// replaces them. Consulted by the prefer_builtin rule.
var externalEquivalents = map[string]string{
	"ls":    "ls",
	"cat":   "open",
	"rm":    "rm",
	"cp":    "cp",
	"mv":    "mv",
	"curl":  "http get",
	"wget":  "http get",
	"ps":    "ps",
	"which": "which",
	"mkdir": "mkdir",
	"sort":  "sort-by",
	"uniq":  "uniq",
	"wc":    "length",
	"head":  "first",
	"tail":  "last",
}

// BuiltinEquivalent returns the builtin command replacing the named
// external tool, if one exists.
func BuiltinEquivalent(external string) (string, bool) {
	b, ok := externalEquivalents[external]
	return b, ok
}
