package lint

import (
	"fmt"

	"nulint/internal/diag"
	"nulint/internal/nuast"
	"nulint/internal/parser"
	"nulint/internal/source"
)

// InternalRuleErrorID marks a rule that panicked. The failing rule is
// isolated; the rest of the registry still runs on the file.
const InternalRuleErrorID = "internal_rule_error"

// State is the process-wide lint state: the builtin declaration table, the
// rule registry, and the effective configuration. It is read-only after
// construction and safe to share across workers; each file lint clones its
// own working set from it.
type State struct {
	Engine *nuast.EngineState
	Rules  []Rule
	Config *Config

	known map[string]bool
}

// NewState builds the shared state. The rule order is the registry order
// and is observable: the LSP fix-all path resolves edit conflicts in favor
// of earlier rules.
func NewState(rules []Rule, cfg *Config) *State {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.Meta().ID] = true
	}
	return &State{
		Engine: nuast.NewEngineState(),
		Rules:  rules,
		Config: cfg,
		known:  known,
	}
}

// KnownRule reports whether the id names a registered rule.
func (s *State) KnownRule(id string) bool { return s.known[id] }

// Lookup finds a registered rule by id.
func (s *State) Lookup(id string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Meta().ID == id {
			return r, true
		}
	}
	return nil, false
}

// LintString lints in-memory source registered under the given path and
// returns the sorted violations.
func (s *State) LintString(fs *source.FileSet, path string, src []byte) []diag.Violation {
	id := fs.AddVirtual(path, src)
	return s.lintFile(fs, fs.Get(id))
}

// LintFile reads and lints one file. IO failures surface to the caller;
// everything past the read is diagnostics, never an error.
func (s *State) LintFile(fs *source.FileSet, path string) ([]diag.Violation, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return s.lintFile(fs, fs.Get(id)), nil
}

// LintLoaded lints a file already present in the set. Workers that preload
// their files use it to avoid re-reading from disk.
func (s *State) LintLoaded(fs *source.FileSet, file *source.File) []diag.Violation {
	return s.lintFile(fs, file)
}

func (s *State) lintFile(fs *source.FileSet, file *source.File) []diag.Violation {
	ws := s.Engine.NewWorkingSet()
	root, parseViolations := parser.Parse(ws, file)

	ctx := &Context{Root: root, WS: ws, Src: fs, File: file}
	ignore, ignoreWarnings := BuildIgnoreIndex(file, s.KnownRule)

	bag := diag.NewBag()
	floor := s.Config.Floor()

	for _, v := range parseViolations {
		bag.Add(v)
	}

	for _, rule := range s.Rules {
		meta := rule.Meta()
		level := s.Config.LevelFor(meta.ID, meta.Level)
		if level == diag.LevelOff {
			continue
		}
		for _, v := range s.runRule(rule, ctx) {
			v.Level = effectiveLevel(v, meta, level)
			if v.Level < floor {
				continue
			}
			if v.RuleID == meta.ID && ignore.Suppressed(file, &v) {
				continue
			}
			bag.Add(v)
		}
	}

	for _, v := range ignoreWarnings {
		if v.Level >= floor {
			bag.Add(v)
		}
	}

	bag.Sort(fs)
	return bag.Items()
}

// effectiveLevel applies the config override to the rule's own violations;
// synthetic ids (a panicking rule) keep their level.
func effectiveLevel(v diag.Violation, meta Meta, level diag.LintLevel) diag.LintLevel {
	if v.RuleID == meta.ID {
		return level
	}
	return v.Level
}

// runRule isolates rule bugs: a panic becomes one internal_rule_error
// violation and the remaining rules still run.
func (s *State) runRule(rule Rule, ctx *Context) (out []diag.Violation) {
	defer func() {
		if r := recover(); r != nil {
			span := source.Span{File: ctx.File.ID}
			out = []diag.Violation{diag.New(
				InternalRuleErrorID, diag.LevelError, span,
				fmt.Sprintf("rule %s failed: %v", rule.Meta().ID, r))}
		}
	}()
	return rule.Detect(ctx)
}
