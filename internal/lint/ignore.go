package lint

import (
	"fmt"
	"strings"

	"nulint/internal/diag"
	"nulint/internal/source"
)

// UnknownIgnoreRuleID is emitted when a lint-ignore directive names a rule
// id the registry does not know.
const UnknownIgnoreRuleID = "unknown_ignore_rule"

const ignoreMarker = "lint-ignore:"

// IgnoreIndex maps zero-based line numbers to the rule ids suppressed on
// that line.
type IgnoreIndex struct {
	byLine map[uint32]map[string]struct{}
}

// pendingIgnore tracks a directive waiting for the line it applies to.
type pendingIgnore struct {
	id   string
	span source.Span
}

// BuildIgnoreIndex scans the file for lint-ignore directives in one pass.
// Directives bind to the next non-empty line that is neither a comment nor
// an @-attribute; stacked directives accumulate. Tokens naming unknown
// rules come back as warnings at the directive's span.
func BuildIgnoreIndex(file *source.File, known func(string) bool) (*IgnoreIndex, []diag.Violation) {
	ix := &IgnoreIndex{byLine: make(map[uint32]map[string]struct{})}
	var warnings []diag.Violation
	var pending []pendingIgnore

	for line := uint32(0); line < uint32(file.LineCount()); line++ {
		raw := file.Line(line)
		trimmed := strings.TrimSpace(raw)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "@"):
			continue
		case strings.HasPrefix(trimmed, "#"):
			content := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			if !strings.HasPrefix(content, ignoreMarker) {
				continue
			}
			pending = append(pending, parseDirective(file, line, raw, content)...)
		default:
			// a trailing `# lint-ignore:` suppresses its own line
			if idx := commentStart(raw); idx >= 0 {
				content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw[idx:]), "#"))
				if strings.HasPrefix(content, ignoreMarker) {
					pending = append(pending, parseDirective(file, line, raw, content)...)
				}
			}
			for _, p := range pending {
				if !known(p.id) {
					warnings = append(warnings, diag.New(
						UnknownIgnoreRuleID, diag.LevelWarning, p.span,
						fmt.Sprintf("unknown rule id %q in lint-ignore directive", p.id)))
					continue
				}
				set := ix.byLine[line]
				if set == nil {
					set = make(map[string]struct{})
					ix.byLine[line] = set
				}
				set[p.id] = struct{}{}
			}
			pending = pending[:0]
		}
	}

	// directives on the last lines bind to nothing; unknown ids still warn
	for _, p := range pending {
		if !known(p.id) {
			warnings = append(warnings, diag.New(
				UnknownIgnoreRuleID, diag.LevelWarning, p.span,
				fmt.Sprintf("unknown rule id %q in lint-ignore directive", p.id)))
		}
	}
	return ix, warnings
}

// commentStart returns the offset of the first # outside a string literal,
// or -1. Double-quoted strings honor backslash escapes and single-quoted
// strings are raw, mirroring the scanner.
func commentStart(raw string) int {
	var quote byte
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		switch {
		case quote != 0:
			if b == '\\' && quote == '"' {
				i++
			} else if b == quote {
				quote = 0
			}
		case b == '"' || b == '\'':
			quote = b
		case b == '#':
			return i
		}
	}
	return -1
}

func parseDirective(file *source.File, line uint32, raw, content string) []pendingIgnore {
	rest := strings.TrimPrefix(content, ignoreMarker)
	lineStart := file.LineStart(line)

	var out []pendingIgnore
	for _, tok := range strings.Split(rest, ",") {
		id := strings.TrimSpace(tok)
		if id == "" {
			continue
		}
		span := source.Span{File: file.ID, Start: lineStart, End: lineStart + uint32(len(raw))}
		if idx := strings.Index(raw, id); idx >= 0 {
			span.Start = lineStart + uint32(idx)
			span.End = span.Start + uint32(len(id))
		}
		out = append(out, pendingIgnore{id: id, span: span})
	}
	return out
}

// Suppressed reports whether the violation's rule is ignored on the line
// holding its primary span.
func (ix *IgnoreIndex) Suppressed(file *source.File, v *diag.Violation) bool {
	line := file.LineOf(v.Primary.Span.Start)
	set, ok := ix.byLine[line]
	if !ok {
		return false
	}
	_, ok = set[v.RuleID]
	return ok
}
