package diag

import (
	"nulint/internal/source"
)

// Replacement is a span-targeted text edit in the file being linted.
// A set of replacements is applicable iff the spans are pairwise disjoint.
type Replacement struct {
	Span    source.Span
	NewText string
}

// Fix is one human-readable explanation plus the replacements that must be
// applied together atomically. A violation carries at most one fix.
type Fix struct {
	Explanation  string
	Replacements []Replacement
}

// Label is a span plus a short description pointing at a related position.
type Label struct {
	Span    source.Span
	Message string
}

// ExternalDetection points into a file other than the one being linted.
// The formatter loads that file's source on demand.
type ExternalDetection struct {
	Path  string
	Label Label
}

// Violation is a single lint finding. It is immutable after creation and
// carries only spans, ids, and owned strings, never AST references, so it
// may outlive the parse that produced it.
type Violation struct {
	RuleID    string
	Level     LintLevel
	Message   string
	Primary   Label
	Extra     []Label
	Help      string
	URL       string
	Tags      []Tag
	Fix       *Fix
	Externals []ExternalDetection
}

// New builds a violation with the required fields.
func New(ruleID string, level LintLevel, span source.Span, msg string) Violation {
	return Violation{
		RuleID:  ruleID,
		Level:   level,
		Message: msg,
		Primary: Label{Span: span, Message: msg},
	}
}

// WithLabel sets the primary label text separately from the message.
func (v Violation) WithLabel(msg string) Violation {
	v.Primary.Message = msg
	return v
}

// WithExtra appends a secondary label.
func (v Violation) WithExtra(span source.Span, msg string) Violation {
	v.Extra = append(v.Extra, Label{Span: span, Message: msg})
	return v
}

// WithHelp attaches extended help text.
func (v Violation) WithHelp(help string) Violation {
	v.Help = help
	return v
}

// WithURL attaches a documentation link.
func (v Violation) WithURL(url string) Violation {
	v.URL = url
	return v
}

// WithFix attaches the fix.
func (v Violation) WithFix(explanation string, repls ...Replacement) Violation {
	v.Fix = &Fix{Explanation: explanation, Replacements: repls}
	return v
}

// WithExternal appends a detection in another file.
func (v Violation) WithExternal(path string, span source.Span, msg string) Violation {
	v.Externals = append(v.Externals, ExternalDetection{
		Path:  path,
		Label: Label{Span: span, Message: msg},
	})
	return v
}
