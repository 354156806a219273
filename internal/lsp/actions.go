package lsp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"nulint/internal/diag"
	"nulint/internal/diagfmt"
	"nulint/internal/fix"
	"nulint/internal/source"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	doc := s.lockedDoc(canonicalURI(params.TextDocument.URI))
	if doc == nil || doc.file == nil {
		return s.sendResponse(msg.ID, []codeAction{})
	}
	span := doc.file.SpanFor(source.Range{
		Start: source.Position{Line: params.Range.Start.Line, Character: params.Range.Start.Character},
		End:   source.Position{Line: params.Range.End.Line, Character: params.Range.End.Character},
	})
	return s.sendResponse(msg.ID, s.buildCodeActions(doc, span))
}

// buildCodeActions assembles the action list for a request range: one
// fix-all when at least two violations carry fixes, then per overlapping
// violation a quickfix (when fixable), an ignore-on-this-line edit, and a
// disable-rule command.
func (s *Server) buildCodeActions(doc *document, span source.Span) []codeAction {
	var actions []codeAction

	fixable := 0
	for i := range doc.violations {
		if doc.violations[i].Fix != nil {
			fixable++
		}
	}
	if fixable >= 2 {
		actions = append(actions, s.fixAllAction(doc, fixable))
	}

	var hits []*diag.Violation
	for i := range doc.violations {
		if overlapsRequest(doc.violations[i].Primary.Span, span) {
			hits = append(hits, &doc.violations[i])
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Primary.Span.Start != hits[j].Primary.Span.Start {
			return hits[i].Primary.Span.Start < hits[j].Primary.Span.Start
		}
		return hits[i].Fix != nil && hits[j].Fix == nil
	})

	for _, v := range hits {
		d := diagfmt.ToDiagnostic(v, doc.file)
		if v.Fix != nil {
			actions = append(actions, quickfixAction(doc, v, d))
		}
		actions = append(actions, ignoreAction(doc, v, d))
		actions = append(actions, disableAction(v, d))
	}
	return actions
}

// overlapsRequest treats an empty request range as a cursor position so
// clicking inside (or at either edge of) a violation still matches it.
func overlapsRequest(primary, request source.Span) bool {
	if primary.File != request.File {
		return false
	}
	if request.Empty() {
		return primary.Start <= request.Start && request.Start <= primary.End
	}
	return primary.Overlaps(request)
}

func (s *Server) fixAllAction(doc *document, fixable int) codeAction {
	edits := fix.DedupOverlapping(fix.Collect(doc.violations), s.ruleRank)
	textEdits := make([]diagfmt.TextEdit, 0, len(edits))
	for _, e := range edits {
		textEdits = append(textEdits, diagfmt.TextEdit{
			Range:   toRange(doc.file, e.Span),
			NewText: e.NewText,
		})
	}
	var diags []diagfmt.Diagnostic
	for i := range doc.violations {
		if doc.violations[i].Fix != nil {
			diags = append(diags, diagfmt.ToDiagnostic(&doc.violations[i], doc.file))
		}
	}
	return codeAction{
		Title:       fmt.Sprintf("Fix all auto-fixable problems (%d fixes)", fixable),
		Kind:        kindSourceFixAll,
		Diagnostics: diags,
		Edit: &workspaceEdit{
			Changes: map[string][]diagfmt.TextEdit{doc.uri: textEdits},
		},
	}
}

func quickfixAction(doc *document, v *diag.Violation, d diagfmt.Diagnostic) codeAction {
	textEdits := make([]diagfmt.TextEdit, 0, len(v.Fix.Replacements))
	for _, r := range v.Fix.Replacements {
		textEdits = append(textEdits, diagfmt.TextEdit{
			Range:   toRange(doc.file, r.Span),
			NewText: r.NewText,
		})
	}
	return codeAction{
		Title:       fmt.Sprintf("%s [%s]", v.Fix.Explanation, v.RuleID),
		Kind:        kindQuickFix + "." + v.RuleID,
		Diagnostics: []diagfmt.Diagnostic{d},
		IsPreferred: true,
		Edit: &workspaceEdit{
			Changes: map[string][]diagfmt.TextEdit{doc.uri: textEdits},
		},
	}
}

// ignoreAction inserts an ignore directive at the end of the violation's
// line: extends an existing directive with ", <id>", otherwise appends a
// fresh trailing comment.
func ignoreAction(doc *document, v *diag.Violation, d diagfmt.Diagnostic) codeAction {
	line := doc.file.LineOf(v.Primary.Span.Start)
	lineText := doc.file.Line(line)
	newText := " # lint-ignore: " + v.RuleID
	if strings.Contains(lineText, "# lint-ignore:") {
		newText = ", " + v.RuleID
	}
	end := doc.file.PositionFor(doc.file.LineEnd(line))
	at := diagfmt.Position{Line: end.Line, Character: end.Character}
	return codeAction{
		Title:       fmt.Sprintf("Ignore %s on this line", v.RuleID),
		Kind:        kindQuickFix,
		Diagnostics: []diagfmt.Diagnostic{d},
		Edit: &workspaceEdit{
			Changes: map[string][]diagfmt.TextEdit{doc.uri: {{
				Range:   diagfmt.Range{Start: at, End: at},
				NewText: newText,
			}}},
		},
	}
}

func disableAction(v *diag.Violation, d diagfmt.Diagnostic) codeAction {
	title := fmt.Sprintf("Disable rule %s", v.RuleID)
	return codeAction{
		Title:       title,
		Kind:        kindQuickFix,
		Diagnostics: []diagfmt.Diagnostic{d},
		Command: &command{
			Title:     title,
			Command:   DisableRuleCommand,
			Arguments: []any{v.RuleID},
		},
	}
}

func toRange(file *source.File, span source.Span) diagfmt.Range {
	r := file.RangeFor(span)
	return diagfmt.Range{
		Start: diagfmt.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   diagfmt.Position{Line: r.End.Line, Character: r.End.Character},
	}
}
