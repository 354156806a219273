package lsp

import (
	"nulint/internal/diag"
	"nulint/internal/source"
)

// document is the per-open-file cache: the current text, the parsed file
// (with its line index) and the violations from the most recent lint.
type document struct {
	uri        string
	path       string
	version    int
	text       string
	fs         *source.FileSet
	file       *source.File
	violations []diag.Violation
}

// relint runs the linter on the document's current text and refreshes the
// cached file and violations. Disabled rules are filtered out here so a
// later nu-lint.disable-rule takes effect on republish.
func (s *Server) relint(doc *document) {
	fs := source.NewFileSet()
	violations := s.linter.LintString(fs, doc.path, []byte(doc.text))
	if len(s.disabled) > 0 {
		kept := violations[:0]
		for _, v := range violations {
			if _, off := s.disabled[v.RuleID]; !off {
				kept = append(kept, v)
			}
		}
		violations = kept
	}
	doc.fs = fs
	doc.file, _ = fs.GetByPath(doc.path)
	doc.violations = violations
}

func (s *Server) lockedDoc(uri string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}
