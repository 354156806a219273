package lsp

import (
	"testing"

	"nulint/internal/diagfmt"
)

func TestApplyChangesFullReplace(t *testing.T) {
	got := applyChanges("old", []textDocumentContentChangeEvent{{Text: "new"}})
	if got != "new" {
		t.Errorf("got %q", got)
	}
}

func TestApplyChangesRanged(t *testing.T) {
	text := "let x = 1\nlet y = 2\n"
	got := applyChanges(text, []textDocumentContentChangeEvent{{
		Range: &diagfmt.Range{
			Start: diagfmt.Position{Line: 1, Character: 4},
			End:   diagfmt.Position{Line: 1, Character: 5},
		},
		Text: "z",
	}})
	if got != "let x = 1\nlet z = 2\n" {
		t.Errorf("got %q", got)
	}
}

func TestOffsetForPositionUTF16(t *testing.T) {
	// "é" is 1 UTF-16 unit, 2 bytes; "𝔘" is 2 UTF-16 units, 4 bytes.
	text := "é𝔘x\n"
	if got := offsetForPosition(text, diagfmt.Position{Line: 0, Character: 1}); got != 2 {
		t.Errorf("after é: got %d, want 2", got)
	}
	if got := offsetForPosition(text, diagfmt.Position{Line: 0, Character: 3}); got != 6 {
		t.Errorf("after 𝔘: got %d, want 6", got)
	}
}

func TestOffsetForPositionClamps(t *testing.T) {
	text := "ab\ncd"
	if got := offsetForPosition(text, diagfmt.Position{Line: 0, Character: 99}); got != 2 {
		t.Errorf("past line end: got %d, want 2", got)
	}
	if got := offsetForPosition(text, diagfmt.Position{Line: 9, Character: 0}); got != len(text) {
		t.Errorf("past document: got %d, want %d", got, len(text))
	}
}
