package source

import (
	"testing"
)

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.nu", []byte("let x = 5\nprint $x\n"))

	tests := []struct {
		name      string
		span      Span
		wantStart LineCol
		wantEnd   LineCol
	}{
		{
			name:      "first token",
			span:      Span{File: id, Start: 0, End: 3},
			wantStart: LineCol{Line: 1, Col: 1},
			wantEnd:   LineCol{Line: 1, Col: 4},
		},
		{
			name:      "second line",
			span:      Span{File: id, Start: 10, End: 15},
			wantStart: LineCol{Line: 2, Col: 1},
			wantEnd:   LineCol{Line: 2, Col: 6},
		},
		{
			name:      "newline belongs to its line",
			span:      Span{File: id, Start: 9, End: 9},
			wantStart: LineCol{Line: 1, Col: 10},
			wantEnd:   LineCol{Line: 1, Col: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := fs.Resolve(tt.span)
			if start != tt.wantStart {
				t.Errorf("start = %+v, want %+v", start, tt.wantStart)
			}
			if end != tt.wantEnd {
				t.Errorf("end = %+v, want %+v", end, tt.wantEnd)
			}
		})
	}
}

func TestFile_LineRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.nu", []byte("one\ntwo\n\nfour"))
	f := fs.Get(id)

	// for every in-range offset o: LineStart(LineOf(o)) <= o < LineStart(LineOf(o)+1)
	for o := uint32(0); o < uint32(len(f.Content)); o++ {
		line := f.LineOf(o)
		start := f.LineStart(line)
		next := f.LineStart(line + 1)
		if !(start <= o) {
			t.Fatalf("offset %d: line %d starts at %d after offset", o, line, start)
		}
		if int(line) < len(f.LineIdx) && o >= next {
			t.Fatalf("offset %d: next line %d starts at %d before offset", o, line+1, next)
		}
	}
}

func TestFile_Line(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.nu", []byte("one\ntwo\n\nfour"))
	f := fs.Get(id)

	tests := []struct {
		line     uint32
		expected string
	}{
		{0, "one"},
		{1, "two"},
		{2, ""},
		{3, "four"},
		{9, ""},
	}

	for _, tt := range tests {
		if got := f.Line(tt.line); got != tt.expected {
			t.Errorf("Line(%d) = %q, want %q", tt.line, got, tt.expected)
		}
	}
}

func TestFileSet_Text(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.nu", []byte("mut x = 5"))

	got, err := fs.Text(Span{File: id, Start: 0, End: 3})
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if got != "mut" {
		t.Errorf("Text() = %q, want %q", got, "mut")
	}

	// out-of-range spans are rule bugs and must surface an error
	if _, err := fs.Text(Span{File: id, Start: 0, End: 100}); err == nil {
		t.Error("Text() with out-of-range span should error, got nil")
	}
}

func TestFileSet_LoadNormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("crlf.nu", []byte("let a = 1\nlet b = 2"))
	if fs.Get(id).Flags&FileNormalizedCRLF != 0 {
		t.Error("virtual file should not carry CRLF flag")
	}

	content, changed := normalizeCRLF([]byte("let a = 1\r\nlet b = 2\r\n"))
	if !changed {
		t.Fatal("expected CRLF normalization")
	}
	if string(content) != "let a = 1\nlet b = 2\n" {
		t.Errorf("normalized = %q", content)
	}
}

func TestFile_EmptyContent(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("empty.nu", nil)
	f := fs.Get(id)

	if f.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", f.LineCount())
	}
	if got := f.Line(0); got != "" {
		t.Errorf("Line(0) = %q, want empty", got)
	}
	start, end := fs.Resolve(Span{File: id})
	if start.Line != 1 || start.Col != 1 || end.Line != 1 || end.Col != 1 {
		t.Errorf("Resolve on empty file = %+v %+v", start, end)
	}
}
