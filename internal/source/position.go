package source

import (
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// safeUint32 converts an int to uint32, clamping at the maximum value.
// The clamp is deliberate: a position field that would not fit in 32 bits
// degrades to the clamped value instead of truncating silently.
func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// PositionFor converts a byte offset into an LSP position: 0-based line,
// UTF-16 code units for the column (1 unit for BMP runes, 2 for
// supplementary planes).
func (f *File) PositionFor(offset uint32) Position {
	contentLen := safeLen(f.Content)
	if offset > contentLen {
		offset = contentLen
	}
	line := f.LineOf(offset)
	lineStart := f.LineStart(line)
	if lineStart > offset {
		lineStart = offset
	}
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:offset])
		if r == utf8.RuneError && size == 1 {
			size = 1
		}
		if off+safeUint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return Position{Line: line, Character: safeUint32(units)}
}

// OffsetFor converts an LSP position back into a byte offset.
func (f *File) OffsetFor(pos Position) uint32 {
	contentLen := safeLen(f.Content)
	if len(f.Content) == 0 {
		return 0
	}
	lineCount := len(f.LineIdx) + 1
	if int(pos.Line) >= lineCount {
		return contentLen
	}
	lineStart := f.LineStart(pos.Line)
	lineEnd := f.LineEnd(pos.Line)
	if lineStart > lineEnd {
		return lineEnd
	}
	units := uint32(0)
	off := lineStart
	for off < lineEnd {
		r, size := utf8.DecodeRune(f.Content[off:lineEnd])
		if r == utf8.RuneError && size == 1 {
			size = 1
		}
		need := uint32(1)
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
		if units == pos.Character {
			break
		}
	}
	return off
}

// RangeFor converts a span into an LSP range.
func (f *File) RangeFor(span Span) Range {
	return Range{
		Start: f.PositionFor(span.Start),
		End:   f.PositionFor(span.End),
	}
}

// SpanFor converts an LSP range back into a span.
func (f *File) SpanFor(r Range) Span {
	return NewSpan(f.ID, f.OffsetFor(r.Start), f.OffsetFor(r.End))
}
