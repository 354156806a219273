package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) into a single source file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func NewSpan(file FileID, start, end uint32) Span {
	if end < start {
		start, end = end, start
	}
	return Span{File: file, Start: start, End: end}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover merges two spans into the smallest span containing both.
// Spans from different files are not mergeable; the receiver wins.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether inner lies entirely within s.
func (s Span) Contains(inner Span) bool {
	return s.File == inner.File && s.Start <= inner.Start && inner.End <= s.End
}

// Overlaps reports whether two spans share at least one byte.
// Two zero-length spans never overlap; a zero-length span overlaps a
// non-empty span when its position falls inside it.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	if s.Empty() && other.Empty() {
		return false
	}
	if s.Empty() {
		return other.Start <= s.Start && s.Start < other.End
	}
	if other.Empty() {
		return s.Start <= other.Start && other.Start < s.End
	}
	return s.Start < other.End && other.Start < s.End
}
