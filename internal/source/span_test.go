package source

import (
	"testing"
)

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans merge to hull",
			a:        Span{File: 1, Start: 5, End: 10},
			b:        Span{File: 1, Start: 20, End: 30},
			expected: Span{File: 1, Start: 5, End: 30},
		},
		{
			name:     "contained span keeps outer",
			a:        Span{File: 1, Start: 0, End: 40},
			b:        Span{File: 1, Start: 10, End: 20},
			expected: Span{File: 1, Start: 0, End: 40},
		},
		{
			name:     "different files keeps receiver",
			a:        Span{File: 1, Start: 5, End: 10},
			b:        Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 5, End: 10},
		},
		{
			name:     "overlapping extends both ends",
			a:        Span{File: 0, Start: 10, End: 20},
			b:        Span{File: 0, Start: 5, End: 15},
			expected: Span{File: 0, Start: 5, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	outer := Span{File: 1, Start: 10, End: 30}

	tests := []struct {
		name     string
		inner    Span
		expected bool
	}{
		{"identical", Span{File: 1, Start: 10, End: 30}, true},
		{"strictly inside", Span{File: 1, Start: 12, End: 20}, true},
		{"touching start", Span{File: 1, Start: 10, End: 11}, true},
		{"touching end", Span{File: 1, Start: 29, End: 30}, true},
		{"starts before", Span{File: 1, Start: 9, End: 20}, false},
		{"ends after", Span{File: 1, Start: 20, End: 31}, false},
		{"other file", Span{File: 2, Start: 12, End: 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.expected {
				t.Errorf("Contains(%+v) = %v, want %v", tt.inner, got, tt.expected)
			}
		})
	}
}

func TestSpan_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected bool
	}{
		{"disjoint", Span{Start: 0, End: 5}, Span{Start: 5, End: 10}, false},
		{"overlap one byte", Span{Start: 0, End: 6}, Span{Start: 5, End: 10}, true},
		{"nested", Span{Start: 0, End: 10}, Span{Start: 3, End: 4}, true},
		{"two empty at same point", Span{Start: 5, End: 5}, Span{Start: 5, End: 5}, false},
		{"empty inside non-empty", Span{Start: 5, End: 5}, Span{Start: 0, End: 10}, true},
		{"empty at boundary", Span{Start: 10, End: 10}, Span{Start: 0, End: 10}, false},
		{"different files", Span{File: 1, Start: 0, End: 10}, Span{File: 2, Start: 0, End: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.expected {
				t.Errorf("Overlaps() = %v, want %v", got, tt.expected)
			}
			// symmetry
			if got := tt.b.Overlaps(tt.a); got != tt.expected {
				t.Errorf("Overlaps() not symmetric: got %v, want %v", got, tt.expected)
			}
		})
	}
}
