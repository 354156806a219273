package diag

import (
	"fmt"
	"sort"

	"nulint/internal/source"
)

// Bag collects violations and imposes the engine's output order.
// Rules may emit in any order; the bag's Sort is the contract downstream
// formatters and golden tests depend on.
type Bag struct {
	items []Violation
}

func NewBag() *Bag {
	return &Bag{items: make([]Violation, 0, 16)}
}

func (b *Bag) Add(v Violation) {
	b.items = append(b.items, v)
}

func (b *Bag) AddAll(vs []Violation) {
	b.items = append(b.items, vs...)
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the collected violations.
// Callers must not modify the returned slice.
func (b *Bag) Items() []Violation {
	return b.items
}

// HasErrors reports whether any violation is at LevelError.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Level >= LevelError {
			return true
		}
	}
	return false
}

// Counts returns the number of violations per level.
func (b *Bag) Counts() (errors, warnings, hints int) {
	for i := range b.items {
		switch b.items[i].Level {
		case LevelError:
			errors++
		case LevelWarning:
			warnings++
		case LevelHint:
			hints++
		}
	}
	return
}

// Sort orders violations by (file path, span start, rule id). The file
// path comes from fs; a nil fs falls back to FileID order, which is the
// load order and therefore already path-sorted for directory walks.
func (b *Bag) Sort(fs *source.FileSet) {
	sort.SliceStable(b.items, func(i, j int) bool {
		vi, vj := &b.items[i], &b.items[j]
		si, sj := vi.Primary.Span, vj.Primary.Span
		if si.File != sj.File {
			if fs != nil {
				return fs.Get(si.File).Path < fs.Get(sj.File).Path
			}
			return si.File < sj.File
		}
		if si.Start != sj.Start {
			return si.Start < sj.Start
		}
		return vi.RuleID < vj.RuleID
	})
}

// Dedup removes duplicates sharing rule id and primary span.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := b.items[:0]
	for _, v := range b.items {
		key := fmt.Sprintf("%s:%s", v.RuleID, v.Primary.Span)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	b.items = out
}
