// Package fix applies violation fixes to source buffers: conflict
// detection, whole-or-nothing application, diff rendering, and the
// iterate-to-fixpoint loop behind --fix.
package fix

import (
	"fmt"
	"sort"

	"nulint/internal/diag"
	"nulint/internal/source"
)

// Edit is one replacement tagged with the rule that produced it.
type Edit struct {
	Span    source.Span
	NewText string
	RuleID  string
}

// ConflictError reports two rules whose edits overlap. Application is
// whole-or-nothing: the buffer stays untouched.
type ConflictError struct {
	RuleA, RuleB string
	SpanA, SpanB source.Span
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting fixes: %s (%s) overlaps %s (%s)",
		e.RuleA, e.SpanA, e.RuleB, e.SpanB)
}

// Collect flattens every fix attached to the violations into edits.
func Collect(violations []diag.Violation) []Edit {
	var edits []Edit
	for _, v := range violations {
		if v.Fix == nil {
			continue
		}
		for _, r := range v.Fix.Replacements {
			edits = append(edits, Edit{Span: r.Span, NewText: r.NewText, RuleID: v.RuleID})
		}
	}
	return edits
}

// Apply rewrites the buffer with the edits, later offsets first so earlier
// spans stay valid. Overlapping edits abort the whole application.
func Apply(src []byte, edits []Edit) ([]byte, error) {
	edits = dedupIdentical(edits)
	if err := checkOverlap(edits); err != nil {
		return nil, err
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Span.Start > ordered[j].Span.Start
	})

	out := make([]byte, len(src))
	copy(out, src)
	for _, e := range ordered {
		if int(e.Span.End) > len(out) || e.Span.Start > e.Span.End {
			return nil, fmt.Errorf("fix %s: span %s out of range", e.RuleID, e.Span)
		}
		var next []byte
		next = append(next, out[:e.Span.Start]...)
		next = append(next, e.NewText...)
		next = append(next, out[e.Span.End:]...)
		out = next
	}
	return out, nil
}

// dedupIdentical drops exact duplicates; the same fix reached through two
// violations must not count as a conflict.
func dedupIdentical(edits []Edit) []Edit {
	type key struct {
		span source.Span
		text string
	}
	seen := make(map[key]struct{}, len(edits))
	out := edits[:0:0]
	for _, e := range edits {
		k := key{span: e.Span, text: e.NewText}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

func checkOverlap(edits []Edit) error {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		if a.Span.Overlaps(b.Span) {
			return &ConflictError{RuleA: a.RuleID, SpanA: a.Span, RuleB: b.RuleID, SpanB: b.Span}
		}
	}
	return nil
}

// DedupOverlapping resolves overlaps instead of failing: within each
// overlapping cluster the edit from the earliest-ranked rule survives. The
// fix-all code action uses it to merge fixes from many rules.
func DedupOverlapping(edits []Edit, rank func(ruleID string) int) []Edit {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	var out []Edit
	for _, e := range sorted {
		conflict := -1
		for i := range out {
			if out[i].Span.Overlaps(e.Span) {
				conflict = i
				break
			}
		}
		if conflict < 0 {
			out = append(out, e)
			continue
		}
		if rank(e.RuleID) < rank(out[conflict].RuleID) {
			out[conflict] = e
		}
	}
	return out
}
