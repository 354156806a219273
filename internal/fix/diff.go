package fix

import (
	"fmt"
	"strings"
)

const diffContext = 3

// Unified renders a line-numbered unified diff between the original and
// fixed buffers.
func Unified(path string, original, fixed []byte) string {
	a := splitLines(string(original))
	b := splitLines(string(fixed))
	ops := diffOps(a, b)
	if len(ops) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)
	for _, h := range hunks(ops) {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.aStart+1, h.aLen, h.bStart+1, h.bLen)
		for _, op := range h.ops {
			switch op.kind {
			case opEqual:
				sb.WriteString(" " + op.text + "\n")
			case opDelete:
				sb.WriteString("-" + op.text + "\n")
			case opInsert:
				sb.WriteString("+" + op.text + "\n")
			}
		}
	}
	return sb.String()
}

// InlineDiff renders the changed lines only, for the help block under a
// violation: removed lines prefixed -, added lines prefixed +.
func InlineDiff(original, fixed []byte) (removed, added []string) {
	for _, op := range diffOps(splitLines(string(original)), splitLines(string(fixed))) {
		switch op.kind {
		case opDelete:
			removed = append(removed, op.text)
		case opInsert:
			added = append(added, op.text)
		}
	}
	return removed, added
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type opKind uint8

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type diffOp struct {
	kind opKind
	text string
}

// diffOps computes an LCS-based line diff.
func diffOps(a, b []string) []diffOp {
	n, m := len(a), len(b)
	// lcs[i][j] = length of the LCS of a[i:] and b[j:]
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	changed := false
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{opEqual, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{opDelete, a[i]})
			i++
			changed = true
		default:
			ops = append(ops, diffOp{opInsert, b[j]})
			j++
			changed = true
		}
	}
	for ; i < n; i++ {
		ops = append(ops, diffOp{opDelete, a[i]})
		changed = true
	}
	for ; j < m; j++ {
		ops = append(ops, diffOp{opInsert, b[j]})
		changed = true
	}
	if !changed {
		return nil
	}
	return ops
}

type hunk struct {
	aStart, aLen int
	bStart, bLen int
	ops          []diffOp
}

// hunks groups the op stream into unified-diff hunks with shared context.
func hunks(ops []diffOp) []hunk {
	var out []hunk
	aLine, bLine := 0, 0
	i := 0
	for i < len(ops) {
		if ops[i].kind == opEqual {
			aLine++
			bLine++
			i++
			continue
		}

		// back up over leading context
		start := i
		ctx := 0
		for start > 0 && ops[start-1].kind == opEqual && ctx < diffContext {
			start--
			ctx++
		}
		h := hunk{aStart: aLine - ctx, bStart: bLine - ctx}

		// extend through trailing context, merging nearby changes
		end := i
		run := 0
		for end < len(ops) {
			if ops[end].kind == opEqual {
				run++
				if run > diffContext*2 {
					end -= run - diffContext
					break
				}
			} else {
				run = 0
			}
			end++
		}
		if end > len(ops) {
			end = len(ops)
		}

		for _, op := range ops[start:end] {
			h.ops = append(h.ops, op)
			switch op.kind {
			case opEqual:
				h.aLen++
				h.bLen++
			case opDelete:
				h.aLen++
			case opInsert:
				h.bLen++
			}
		}
		for _, op := range ops[i:end] {
			switch op.kind {
			case opEqual:
				aLine++
				bLine++
			case opDelete:
				aLine++
			case opInsert:
				bLine++
			}
		}
		out = append(out, h)
		i = end
	}
	return out
}
